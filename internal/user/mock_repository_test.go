package user

import (
	"context"

	apperrors "github.com/sebuszqo/ExpenseTracker/internal/errors"
)

// MockRepository keeps users in memory. createErr, when set, is returned by
// createUser after the existence check has passed.
type MockRepository struct {
	users     []*User
	nextID    int64
	createErr error
}

func (m *MockRepository) createUser(_ context.Context, user *User) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	user.ID = m.nextID
	stored := *user
	m.users = append(m.users, &stored)
	return nil
}

func (m *MockRepository) getUserByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *MockRepository) getUserByID(_ context.Context, id int64) (*User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *MockRepository) userExistsByNameOrEmail(_ context.Context, name, email string, excludeID int64) (*User, error) {
	var byName *User
	for _, u := range m.users {
		if u.ID == excludeID {
			continue
		}
		if u.Email == email {
			return u, nil
		}
		if u.Name == name && byName == nil {
			byName = u
		}
	}
	return byName, nil
}

func (m *MockRepository) updateUser(_ context.Context, user *User) error {
	for i, u := range m.users {
		if u.ID == user.ID {
			stored := *user
			m.users[i] = &stored
			return nil
		}
	}
	return ErrUserNotFound
}

func (m *MockRepository) deleteUser(_ context.Context, id int64) error {
	for i, u := range m.users {
		if u.ID == id {
			m.users = append(m.users[:i], m.users[i+1:]...)
			return nil
		}
	}
	return ErrUserNotFound
}

func (m *MockRepository) countUsers(context.Context) (int64, error) {
	return int64(len(m.users)), nil
}

var errConflictFromStore = apperrors.NewConflictError("record already exists")
