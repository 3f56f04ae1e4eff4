package auth

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/sebuszqo/ExpenseTracker/internal/errors"
)

type MockIdentityStore struct {
	byEmail map[string]Identity
	fail    error
}

func newMockIdentityStore(identities ...Identity) *MockIdentityStore {
	m := &MockIdentityStore{byEmail: map[string]Identity{}}
	for _, id := range identities {
		m.byEmail[id.Email] = id
	}
	return m
}

func (m *MockIdentityStore) IdentityByEmail(_ context.Context, email string) (Identity, error) {
	if m.fail != nil {
		return Identity{}, m.fail
	}
	id, ok := m.byEmail[email]
	if !ok {
		return Identity{}, apperrors.NewNotFoundError("user")
	}
	return id, nil
}

func (m *MockIdentityStore) IdentityByID(_ context.Context, userID int64) (Identity, error) {
	if m.fail != nil {
		return Identity{}, m.fail
	}
	for _, id := range m.byEmail {
		if id.ID == userID {
			return id, nil
		}
	}
	return Identity{}, apperrors.NewNotFoundError("user")
}

type MockJWTManager struct {
	token     string
	userID    int64
	err       error
	issuedFor int64
	issuedTTL time.Duration
}

func (m *MockJWTManager) GenerateAccessJWT(userID int64, ttl time.Duration) (string, error) {
	m.issuedFor = userID
	m.issuedTTL = ttl
	if m.err != nil {
		return "", m.err
	}
	return m.token, nil
}

func (m *MockJWTManager) ValidateAccessToken(tokenString string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	if tokenString != m.token {
		return 0, fmt.Errorf("%w: unexpected token", ErrMalformedJWTToken)
	}
	return m.userID, nil
}
