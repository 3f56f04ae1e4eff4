package user

import (
	"context"
	"fmt"

	database "github.com/sebuszqo/ExpenseTracker/internal/db"
	apperrors "github.com/sebuszqo/ExpenseTracker/internal/errors"
)

type Repository interface {
	createUser(ctx context.Context, user *User) error
	getUserByEmail(ctx context.Context, email string) (*User, error)
	getUserByID(ctx context.Context, id int64) (*User, error)
	userExistsByNameOrEmail(ctx context.Context, name, email string, excludeID int64) (*User, error)
	updateUser(ctx context.Context, user *User) error
	deleteUser(ctx context.Context, id int64) error
	countUsers(ctx context.Context) (int64, error)
}

type userRepository struct {
	db *database.DBService
}

func NewUserRepository(db *database.DBService) Repository {
	return &userRepository{
		db: db,
	}
}

const userColumns = `id, name, email, password_hash, created_at`

func scanUser(row database.Scanner) (*User, error) {
	var (
		user      User
		createdAt string
	)
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &createdAt); err != nil {
		return nil, err
	}
	t, err := database.ParseTimestamp(createdAt)
	if err != nil {
		return nil, err
	}
	user.CreatedAt = t
	return &user, nil
}

func (r *userRepository) createUser(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (name, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id`

	id, err := r.db.Execute(ctx, query, user.Name, user.Email, user.PasswordHash, database.FormatTimestamp(user.CreatedAt))
	if err != nil {
		return fmt.Errorf("could not create user: %w", err)
	}
	user.ID = id
	return nil
}

func (r *userRepository) getUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	user, err := database.FetchOne(ctx, r.db, scanUser, query, email)
	if err != nil {
		return nil, userLookupError(err)
	}
	return user, nil
}

func (r *userRepository) getUserByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	user, err := database.FetchOne(ctx, r.db, scanUser, query, id)
	if err != nil {
		return nil, userLookupError(err)
	}
	return user, nil
}

// userExistsByNameOrEmail returns a user other than excludeID holding the
// name or the email, or nil when both are free. The holder of the email wins
// when two users match.
func (r *userRepository) userExistsByNameOrEmail(ctx context.Context, name, email string, excludeID int64) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE (name = ? OR email = ?) AND id <> ?
		ORDER BY CASE WHEN email = ? THEN 0 ELSE 1 END, id LIMIT 1`
	user, err := database.FetchOne(ctx, r.db, scanUser, query, name, email, excludeID, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not check existing user: %w", err)
	}
	return user, nil
}

func (r *userRepository) updateUser(ctx context.Context, user *User) error {
	query := `UPDATE users SET name = ?, email = ?, password_hash = ? WHERE id = ?`
	affected, err := r.db.Exec(ctx, query, user.Name, user.Email, user.PasswordHash, user.ID)
	if err != nil {
		return fmt.Errorf("could not update user: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) deleteUser(ctx context.Context, id int64) error {
	affected, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("could not delete user: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) countUsers(ctx context.Context) (int64, error) {
	count, err := database.FetchOne(ctx, r.db, func(row database.Scanner) (int64, error) {
		var n int64
		err := row.Scan(&n)
		return n, err
	}, `SELECT COUNT(*) FROM users`)
	if err != nil {
		return 0, fmt.Errorf("could not count users: %w", err)
	}
	return count, nil
}

func userLookupError(err error) error {
	if apperrors.IsNotFound(err) {
		return ErrUserNotFound
	}
	return fmt.Errorf("could not fetch user: %w", err)
}
