package user

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/badoux/checkmail"

	"github.com/sebuszqo/ExpenseTracker/internal/auth"
	apperrors "github.com/sebuszqo/ExpenseTracker/internal/errors"
	applog "github.com/sebuszqo/ExpenseTracker/internal/log"
)

const (
	maxEmailLength    = 254
	minEmailLength    = 3
	maxNameLength     = 50
	minNameLength     = 1
	minPasswordLength = 4
)

var (
	ErrUserNotFound       = apperrors.NewNotFoundError("user")
	ErrInvalidEmail       = apperrors.NewValidationError("email address is not valid")
	ErrEmailLength        = apperrors.NewValidationError(fmt.Sprintf("email must be between %d and %d characters", minEmailLength, maxEmailLength))
	ErrNameLength         = apperrors.NewValidationError(fmt.Sprintf("name must be between %d and %d characters", minNameLength, maxNameLength))
	ErrPasswordTooShort   = apperrors.NewValidationError(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	ErrEmailAlreadyExists = apperrors.NewConflictError("email already exists")
	ErrNameAlreadyExists  = apperrors.NewConflictError("name already exists")
	ErrUserAlreadyExists  = apperrors.NewConflictError("user already exists")
)

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Service interface {
	Register(ctx context.Context, name, email, password string) (*User, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateProfile(ctx context.Context, id int64, name, email, password string) (*User, error)
	DeleteUser(ctx context.Context, id int64) error
	CountUsers(ctx context.Context) (int64, error)

	auth.IdentityStore
}

type service struct {
	repo       Repository
	bcryptCost int
	logger     *applog.Logger
	now        func() time.Time
}

func NewUserService(repo Repository, bcryptCost int, logger *applog.Logger) Service {
	if bcryptCost == 0 {
		bcryptCost = auth.DefaultBcryptCost
	}
	if logger == nil {
		logger = applog.Discard()
	}
	return &service{
		repo:       repo,
		bcryptCost: bcryptCost,
		logger:     logger.WithComponent(applog.ComponentUser),
		now:        time.Now,
	}
}

func validateNameAndEmail(errs *apperrors.ValidationErrors, name, email string) {
	if n := utf8.RuneCountInString(name); n < minNameLength || n > maxNameLength {
		errs.Add(ErrNameLength)
	}

	if n := len(email); n < minEmailLength || n > maxEmailLength {
		errs.Add(ErrEmailLength)
	} else if err := checkmail.ValidateFormat(email); err != nil {
		errs.Add(ErrInvalidEmail)
	}
}

func validateRegistration(name, email, password string) error {
	var errs apperrors.ValidationErrors
	validateNameAndEmail(&errs, name, email)
	if utf8.RuneCountInString(password) < minPasswordLength {
		errs.Add(ErrPasswordTooShort)
	}
	return errs.ErrOrNil()
}

// ensureAvailable reports a conflict when a user other than excludeID holds
// the name or the email.
func (s *service) ensureAvailable(ctx context.Context, name, email string, excludeID int64) error {
	existing, err := s.repo.userExistsByNameOrEmail(ctx, name, email, excludeID)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}
	if existing.Email == email {
		return ErrEmailAlreadyExists
	}
	return ErrNameAlreadyExists
}

// Register creates an account. Name and email must both be unused; a
// registration racing past the check is still rejected by the unique
// constraints and reported as a conflict.
func (s *service) Register(ctx context.Context, name, email, password string) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if err := validateRegistration(name, email, password); err != nil {
		return nil, err
	}

	if err := s.ensureAvailable(ctx, name, email, 0); err != nil {
		return nil, err
	}

	hashedPassword, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("could not hash password: %w", err)
	}

	user := &User{
		Name:         name,
		Email:        email,
		PasswordHash: hashedPassword,
		CreatedAt:    s.now().UTC().Truncate(time.Second),
	}
	if err := s.repo.createUser(ctx, user); err != nil {
		if apperrors.IsConflictError(err) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "User registered", applog.FieldUserID, user.ID)
	return user, nil
}

func (s *service) GetUserByID(ctx context.Context, id int64) (*User, error) {
	return s.repo.getUserByID(ctx, id)
}

func (s *service) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.getUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// UpdateProfile replaces the name and email of an account. An empty
// password keeps the current one.
func (s *service) UpdateProfile(ctx context.Context, id int64, name, email, password string) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	var errs apperrors.ValidationErrors
	validateNameAndEmail(&errs, name, email)
	if password != "" && utf8.RuneCountInString(password) < minPasswordLength {
		errs.Add(ErrPasswordTooShort)
	}
	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}

	user, err := s.repo.getUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureAvailable(ctx, name, email, id); err != nil {
		return nil, err
	}

	user.Name = name
	user.Email = email
	if password != "" {
		hashedPassword, err := auth.HashPassword(password, s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("could not hash password: %w", err)
		}
		user.PasswordHash = hashedPassword
	}

	if err := s.repo.updateUser(ctx, user); err != nil {
		if apperrors.IsConflictError(err) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "Profile updated", applog.FieldUserID, id, "password_changed", password != "")
	return user, nil
}

// DeleteUser removes the account; the user's movements go with it.
func (s *service) DeleteUser(ctx context.Context, id int64) error {
	if err := s.repo.deleteUser(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "User deleted", applog.FieldUserID, id)
	return nil
}

func (s *service) CountUsers(ctx context.Context) (int64, error) {
	return s.repo.countUsers(ctx)
}

func (s *service) IdentityByEmail(ctx context.Context, email string) (auth.Identity, error) {
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return auth.Identity{}, err
	}
	return toIdentity(user), nil
}

func (s *service) IdentityByID(ctx context.Context, id int64) (auth.Identity, error) {
	user, err := s.repo.getUserByID(ctx, id)
	if err != nil {
		return auth.Identity{}, err
	}
	return toIdentity(user), nil
}

func toIdentity(user *User) auth.Identity {
	return auth.Identity{
		ID:           user.ID,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
	}
}
