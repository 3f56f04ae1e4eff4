package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/sebuszqo/ExpenseTracker/internal/errors"
	applog "github.com/sebuszqo/ExpenseTracker/internal/log"
)

var (
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", apperrors.ErrUnauthenticated)
)

// Identity is what authentication needs to know about a user.
type Identity struct {
	ID           int64
	Email        string
	PasswordHash string
}

// IdentityStore resolves identities. Missing users are reported with an
// error matching apperrors.ErrNotFound.
type IdentityStore interface {
	IdentityByEmail(ctx context.Context, email string) (Identity, error)
	IdentityByID(ctx context.Context, id int64) (Identity, error)
}

type LoginResult struct {
	UserID      int64
	AccessToken string
	TokenType   string
	ExpiresIn   time.Duration
}

type Service interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	JWTAccessTokenMiddleware() func(http.Handler) http.Handler
}

type service struct {
	users      IdentityStore
	jwtManager JWTManagerInterface
	tokenTTL   time.Duration
	// dummyHash keeps unknown emails as slow as wrong passwords.
	dummyHash string
	logger    *applog.Logger
}

func NewAuthService(users IdentityStore, jwtManager JWTManagerInterface, tokenTTL time.Duration, logger *applog.Logger) Service {
	if tokenTTL <= 0 {
		tokenTTL = DefaultAccessTokenTTL
	}
	if logger == nil {
		logger = applog.Discard()
	}
	dummyHash, _ := HashPassword("not-a-real-password", DefaultBcryptCost)

	return &service{
		users:      users,
		jwtManager: jwtManager,
		tokenTTL:   tokenTTL,
		dummyHash:  dummyHash,
		logger:     logger.WithComponent(applog.ComponentAuth),
	}
}

// Login exchanges an email and password for an access token. An unknown email
// and a wrong password both yield ErrInvalidCredentials.
func (s *service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password are required")
	}

	identity, err := s.users.IdentityByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			_ = VerifyPassword(password, s.dummyHash)
			s.logger.InfoContext(ctx, "Login failed", "reason", "unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !VerifyPassword(password, identity.PasswordHash) {
		s.logger.InfoContext(ctx, "Login failed", "reason", "password mismatch", applog.FieldUserID, identity.ID)
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwtManager.GenerateAccessJWT(identity.ID, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("could not generate access token: %w", err)
	}

	s.logger.InfoContext(ctx, "Login succeeded", applog.FieldUserID, identity.ID)
	return &LoginResult{
		UserID:      identity.ID,
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   s.tokenTTL,
	}, nil
}
