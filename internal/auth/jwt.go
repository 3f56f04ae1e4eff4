package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
)

var (
	ErrMalformedJWTToken   = errors.New("JWT token is malformed")
	ErrInvalidJWTSignature = errors.New("JWT token signature is invalid")
	ErrExpiredJWTToken     = errors.New("JWT token is expired")
	ErrUnknownIdentity     = errors.New("JWT token identity does not exist")
	ErrMissingJWTSecret    = errors.New("JWT secret must not be empty")

	errUnexpectedSigningMethod = errors.New("unexpected signing method")
)

const DefaultAccessTokenTTL = time.Hour

type JWTManagerInterface interface {
	GenerateAccessJWT(userID int64, ttl time.Duration) (string, error)
	ValidateAccessToken(tokenString string) (int64, error)
}

type AccessTokenCustomClaims struct {
	UserID int64 `json:"user_id"`
	jwt.StandardClaims
}

type JWTManager struct {
	secret []byte
	now    func() time.Time
}

func NewJWTManager(secret string) (*JWTManager, error) {
	if secret == "" {
		return nil, ErrMissingJWTSecret
	}
	return &JWTManager{
		secret: []byte(secret),
		now:    time.Now,
	}, nil
}

func (j *JWTManager) GenerateAccessJWT(userID int64, ttl time.Duration) (string, error) {
	if userID <= 0 {
		return "", fmt.Errorf("invalid user id %d", userID)
	}
	now := j.now()
	claims := &AccessTokenCustomClaims{
		UserID: userID,
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret)
}

// ValidateAccessToken returns the user id carried by tokenString. Failures are
// one of ErrMalformedJWTToken, ErrInvalidJWTSignature or ErrExpiredJWTToken.
func (j *JWTManager) ValidateAccessToken(tokenString string) (int64, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessTokenCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: %v", errUnexpectedSigningMethod, token.Header["alg"])
		}
		return j.secret, nil
	})

	if err != nil {
		var validationErr *jwt.ValidationError
		if errors.As(err, &validationErr) {
			switch {
			case validationErr.Errors&(jwt.ValidationErrorMalformed|jwt.ValidationErrorUnverifiable) != 0:
				return 0, fmt.Errorf("%w: %v", ErrMalformedJWTToken, err)
			case validationErr.Errors&jwt.ValidationErrorSignatureInvalid != 0:
				return 0, ErrInvalidJWTSignature
			case validationErr.Errors&jwt.ValidationErrorExpired != 0:
				return 0, ErrExpiredJWTToken
			}
		}
		return 0, fmt.Errorf("%w: %v", ErrMalformedJWTToken, err)
	}

	claims, ok := token.Claims.(*AccessTokenCustomClaims)
	if !ok || !token.Valid || claims.UserID <= 0 || claims.ExpiresAt == 0 {
		return 0, ErrMalformedJWTToken
	}
	// the library accepts exp == now
	if !j.now().Before(time.Unix(claims.ExpiresAt, 0)) {
		return 0, ErrExpiredJWTToken
	}

	return claims.UserID, nil
}
