package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	apperrors "github.com/sebuszqo/ExpenseTracker/internal/errors"
	applog "github.com/sebuszqo/ExpenseTracker/internal/log"
)

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type contextKey struct{}

var userIDKey contextKey

// ContextWithUserID returns a copy of ctx carrying the authenticated user id.
func ContextWithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the id stored by JWTAccessTokenMiddleware.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok && userID > 0
}

var (
	errMissingAuthHeader = errors.New("authorization header is required")
	errBadAuthScheme     = errors.New("authorization header must use the Bearer scheme")
)

// JWTAccessTokenMiddleware rejects the request with 401 unless it carries a
// valid bearer token for a user that still exists. Every rejection looks the
// same to the caller; the reason is only logged.
func (s *service) JWTAccessTokenMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := applog.FromContext(r.Context()).WithComponent(applog.ComponentAuth)

			userID, err := s.authenticate(r)
			if err != nil {
				if errors.Is(err, apperrors.ErrStorage) {
					logger.ErrorContext(r.Context(), "Could not resolve token identity", applog.FieldError, err)
					status, message := apperrors.HTTPStatus(err)
					writeJSONError(w, status, message)
					return
				}
				logger.WarnContext(r.Context(), "Rejected request", applog.FieldPath, r.URL.Path, applog.FieldError, err)
				writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			ctx := ContextWithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (s *service) authenticate(r *http.Request) (int64, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return 0, errMissingAuthHeader
	}

	scheme, tokenString, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
		return 0, errBadAuthScheme
	}

	userID, err := s.jwtManager.ValidateAccessToken(strings.TrimSpace(tokenString))
	if err != nil {
		return 0, err
	}

	if _, err := s.users.IdentityByID(r.Context(), userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return 0, ErrUnknownIdentity
		}
		return 0, err
	}
	return userID, nil
}

// writeJSONError writes an error response in JSON format
func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Status:  "error",
		Message: message,
		Code:    statusCode,
	})
}
