package auth

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/sebuszqo/ExpenseTracker/internal/errors"
	applog "github.com/sebuszqo/ExpenseTracker/internal/log"
)

type Handler struct {
	authService Service
}

func NewHandler(authService Service) *Handler {
	return &Handler{
		authService: authService,
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	})
}

func (s *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Password == "" || req.Email == "" {
		respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	result, err := s.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		status, message := apperrors.HTTPStatus(err)
		if status == http.StatusUnauthorized {
			message = "Invalid credentials"
		} else if status >= http.StatusInternalServerError {
			applog.FromContext(r.Context()).ErrorContext(r.Context(), "Login failed", applog.FieldError, err)
		}
		respondError(w, status, message)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"access_token": result.AccessToken,
			"token_type":   result.TokenType,
			"expires_in":   int64(result.ExpiresIn.Seconds()),
		},
	})
}
