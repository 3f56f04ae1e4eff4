package contact

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	apperrors "github.com/sebuszqo/ExpenseTracker/internal/errors"
	applog "github.com/sebuszqo/ExpenseTracker/internal/log"
)

type Handler struct {
	service      Service
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewHandler(
	service Service,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *Handler {
	if service == nil || respondJSON == nil || respondError == nil {
		panic("Service and response functions must not be nil")
	}
	return &Handler{service: service, respondJSON: respondJSON, respondError: respondError}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, action string) {
	var validationErrors *apperrors.ValidationErrors
	if errors.As(err, &validationErrors) {
		h.respondError(w, http.StatusBadRequest, "Validation errors occurred", validationErrors.Messages())
		return
	}

	status, message := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentContact).
			ErrorContext(r.Context(), action+" failed", applog.FieldError, err)
	}
	h.respondError(w, status, message)
}

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	msg, err := h.service.Submit(r.Context(), req.Name, req.Email, req.Message)
	if err != nil {
		h.writeError(w, r, err, "Contact submission")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Message received.",
		"data":    msg,
	})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	messages, err := h.service.List(r.Context())
	if err != nil {
		h.writeError(w, r, err, "Listing contact messages")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   messages,
	})
}

func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("messageID"), 10, 64)
	if err != nil || id <= 0 {
		h.respondError(w, http.StatusNotFound, "Message not found")
		return
	}

	msg, err := h.service.MarkRead(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err, "Marking contact message read")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   msg,
	})
}
