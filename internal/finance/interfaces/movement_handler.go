package interfaces

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/sebuszqo/ExpenseTracker/internal/auth"
	database "github.com/sebuszqo/ExpenseTracker/internal/db"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
)

type MovementServiceInterface interface {
	ListMovements(ctx context.Context, userID int64) ([]domain.Movement, error)
	GetMovement(ctx context.Context, userID, movementID int64) (*domain.Movement, error)
	CreateMovement(ctx context.Context, movement *domain.Movement) error
	UpdateMovement(ctx context.Context, userID int64, movement domain.Movement) (*domain.Movement, error)
	DeleteMovement(ctx context.Context, userID, movementID int64) error
}

type MovementHandler struct {
	service      MovementServiceInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewMovementHandler(
	service MovementServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *MovementHandler {
	if service == nil || respondJSON == nil || respondError == nil {
		panic("Service and response functions must not be nil")
	}
	return &MovementHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

type movementRequest struct {
	Description string           `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	Date        string           `json:"date"`
	CategoryID  *int64           `json:"category_id"`
}

func (req movementRequest) toMovement() (domain.Movement, error) {
	if req.Amount == nil {
		return domain.Movement{}, financeErrors.ErrMissingAmount
	}
	if err := domain.CheckAmount(*req.Amount); err != nil {
		return domain.Movement{}, err
	}
	movement := domain.Movement{
		Description: req.Description,
		Amount:      *req.Amount,
		CategoryID:  req.CategoryID,
	}
	if req.Date != "" {
		date, err := domain.ParseDate(req.Date)
		if err != nil {
			return domain.Movement{}, err
		}
		movement.Date = date
	}
	return movement, nil
}

type movementResponse struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	UserID      int64  `json:"user_id"`
	CategoryID  *int64 `json:"category_id"`
}

func toMovementResponse(m domain.Movement) movementResponse {
	return movementResponse{
		ID:          m.ID,
		Description: m.Description,
		Amount:      m.Amount.StringFixed(2),
		Date:        database.FormatTimestamp(m.Date),
		UserID:      m.UserID,
		CategoryID:  m.CategoryID,
	}
}

func (h *MovementHandler) getUserIDReq(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return 0, false
	}
	return userID, true
}

// PathParams wraps next so that {movementID} is validated first.
func (h *MovementHandler) PathParams(next http.HandlerFunc) http.Handler {
	return ValidatePathParamsMiddleware(h.respondError, next, "movementID")
}

func (h *MovementHandler) GetMovements(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.getUserIDReq(w, r)
	if !ok {
		return
	}

	movements, err := h.service.ListMovements(r.Context(), userID)
	if err != nil {
		writeServiceError(h.respondError, w, r, err, "Listing movements")
		return
	}

	data := make([]movementResponse, len(movements))
	for i, m := range movements {
		data[i] = toMovementResponse(m)
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Movements retrieved successfully.",
		"data":    data,
	})
}

func (h *MovementHandler) GetMovement(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.getUserIDReq(w, r)
	if !ok {
		return
	}
	movementID, _ := PathID(r, "movementID")

	movement, err := h.service.GetMovement(r.Context(), userID, movementID)
	if err != nil {
		writeServiceError(h.respondError, w, r, err, "Fetching movement")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Movement retrieved successfully.",
		"data":    toMovementResponse(*movement),
	})
}

func (h *MovementHandler) CreateMovement(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.getUserIDReq(w, r)
	if !ok {
		return
	}

	var req movementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	movement, err := req.toMovement()
	if err != nil {
		writeServiceError(h.respondError, w, r, err, "Creating movement")
		return
	}
	movement.UserID = userID

	if err := h.service.CreateMovement(r.Context(), &movement); err != nil {
		writeServiceError(h.respondError, w, r, err, "Creating movement")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Movement successfully created.",
		"data":    toMovementResponse(movement),
	})
}

func (h *MovementHandler) UpdateMovement(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.getUserIDReq(w, r)
	if !ok {
		return
	}
	movementID, _ := PathID(r, "movementID")

	var req movementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	movement, err := req.toMovement()
	if err != nil {
		writeServiceError(h.respondError, w, r, err, "Updating movement")
		return
	}
	movement.ID = movementID

	updated, err := h.service.UpdateMovement(r.Context(), userID, movement)
	if err != nil {
		writeServiceError(h.respondError, w, r, err, "Updating movement")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Movement successfully updated.",
		"data":    toMovementResponse(*updated),
	})
}

func (h *MovementHandler) DeleteMovement(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.getUserIDReq(w, r)
	if !ok {
		return
	}
	movementID, _ := PathID(r, "movementID")

	if err := h.service.DeleteMovement(r.Context(), userID, movementID); err != nil {
		writeServiceError(h.respondError, w, r, err, "Deleting movement")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
