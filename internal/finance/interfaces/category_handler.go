package interfaces

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
)

type CategoryServiceInterface interface {
	ListCategories(ctx context.Context, kind string) ([]domain.Category, error)
	CreateCategory(ctx context.Context, name, kind string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id int64, name, kind string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

type CategoryHandler struct {
	service      CategoryServiceInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewCategoryHandler(
	service CategoryServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *CategoryHandler {
	if service == nil || respondJSON == nil || respondError == nil {
		panic("Service and response functions must not be nil")
	}
	return &CategoryHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

type categoryRequest struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// PathParams wraps next so that {categoryID} is validated first.
func (h *CategoryHandler) PathParams(next http.HandlerFunc) http.Handler {
	return ValidatePathParamsMiddleware(h.respondError, next, "categoryID")
}

func (h *CategoryHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context(), r.URL.Query().Get("kind"))
	if err != nil {
		writeServiceError(h.respondError, w, r, err, "Listing categories")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Categories retrieved successfully.",
		"data":    categories,
	})
}

func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	category, err := h.service.CreateCategory(r.Context(), req.Name, req.Kind)
	if err != nil {
		writeServiceError(h.respondError, w, r, err, "Creating category")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Category successfully created.",
		"data":    category,
	})
}

func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, _ := PathID(r, "categoryID")

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	category, err := h.service.UpdateCategory(r.Context(), categoryID, req.Name, req.Kind)
	if err != nil {
		writeServiceError(h.respondError, w, r, err, "Updating category")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Category successfully updated.",
		"data":    category,
	})
}

func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, _ := PathID(r, "categoryID")

	if err := h.service.DeleteCategory(r.Context(), categoryID); err != nil {
		writeServiceError(h.respondError, w, r, err, "Deleting category")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
