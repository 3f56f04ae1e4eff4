package interfaces

import (
	"errors"
	"net/http"

	apperrors "github.com/sebuszqo/ExpenseTracker/internal/errors"
	applog "github.com/sebuszqo/ExpenseTracker/internal/log"
)

// writeServiceError maps a service error onto the response. Several
// validation problems are listed under "errors".
func writeServiceError(respondError func(w http.ResponseWriter, status int, message string, details ...[]string), w http.ResponseWriter, r *http.Request, err error, action string) {
	var validationErrors *apperrors.ValidationErrors
	if errors.As(err, &validationErrors) {
		respondError(w, http.StatusBadRequest, "Validation errors occurred", validationErrors.Messages())
		return
	}

	status, message := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentFinance).
			ErrorContext(r.Context(), action+" failed", applog.FieldError, err)
	}
	respondError(w, status, message)
}
