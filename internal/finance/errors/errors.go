package errors

import (
	"fmt"

	apperrors "github.com/sebuszqo/ExpenseTracker/internal/errors"
)

const MaxDescriptionLength = 200

var (
	ErrCategoryNotFound = apperrors.NewNotFoundError("category")
	ErrMovementNotFound = apperrors.NewNotFoundError("movement")
	ErrNotMovementOwner = fmt.Errorf("movement belongs to another user: %w", apperrors.ErrForbidden)

	ErrCategoryExists       = apperrors.NewConflictError("category already exists")
	ErrInvalidCategory      = apperrors.NewValidationError("category does not exist")
	ErrInvalidCategoryKind  = apperrors.NewValidationError("kind must be 'income' or 'expense'")
	ErrEmptyCategoryName    = apperrors.NewValidationError("category name must not be empty")
	ErrCategoryNameTooLong  = apperrors.NewValidationError("category name must be at most 50 characters")
	ErrEmptyDescription     = apperrors.NewValidationError("description must not be empty")
	ErrDescriptionTooLong   = apperrors.NewValidationError(fmt.Sprintf("description must be at most %d characters", MaxDescriptionLength))
	ErrMissingAmount        = apperrors.NewValidationError("amount is required")
	ErrAmountOutOfRange     = apperrors.NewValidationError("amount is out of range")
	ErrAmountTooPrecise     = apperrors.NewValidationError("amount has too many decimal places")
	ErrInvalidDate          = apperrors.NewValidationError("date must be YYYY-MM-DD, YYYY-MM-DD HH:MM:SS or RFC 3339")
	ErrMissingMovementOwner = apperrors.NewValidationError("movement must belong to a user")
)

