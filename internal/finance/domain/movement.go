package domain

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	apperrors "github.com/sebuszqo/ExpenseTracker/internal/errors"
	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
)

const (
	// amounts must stay below 10^12 to fit NUMERIC(14,2)
	maxAmountIntegerDigits = 12
	maxAmountScale         = 20
)

// Movement is a signed amount of money: positive values are inflows and
// negative values outflows.
type Movement struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	UserID      int64           `json:"user_id"`
	CategoryID  *int64          `json:"category_id"`
}

// CheckAmount bounds an amount by its digit count and exponent alone. It
// must run before anything rounds or compares the amount.
func CheckAmount(amount decimal.Decimal) error {
	if amount.Sign() == 0 {
		return nil
	}
	exp := int64(amount.Exponent())
	if exp < -maxAmountScale {
		return financeErrors.ErrAmountTooPrecise
	}
	if exp > maxAmountIntegerDigits || int64(amount.NumDigits())+exp > maxAmountIntegerDigits {
		return financeErrors.ErrAmountOutOfRange
	}
	return nil
}

func (m *Movement) RoundToTwoDecimalPlaces() {
	if m.Amount.Sign() == 0 {
		m.Amount = decimal.Zero
		return
	}
	m.Amount = m.Amount.Round(2)
}

// Normalize trims the description, rounds the amount and moves the date to
// UTC at second precision, the way it is stored. The amount must have
// passed CheckAmount.
func (m *Movement) Normalize() {
	m.Description = strings.TrimSpace(m.Description)
	m.RoundToTwoDecimalPlaces()
	if !m.Date.IsZero() {
		m.Date = m.Date.UTC().Truncate(time.Second)
	}
}

func (m *Movement) Validate() error {
	var errs apperrors.ValidationErrors
	if m.Description == "" {
		errs.Add(financeErrors.ErrEmptyDescription)
	} else if utf8.RuneCountInString(m.Description) > financeErrors.MaxDescriptionLength {
		errs.Add(financeErrors.ErrDescriptionTooLong)
	}
	if err := CheckAmount(m.Amount); err != nil {
		errs.Add(err)
	}
	if m.UserID <= 0 {
		errs.Add(financeErrors.ErrMissingMovementOwner)
	}
	return errs.ErrOrNil()
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate reads a user supplied date. Values without a zone are UTC.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, financeErrors.ErrInvalidDate
}

type MovementRepository interface {
	// FindByUser lists the user's movements, newest first.
	FindByUser(ctx context.Context, userID int64) ([]Movement, error)
	FindByID(ctx context.Context, id int64) (*Movement, error)
	Save(ctx context.Context, movement *Movement) error
	// Update and Delete only touch rows owned by userID.
	Update(ctx context.Context, movement Movement) error
	Delete(ctx context.Context, id, userID int64) error
}
