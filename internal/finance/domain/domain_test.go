package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/sebuszqo/ExpenseTracker/internal/errors"
	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
)

func TestParseCategoryKind(t *testing.T) {
	kind, err := ParseCategoryKind("income")
	require.NoError(t, err)
	assert.Equal(t, KindIncome, kind)

	for _, bad := range []string{"", "Income", "savings", " expense"} {
		_, err := ParseCategoryKind(bad)
		assert.ErrorIs(t, err, financeErrors.ErrInvalidCategoryKind, bad)
	}
}

func TestCategoryValidate(t *testing.T) {
	c := Category{Name: "  Viajes ", Kind: KindExpense}
	c.Normalize()
	assert.Equal(t, "Viajes", c.Name)
	assert.NoError(t, c.Validate())

	err := (&Category{Name: "", Kind: "other"}).Validate()
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationErrors(err))

	err = (&Category{Name: strings.Repeat("x", 51), Kind: KindIncome}).Validate()
	assert.ErrorIs(t, err, financeErrors.ErrCategoryNameTooLong)
}

func TestMovementNormalize(t *testing.T) {
	m := Movement{
		Description: "  coffee ",
		Amount:      decimal.RequireFromString("-3.456"),
		Date:        time.Date(2024, 1, 2, 3, 4, 5, 600, time.FixedZone("X", 3600)),
	}
	m.Normalize()

	assert.Equal(t, "coffee", m.Description)
	assert.True(t, m.Amount.Equal(decimal.RequireFromString("-3.46")))
	assert.True(t, time.Date(2024, 1, 2, 2, 4, 5, 0, time.UTC).Equal(m.Date))
}

func TestCheckAmount(t *testing.T) {
	tests := []struct {
		name   string
		amount decimal.Decimal
		want   error
	}{
		{"largest amount", decimal.RequireFromString("999999999999.99"), nil},
		{"largest negative amount", decimal.RequireFromString("-999999999999.99"), nil},
		{"many decimals", decimal.RequireFromString("0.00000000000000000001"), nil},
		{"zero with a huge exponent", decimal.New(0, 2000000000), nil},
		{"one trillion", decimal.New(1, 12), financeErrors.ErrAmountOutOfRange},
		{"thirteen digits", decimal.RequireFromString("-1000000000000"), financeErrors.ErrAmountOutOfRange},
		{"huge exponent", decimal.RequireFromString("1e200000000"), financeErrors.ErrAmountOutOfRange},
		{"tiny exponent", decimal.RequireFromString("1e-200000000"), financeErrors.ErrAmountTooPrecise},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckAmount(tt.amount)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestMovementNormalize_ZeroWithHugeExponent(t *testing.T) {
	m := Movement{Description: "nothing", Amount: decimal.New(0, 2000000000), UserID: 1}
	m.Normalize()

	assert.True(t, m.Amount.Equal(decimal.Zero))
	assert.NoError(t, m.Validate())
}

func TestMovementValidate(t *testing.T) {
	valid := Movement{Description: "rent", Amount: decimal.NewFromInt(-500), UserID: 1}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(m *Movement)
		want   error
	}{
		{"empty description", func(m *Movement) { m.Description = "" }, financeErrors.ErrEmptyDescription},
		{"long description", func(m *Movement) { m.Description = strings.Repeat("é", 201) }, financeErrors.ErrDescriptionTooLong},
		{"huge amount", func(m *Movement) { m.Amount = decimal.New(-1, 12) }, financeErrors.ErrAmountOutOfRange},
		{"huge exponent", func(m *Movement) { m.Amount = decimal.New(1, 200000000) }, financeErrors.ErrAmountOutOfRange},
		{"tiny exponent", func(m *Movement) { m.Amount = decimal.New(1, -200000000) }, financeErrors.ErrAmountTooPrecise},
		{"no owner", func(m *Movement) { m.UserID = 0 }, financeErrors.ErrMissingMovementOwner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := valid
			tt.mutate(&m)
			assert.ErrorIs(t, m.Validate(), tt.want)
		})
	}

	m := valid
	m.Description = strings.Repeat("a", 200)
	assert.NoError(t, m.Validate())
}

func TestParseDate(t *testing.T) {
	tests := map[string]time.Time{
		"2024-02-29":                time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		"2024-02-29 13:14:15":       time.Date(2024, 2, 29, 13, 14, 15, 0, time.UTC),
		"2024-02-29T13:14:15":       time.Date(2024, 2, 29, 13, 14, 15, 0, time.UTC),
		"2024-02-29T13:14:15+02:00": time.Date(2024, 2, 29, 11, 14, 15, 0, time.UTC),
	}
	for input, want := range tests {
		got, err := ParseDate(input)
		require.NoError(t, err, input)
		assert.True(t, want.Equal(got), input)
	}

	for _, bad := range []string{"", "29/02/2024", "2023-02-29"} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, financeErrors.ErrInvalidDate, bad)
	}
}
