package domain

import (
	"context"
	"strings"
	"unicode/utf8"

	apperrors "github.com/sebuszqo/ExpenseTracker/internal/errors"
	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
)

const maxCategoryNameLength = 50

type CategoryKind string

const (
	KindIncome  CategoryKind = "income"
	KindExpense CategoryKind = "expense"
)

// ParseCategoryKind accepts exactly "income" or "expense".
func ParseCategoryKind(kind string) (CategoryKind, error) {
	k := CategoryKind(kind)
	if !k.IsValid() {
		return "", financeErrors.ErrInvalidCategoryKind
	}
	return k, nil
}

func (k CategoryKind) IsValid() bool {
	return k == KindIncome || k == KindExpense
}

// Category is shared by every user.
type Category struct {
	ID   int64        `json:"id"`
	Name string       `json:"name"`
	Kind CategoryKind `json:"kind"`
}

func (c *Category) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
}

func (c *Category) Validate() error {
	var errs apperrors.ValidationErrors
	if c.Name == "" {
		errs.Add(financeErrors.ErrEmptyCategoryName)
	} else if utf8.RuneCountInString(c.Name) > maxCategoryNameLength {
		errs.Add(financeErrors.ErrCategoryNameTooLong)
	}
	if !c.Kind.IsValid() {
		errs.Add(financeErrors.ErrInvalidCategoryKind)
	}
	return errs.ErrOrNil()
}

type CategoryRepository interface {
	// FindAll lists categories ordered by kind then name. An empty kind
	// lists every category.
	FindAll(ctx context.Context, kind CategoryKind) ([]Category, error)
	FindByID(ctx context.Context, id int64) (*Category, error)
	FindByName(ctx context.Context, name string) (*Category, error)
	Save(ctx context.Context, category *Category) error
	Update(ctx context.Context, category Category) error
	Delete(ctx context.Context, id int64) error
	// InsertIfAbsent creates the category unless one with the same name exists.
	InsertIfAbsent(ctx context.Context, name string, kind CategoryKind) error
}
