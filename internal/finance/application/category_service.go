package application

import (
	"context"
	"strings"

	apperrors "github.com/sebuszqo/ExpenseTracker/internal/errors"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
	applog "github.com/sebuszqo/ExpenseTracker/internal/log"
)

type CategoryService struct {
	repo   domain.CategoryRepository
	logger *applog.Logger
}

func NewCategoryService(repo domain.CategoryRepository, logger *applog.Logger) *CategoryService {
	if logger == nil {
		logger = applog.Discard()
	}
	return &CategoryService{repo: repo, logger: logger.WithComponent(applog.ComponentFinance)}
}

// ListCategories returns every category, or only those of kind when it is
// not empty.
func (s *CategoryService) ListCategories(ctx context.Context, kind string) ([]domain.Category, error) {
	var filter domain.CategoryKind
	if kind != "" {
		parsed, err := domain.ParseCategoryKind(kind)
		if err != nil {
			return nil, err
		}
		filter = parsed
	}
	return s.repo.FindAll(ctx, filter)
}

func (s *CategoryService) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *CategoryService) CategoryExists(ctx context.Context, id int64) (bool, error) {
	_, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *CategoryService) CreateCategory(ctx context.Context, name, kind string) (*domain.Category, error) {
	category := &domain.Category{Name: name, Kind: domain.CategoryKind(kind)}
	category.Normalize()
	if err := category.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, category); err != nil {
		if apperrors.IsConflictError(err) {
			return nil, financeErrors.ErrCategoryExists
		}
		return nil, err
	}
	s.logger.InfoContext(ctx, "Category created", "category_id", category.ID, "kind", category.Kind)
	return category, nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, id int64, name, kind string) (*domain.Category, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}

	category := domain.Category{ID: id, Name: name, Kind: domain.CategoryKind(kind)}
	category.Normalize()
	if err := category.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, category); err != nil {
		if apperrors.IsConflictError(err) {
			return nil, financeErrors.ErrCategoryExists
		}
		return nil, err
	}
	return &category, nil
}

// DeleteCategory removes a category; its movements become uncategorized.
func (s *CategoryService) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Category deleted", "category_id", id)
	return nil
}

// GetOrCreateCategory returns the category called name, creating it with
// kind first if needed. Concurrent callers end up with the same row.
func (s *CategoryService) GetOrCreateCategory(ctx context.Context, name string, kind domain.CategoryKind) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	candidate := domain.Category{Name: name, Kind: kind}
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.InsertIfAbsent(ctx, name, kind); err != nil {
		return nil, err
	}
	return s.repo.FindByName(ctx, name)
}
