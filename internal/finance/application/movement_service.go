package application

import (
	"context"
	"fmt"
	"time"

	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
	applog "github.com/sebuszqo/ExpenseTracker/internal/log"
)

const (
	DefaultIncomeCategory  = "Ingresos"
	DefaultExpenseCategory = "Otros"
)

type CategoryServiceInterface interface {
	CategoryExists(ctx context.Context, id int64) (bool, error)
	GetOrCreateCategory(ctx context.Context, name string, kind domain.CategoryKind) (*domain.Category, error)
}

type MovementService struct {
	repo            domain.MovementRepository
	categoryService CategoryServiceInterface
	autoCategorize  bool
	now             func() time.Time
	logger          *applog.Logger
}

type MovementServiceOption func(*MovementService)

// WithAutoCategorize files uncategorized movements under a default income or
// expense category depending on the sign of the amount.
func WithAutoCategorize(enabled bool) MovementServiceOption {
	return func(s *MovementService) {
		s.autoCategorize = enabled
	}
}

func WithClock(now func() time.Time) MovementServiceOption {
	return func(s *MovementService) {
		s.now = now
	}
}

func NewMovementService(repo domain.MovementRepository, categoryService CategoryServiceInterface, logger *applog.Logger, opts ...MovementServiceOption) *MovementService {
	if logger == nil {
		logger = applog.Discard()
	}
	s := &MovementService{
		repo:            repo,
		categoryService: categoryService,
		now:             time.Now,
		logger:          logger.WithComponent(applog.ComponentFinance),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MovementService) ListMovements(ctx context.Context, userID int64) ([]domain.Movement, error) {
	return s.repo.FindByUser(ctx, userID)
}

// GetMovement returns the movement if it exists and belongs to userID.
func (s *MovementService) GetMovement(ctx context.Context, userID, movementID int64) (*domain.Movement, error) {
	movement, err := s.repo.FindByID(ctx, movementID)
	if err != nil {
		return nil, err
	}
	if movement.UserID != userID {
		s.logger.WarnContext(ctx, "Movement access denied", applog.FieldUserID, userID, "movement_id", movementID)
		return nil, financeErrors.ErrNotMovementOwner
	}
	return movement, nil
}

func (s *MovementService) CreateMovement(ctx context.Context, movement *domain.Movement) error {
	if err := domain.CheckAmount(movement.Amount); err != nil {
		return err
	}
	if movement.Date.IsZero() {
		movement.Date = s.now()
	}
	movement.Normalize()
	if err := movement.Validate(); err != nil {
		return err
	}
	if err := s.resolveCategory(ctx, movement); err != nil {
		return err
	}

	if err := s.repo.Save(ctx, movement); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Movement created", applog.FieldUserID, movement.UserID, "movement_id", movement.ID)
	return nil
}

// UpdateMovement replaces the editable fields of an owned movement. A zero
// date keeps the stored one.
func (s *MovementService) UpdateMovement(ctx context.Context, userID int64, update domain.Movement) (*domain.Movement, error) {
	if err := domain.CheckAmount(update.Amount); err != nil {
		return nil, err
	}
	current, err := s.GetMovement(ctx, userID, update.ID)
	if err != nil {
		return nil, err
	}

	update.UserID = current.UserID
	if update.Date.IsZero() {
		update.Date = current.Date
	}
	update.Normalize()
	if err := update.Validate(); err != nil {
		return nil, err
	}
	if err := s.resolveCategory(ctx, &update); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, update); err != nil {
		return nil, err
	}
	return &update, nil
}

func (s *MovementService) DeleteMovement(ctx context.Context, userID, movementID int64) error {
	if _, err := s.GetMovement(ctx, userID, movementID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, movementID, userID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Movement deleted", applog.FieldUserID, userID, "movement_id", movementID)
	return nil
}

func (s *MovementService) resolveCategory(ctx context.Context, movement *domain.Movement) error {
	if movement.CategoryID != nil {
		exists, err := s.categoryService.CategoryExists(ctx, *movement.CategoryID)
		if err != nil {
			return err
		}
		if !exists {
			return financeErrors.ErrInvalidCategory
		}
		return nil
	}

	if !s.autoCategorize {
		return nil
	}

	name, kind := DefaultIncomeCategory, domain.KindIncome
	if movement.Amount.IsNegative() {
		name, kind = DefaultExpenseCategory, domain.KindExpense
	}
	category, err := s.categoryService.GetOrCreateCategory(ctx, name, kind)
	if err != nil {
		return fmt.Errorf("could not assign default category: %w", err)
	}
	movement.CategoryID = &category.ID
	return nil
}
