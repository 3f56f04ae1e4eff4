package interfaces

import (
	"context"

	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
)

type MockCategoryService struct {
	categories []domain.Category
	err        error
	lastKind   string
}

func (m *MockCategoryService) ListCategories(_ context.Context, kind string) ([]domain.Category, error) {
	m.lastKind = kind
	if m.err != nil {
		return nil, m.err
	}
	return m.categories, nil
}

func (m *MockCategoryService) CreateCategory(_ context.Context, name, kind string) (*domain.Category, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Category{ID: 7, Name: name, Kind: domain.CategoryKind(kind)}, nil
}

func (m *MockCategoryService) UpdateCategory(_ context.Context, id int64, name, kind string) (*domain.Category, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Category{ID: id, Name: name, Kind: domain.CategoryKind(kind)}, nil
}

func (m *MockCategoryService) DeleteCategory(_ context.Context, id int64) error {
	if m.err != nil {
		return m.err
	}
	for _, c := range m.categories {
		if c.ID == id {
			return nil
		}
	}
	return financeErrors.ErrCategoryNotFound
}

// MockMovementService stores movements in memory and enforces ownership the
// same way the real service does.
type MockMovementService struct {
	movements map[int64]domain.Movement
	nextID    int64
	err       error
}

func newMockMovementService(movements ...domain.Movement) *MockMovementService {
	m := &MockMovementService{movements: map[int64]domain.Movement{}}
	for _, mv := range movements {
		m.movements[mv.ID] = mv
		if mv.ID > m.nextID {
			m.nextID = mv.ID
		}
	}
	return m
}

func (m *MockMovementService) ListMovements(_ context.Context, userID int64) ([]domain.Movement, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []domain.Movement{}
	for _, mv := range m.movements {
		if mv.UserID == userID {
			out = append(out, mv)
		}
	}
	return out, nil
}

func (m *MockMovementService) GetMovement(_ context.Context, userID, movementID int64) (*domain.Movement, error) {
	if m.err != nil {
		return nil, m.err
	}
	mv, ok := m.movements[movementID]
	if !ok {
		return nil, financeErrors.ErrMovementNotFound
	}
	if mv.UserID != userID {
		return nil, financeErrors.ErrNotMovementOwner
	}
	return &mv, nil
}

func (m *MockMovementService) CreateMovement(_ context.Context, movement *domain.Movement) error {
	if m.err != nil {
		return m.err
	}
	if err := domain.CheckAmount(movement.Amount); err != nil {
		return err
	}
	movement.Normalize()
	if err := movement.Validate(); err != nil {
		return err
	}
	m.nextID++
	movement.ID = m.nextID
	m.movements[movement.ID] = *movement
	return nil
}

func (m *MockMovementService) UpdateMovement(ctx context.Context, userID int64, movement domain.Movement) (*domain.Movement, error) {
	current, err := m.GetMovement(ctx, userID, movement.ID)
	if err != nil {
		return nil, err
	}
	movement.UserID = current.UserID
	if movement.Date.IsZero() {
		movement.Date = current.Date
	}
	if err := domain.CheckAmount(movement.Amount); err != nil {
		return nil, err
	}
	movement.Normalize()
	if err := movement.Validate(); err != nil {
		return nil, err
	}
	m.movements[movement.ID] = movement
	return &movement, nil
}

func (m *MockMovementService) DeleteMovement(ctx context.Context, userID, movementID int64) error {
	if _, err := m.GetMovement(ctx, userID, movementID); err != nil {
		return err
	}
	delete(m.movements, movementID)
	return nil
}
