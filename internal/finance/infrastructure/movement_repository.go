package infrastructure

import (
	"context"
	"database/sql"
	"fmt"

	database "github.com/sebuszqo/ExpenseTracker/internal/db"
	apperrors "github.com/sebuszqo/ExpenseTracker/internal/errors"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
)

const movementColumns = "id, description, amount, date, user_id, category_id"

type MovementRepository struct {
	db *database.DBService
}

func NewMovementRepository(db *database.DBService) *MovementRepository {
	return &MovementRepository{db: db}
}

func scanMovement(row database.Scanner) (domain.Movement, error) {
	var (
		movement   domain.Movement
		date       string
		categoryID sql.NullInt64
	)
	if err := row.Scan(&movement.ID, &movement.Description, &movement.Amount, &date, &movement.UserID, &categoryID); err != nil {
		return domain.Movement{}, err
	}

	parsed, err := database.ParseTimestamp(date)
	if err != nil {
		return domain.Movement{}, fmt.Errorf("movement %d: %w", movement.ID, err)
	}
	movement.Date = parsed
	if categoryID.Valid {
		movement.CategoryID = &categoryID.Int64
	}
	movement.RoundToTwoDecimalPlaces()
	return movement, nil
}

func (r *MovementRepository) FindByUser(ctx context.Context, userID int64) ([]domain.Movement, error) {
	query := "SELECT " + movementColumns + " FROM movements WHERE user_id = ? ORDER BY date DESC, id DESC"
	return database.FetchAll(ctx, r.db, scanMovement, query, userID)
}

func (r *MovementRepository) FindByID(ctx context.Context, id int64) (*domain.Movement, error) {
	movement, err := database.FetchOne(ctx, r.db, scanMovement, "SELECT "+movementColumns+" FROM movements WHERE id = ?", id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, financeErrors.ErrMovementNotFound
		}
		return nil, err
	}
	return &movement, nil
}

func (r *MovementRepository) Save(ctx context.Context, movement *domain.Movement) error {
	id, err := r.db.Execute(ctx,
		`INSERT INTO movements (description, amount, date, user_id, category_id)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`,
		movement.Description, movement.Amount.StringFixed(2), database.FormatTimestamp(movement.Date),
		movement.UserID, movement.CategoryID,
	)
	if err != nil {
		return err
	}
	movement.ID = id
	return nil
}

func (r *MovementRepository) Update(ctx context.Context, movement domain.Movement) error {
	affected, err := r.db.Exec(ctx,
		`UPDATE movements SET description = ?, amount = ?, date = ?, category_id = ?
		WHERE id = ? AND user_id = ?`,
		movement.Description, movement.Amount.StringFixed(2), database.FormatTimestamp(movement.Date),
		movement.CategoryID, movement.ID, movement.UserID,
	)
	if err != nil {
		return err
	}
	if affected == 0 {
		return financeErrors.ErrMovementNotFound
	}
	return nil
}

func (r *MovementRepository) Delete(ctx context.Context, id, userID int64) error {
	affected, err := r.db.Exec(ctx, "DELETE FROM movements WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return financeErrors.ErrMovementNotFound
	}
	return nil
}
