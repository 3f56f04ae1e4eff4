package infrastructure

import (
	"context"

	database "github.com/sebuszqo/ExpenseTracker/internal/db"
	apperrors "github.com/sebuszqo/ExpenseTracker/internal/errors"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
)

type CategoryRepository struct {
	db *database.DBService
}

func NewCategoryRepository(db *database.DBService) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func scanCategory(row database.Scanner) (domain.Category, error) {
	var category domain.Category
	err := row.Scan(&category.ID, &category.Name, &category.Kind)
	return category, err
}

func (r *CategoryRepository) FindAll(ctx context.Context, kind domain.CategoryKind) ([]domain.Category, error) {
	query := "SELECT id, name, kind FROM categories"
	var args []interface{}

	if kind != "" {
		query += " WHERE kind = ?"
		args = append(args, kind)
	}
	query += " ORDER BY kind, name"

	return database.FetchAll(ctx, r.db, scanCategory, query, args...)
}

func (r *CategoryRepository) FindByID(ctx context.Context, id int64) (*domain.Category, error) {
	category, err := database.FetchOne(ctx, r.db, scanCategory, "SELECT id, name, kind FROM categories WHERE id = ?", id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, financeErrors.ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) FindByName(ctx context.Context, name string) (*domain.Category, error) {
	category, err := database.FetchOne(ctx, r.db, scanCategory, "SELECT id, name, kind FROM categories WHERE name = ?", name)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, financeErrors.ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) Save(ctx context.Context, category *domain.Category) error {
	id, err := r.db.Execute(ctx, "INSERT INTO categories (name, kind) VALUES (?, ?) RETURNING id", category.Name, category.Kind)
	if err != nil {
		return err
	}
	category.ID = id
	return nil
}

func (r *CategoryRepository) Update(ctx context.Context, category domain.Category) error {
	affected, err := r.db.Exec(ctx, "UPDATE categories SET name = ?, kind = ? WHERE id = ?", category.Name, category.Kind, category.ID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return financeErrors.ErrCategoryNotFound
	}
	return nil
}

// Delete removes the category. Movements referencing it keep existing with
// no category.
func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	affected, err := r.db.Exec(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return financeErrors.ErrCategoryNotFound
	}
	return nil
}

func (r *CategoryRepository) InsertIfAbsent(ctx context.Context, name string, kind domain.CategoryKind) error {
	_, err := r.db.Exec(ctx, "INSERT INTO categories (name, kind) VALUES (?, ?) ON CONFLICT (name) DO NOTHING", name, kind)
	return err
}
