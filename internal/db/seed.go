package database

import (
	"context"
	"fmt"
)

// DefaultCategory is one entry of the catalog installed on an empty database.
type DefaultCategory struct {
	Name string
	Kind string
}

var DefaultCategories = []DefaultCategory{
	{"Salario", "income"},
	{"Venta", "income"},
	{"Cobro de Alquiler", "income"},
	{"Otros Ingresos", "income"},
	{"Ingresos", "income"},
	{"Pago de alquiler", "expense"},
	{"Servicios Públicos", "expense"},
	{"Supermercado", "expense"},
	{"Transporte", "expense"},
	{"Gasolina", "expense"},
	{"Compras", "expense"},
	{"Bares y Restaurantes", "expense"},
	{"Vestimenta", "expense"},
	{"Entretenimiento", "expense"},
	{"Salud", "expense"},
	{"Educación", "expense"},
	{"Regalos", "expense"},
	{"Otros Gastos", "expense"},
}

// SeedDefaultCategories installs DefaultCategories when the categories table
// is empty and returns how many rows were inserted. Any existing category,
// seeded or user made, leaves the table untouched.
func (s *DBService) SeedDefaultCategories(ctx context.Context) (int, error) {
	inserted := 0
	err := s.WithTx(ctx, func(tx *Tx) error {
		inserted = 0

		var count int64
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
			return fmt.Errorf("count categories: %w", err)
		}
		if count > 0 {
			return nil
		}

		for _, c := range DefaultCategories {
			if _, err := tx.Exec(ctx, `INSERT INTO categories (name, kind) VALUES (?, ?)`, c.Name, c.Kind); err != nil {
				return fmt.Errorf("insert category %q: %w", c.Name, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if inserted > 0 {
		s.logger.InfoContext(ctx, "Seeded default categories", "count", inserted)
	}
	return inserted, nil
}
