// Package dbtest opens throwaway databases for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	database "github.com/sebuszqo/ExpenseTracker/internal/db"
)

// NewSQLite returns a migrated database backed by a file in t.TempDir.
// The pool is closed when the test ends.
func NewSQLite(t testing.TB) *database.DBService {
	t.Helper()

	db, err := database.NewDBService(context.Background(), database.Options{
		Driver:      database.DriverSQLite,
		Path:        filepath.Join(t.TempDir(), "expenses.db"),
		BusyTimeout: 2 * time.Second,
	}, nil)
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.EnsureSchema(), "failed to migrate test database")
	return db
}

// NewSeededSQLite is NewSQLite plus the default category catalog.
func NewSeededSQLite(t testing.TB) *database.DBService {
	t.Helper()

	db := NewSQLite(t)
	_, err := db.SeedDefaultCategories(context.Background())
	require.NoError(t, err, "failed to seed test database")
	return db
}
