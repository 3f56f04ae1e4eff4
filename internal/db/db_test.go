package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	apperrors "github.com/sebuszqo/ExpenseTracker/internal/errors"
)

type DBTestSuite struct {
	suite.Suite
	ctx  context.Context
	path string
	db   *DBService
}

func (suite *DBTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.path = filepath.Join(suite.T().TempDir(), "test.db")

	db, err := NewDBService(suite.ctx, Options{Driver: DriverSQLite, Path: suite.path, BusyTimeout: time.Second}, nil)
	require.NoError(suite.T(), err, "failed to create test database")
	require.NoError(suite.T(), db.EnsureSchema())
	suite.db = db
}

func (suite *DBTestSuite) TearDownTest() {
	if suite.db != nil {
		suite.db.Close()
	}
}

func TestDBTestSuite(t *testing.T) {
	suite.Run(t, new(DBTestSuite))
}

func (suite *DBTestSuite) createUser(name string) int64 {
	id, err := suite.db.Execute(suite.ctx,
		`INSERT INTO users (name, email, password_hash) VALUES (?, ?, ?) RETURNING id`,
		name, name+"@example.com", "hash")
	require.NoError(suite.T(), err)
	return id
}

func scanName(row Scanner) (string, error) {
	var name string
	err := row.Scan(&name)
	return name, err
}

func (suite *DBTestSuite) TestPragmasAreApplied() {
	var fk int
	require.NoError(suite.T(), suite.db.DB.QueryRowContext(suite.ctx, `PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(suite.T(), 1, fk)

	var mode string
	require.NoError(suite.T(), suite.db.DB.QueryRowContext(suite.ctx, `PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(suite.T(), "wal", mode)
}

func (suite *DBTestSuite) TestEnsureSchemaIsIdempotent() {
	id := suite.createUser("ana")

	require.NoError(suite.T(), suite.db.EnsureSchema())
	require.NoError(suite.T(), suite.db.EnsureSchema())

	name, err := FetchOne(suite.ctx, suite.db, scanName, `SELECT name FROM users WHERE id = ?`, id)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "ana", name)
}

func (suite *DBTestSuite) TestIndexesExist() {
	names, err := FetchAll(suite.ctx, suite.db, scanName,
		`SELECT name FROM sqlite_master WHERE type = 'index' AND name LIKE 'idx_%' ORDER BY name`)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), []string{
		"idx_categories_kind",
		"idx_contact_messages_date",
		"idx_movements_category",
		"idx_movements_user",
	}, names)
}

func (suite *DBTestSuite) TestSeedDefaultCategories() {
	inserted, err := suite.db.SeedDefaultCategories(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), len(DefaultCategories), inserted)

	inserted, err = suite.db.SeedDefaultCategories(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Zero(suite.T(), inserted)

	names, err := FetchAll(suite.ctx, suite.db, scanName, `SELECT name FROM categories`)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), names, len(DefaultCategories))
}

func (suite *DBTestSuite) TestSeedSkipsWhenUserCategoriesExist() {
	_, err := suite.db.Execute(suite.ctx, `INSERT INTO categories (name, kind) VALUES (?, ?) RETURNING id`, "Mascotas", "expense")
	require.NoError(suite.T(), err)

	inserted, err := suite.db.SeedDefaultCategories(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Zero(suite.T(), inserted)

	names, err := FetchAll(suite.ctx, suite.db, scanName, `SELECT name FROM categories`)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), []string{"Mascotas"}, names)
}

func (suite *DBTestSuite) TestFetchAllEmptyIsNotNil() {
	names, err := FetchAll(suite.ctx, suite.db, scanName, `SELECT name FROM users`)
	require.NoError(suite.T(), err)
	assert.NotNil(suite.T(), names)
	assert.Empty(suite.T(), names)
}

func (suite *DBTestSuite) TestFetchOneNotFound() {
	_, err := FetchOne(suite.ctx, suite.db, scanName, `SELECT name FROM users WHERE id = ?`, 999)
	assert.True(suite.T(), errors.Is(err, apperrors.ErrNotFound))
}

func (suite *DBTestSuite) TestExecReturnsRowsAffected() {
	suite.createUser("ana")
	suite.createUser("bob")

	affected, err := suite.db.Exec(suite.ctx, `UPDATE users SET password_hash = ?`, "new")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(2), affected)

	affected, err = suite.db.Exec(suite.ctx, `DELETE FROM users WHERE name = ?`, "nobody")
	require.NoError(suite.T(), err)
	assert.Zero(suite.T(), affected)
}

func (suite *DBTestSuite) TestUniqueViolationIsConflict() {
	suite.createUser("ana")

	_, err := suite.db.Execute(suite.ctx,
		`INSERT INTO users (name, email, password_hash) VALUES (?, ?, ?) RETURNING id`,
		"ana2", "ana@example.com", "hash")
	assert.True(suite.T(), apperrors.IsConflictError(err), "got %v", err)
}

func (suite *DBTestSuite) TestForeignKeyViolationIsValidation() {
	_, err := suite.db.Execute(suite.ctx,
		`INSERT INTO movements (description, amount, user_id) VALUES (?, ?, ?) RETURNING id`,
		"orphan", "1.00", 12345)
	assert.True(suite.T(), apperrors.IsValidationError(err), "got %v", err)
}

func (suite *DBTestSuite) TestCheckConstraintIsValidation() {
	_, err := suite.db.Execute(suite.ctx, `INSERT INTO categories (name, kind) VALUES (?, ?) RETURNING id`, "Bad", "transfer")
	assert.True(suite.T(), apperrors.IsValidationError(err), "got %v", err)
}

func (suite *DBTestSuite) TestDeletingCategoryNullifiesMovements() {
	userID := suite.createUser("ana")
	categoryID, err := suite.db.Execute(suite.ctx, `INSERT INTO categories (name, kind) VALUES (?, ?) RETURNING id`, "Viajes", "expense")
	require.NoError(suite.T(), err)
	movementID, err := suite.db.Execute(suite.ctx,
		`INSERT INTO movements (description, amount, user_id, category_id) VALUES (?, ?, ?, ?) RETURNING id`,
		"tren", "-20.00", userID, categoryID)
	require.NoError(suite.T(), err)

	_, err = suite.db.Exec(suite.ctx, `DELETE FROM categories WHERE id = ?`, categoryID)
	require.NoError(suite.T(), err)

	category, err := FetchOne(suite.ctx, suite.db, func(row Scanner) (sql.NullInt64, error) {
		var v sql.NullInt64
		err := row.Scan(&v)
		return v, err
	}, `SELECT category_id FROM movements WHERE id = ?`, movementID)
	require.NoError(suite.T(), err)
	assert.False(suite.T(), category.Valid)
}

func (suite *DBTestSuite) TestDeletingUserCascadesMovements() {
	userID := suite.createUser("ana")
	_, err := suite.db.Execute(suite.ctx,
		`INSERT INTO movements (description, amount, user_id) VALUES (?, ?, ?) RETURNING id`, "cafe", "-2.50", userID)
	require.NoError(suite.T(), err)

	_, err = suite.db.Exec(suite.ctx, `DELETE FROM users WHERE id = ?`, userID)
	require.NoError(suite.T(), err)

	count, err := FetchOne(suite.ctx, suite.db, func(row Scanner) (int, error) {
		var n int
		err := row.Scan(&n)
		return n, err
	}, `SELECT COUNT(*) FROM movements`)
	require.NoError(suite.T(), err)
	assert.Zero(suite.T(), count)
}

func (suite *DBTestSuite) TestWithTxRollsBackOnError() {
	boom := errors.New("boom")
	err := suite.db.WithTx(suite.ctx, func(tx *Tx) error {
		if _, err := tx.Exec(suite.ctx, `INSERT INTO categories (name, kind) VALUES (?, ?)`, "Temporal", "expense"); err != nil {
			return err
		}
		return boom
	})
	assert.True(suite.T(), errors.Is(err, apperrors.ErrStorage))
	assert.ErrorContains(suite.T(), err, "boom")

	names, err := FetchAll(suite.ctx, suite.db, scanName, `SELECT name FROM categories`)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), names)
}

func (suite *DBTestSuite) TestWithTxRollsBackOnPanic() {
	assert.Panics(suite.T(), func() {
		_ = suite.db.WithTx(suite.ctx, func(tx *Tx) error {
			_, _ = tx.Exec(suite.ctx, `INSERT INTO categories (name, kind) VALUES (?, ?)`, "Temporal", "expense")
			panic("unexpected")
		})
	})

	names, err := FetchAll(suite.ctx, suite.db, scanName, `SELECT name FROM categories`)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), names)
	assert.Zero(suite.T(), suite.db.DB.Stats().InUse)
}

func (suite *DBTestSuite) TestConnectionsAreReleased() {
	suite.createUser("ana")
	for i := 0; i < 20; i++ {
		_, _ = FetchOne(suite.ctx, suite.db, scanName, `SELECT name FROM users WHERE id = ?`, 999)
		_, _ = FetchAll(suite.ctx, suite.db, scanName, `SELECT name FROM users`)
		_, _ = suite.db.Execute(suite.ctx, `INSERT INTO users (name, email, password_hash) VALUES (?, ?, ?) RETURNING id`, "ana", "ana@example.com", "x")
	}
	assert.Zero(suite.T(), suite.db.DB.Stats().InUse)
}

func (suite *DBTestSuite) TestBusyDatabaseFailsWithErrBusy() {
	// A second pool holding the write lock makes every writer here wait for
	// the busy timeout and then give up.
	other, err := NewDBService(suite.ctx, Options{Driver: DriverSQLite, Path: suite.path, BusyTimeout: 100 * time.Millisecond}, nil)
	require.NoError(suite.T(), err)
	defer other.Close()

	locker, err := other.DB.BeginTx(suite.ctx, nil)
	require.NoError(suite.T(), err)
	defer locker.Rollback()
	_, err = locker.ExecContext(suite.ctx, `INSERT INTO categories (name, kind) VALUES ('Lock', 'expense')`)
	require.NoError(suite.T(), err)

	fast, err := NewDBService(suite.ctx, Options{Driver: DriverSQLite, Path: suite.path, BusyTimeout: 100 * time.Millisecond}, nil)
	require.NoError(suite.T(), err)
	defer fast.Close()

	_, err = fast.Exec(suite.ctx, `DELETE FROM categories`)
	assert.True(suite.T(), errors.Is(err, apperrors.ErrBusy), "got %v", err)
	assert.True(suite.T(), errors.Is(err, apperrors.ErrStorage))
}

func TestNewDBService_RejectsInMemory(t *testing.T) {
	_, err := NewDBService(context.Background(), Options{Driver: DriverSQLite, Path: ":memory:"}, nil)
	assert.Error(t, err)

	_, err = NewDBService(context.Background(), Options{Driver: "oracle", Path: "x"}, nil)
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestRebindDollar(t *testing.T) {
	assert.Equal(t,
		"SELECT id FROM movements WHERE user_id = $1 AND id = $2",
		rebindDollar("SELECT id FROM movements WHERE user_id = ? AND id = ?"))
	assert.Equal(t, "SELECT 1", rebindDollar("SELECT 1"))
}

func TestTranslatePostgres(t *testing.T) {
	tests := []struct {
		code  string
		check func(error) bool
	}{
		{pgUniqueViolation, apperrors.IsConflictError},
		{pgForeignKeyViolation, apperrors.IsValidationError},
		{pgCheckViolation, apperrors.IsValidationError},
		{pgLockNotAvailable, func(err error) bool { return errors.Is(err, apperrors.ErrBusy) }},
		{pgDeadlockDetected, func(err error) bool { return errors.Is(err, apperrors.ErrBusy) }},
		{"08006", func(err error) bool {
			return errors.Is(err, apperrors.ErrStorage) && !errors.Is(err, apperrors.ErrBusy)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := translate(&pgconn.PgError{Code: tt.code, Message: "test"})
			assert.True(t, tt.check(err), "got %v", err)
		})
	}
}

func TestTranslateKeepsApplicationErrors(t *testing.T) {
	notFound := apperrors.NewNotFoundError("movement")
	assert.Same(t, notFound, translate(notFound))
	assert.Nil(t, translate(nil))
}
