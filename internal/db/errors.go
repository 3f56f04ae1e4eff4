package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	apperrors "github.com/sebuszqo/ExpenseTracker/internal/errors"
)

// postgres SQLSTATE codes
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgCheckViolation       = "23514"
	pgNotNullViolation     = "23502"
	pgLockNotAvailable     = "55P03"
	pgDeadlockDetected     = "40P01"
	pgSerializationFailure = "40001"
)

var (
	errDuplicate       = apperrors.NewConflictError("record already exists")
	errMissingRelation = apperrors.NewValidationError("referenced record does not exist")
	errConstraint      = apperrors.NewValidationError("value violates a data constraint")
)

// translate maps driver errors onto the application error kinds. Errors that
// already carry an application kind pass through untouched.
func translate(err error) error {
	if err == nil || isAppError(err) {
		return err
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return translateSQLite(sqliteErr)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return translatePostgres(pgErr)
	}

	return fmt.Errorf("%w: %w", apperrors.ErrStorage, err)
}

func translateSQLite(err *sqlite.Error) error {
	code := err.Code()
	switch code & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return fmt.Errorf("%w: %w", apperrors.ErrBusy, err)
	case sqlite3.SQLITE_CONSTRAINT:
		msg := err.Error()
		switch {
		case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE, code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY,
			strings.Contains(msg, "UNIQUE constraint failed"):
			return errDuplicate
		case code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, strings.Contains(msg, "FOREIGN KEY constraint failed"):
			return errMissingRelation
		default:
			return errConstraint
		}
	}
	return fmt.Errorf("%w: %w", apperrors.ErrStorage, err)
}

func translatePostgres(err *pgconn.PgError) error {
	switch err.Code {
	case pgUniqueViolation:
		return errDuplicate
	case pgForeignKeyViolation:
		return errMissingRelation
	case pgCheckViolation, pgNotNullViolation:
		return errConstraint
	case pgLockNotAvailable, pgDeadlockDetected, pgSerializationFailure:
		return fmt.Errorf("%w: %w", apperrors.ErrBusy, err)
	}
	return fmt.Errorf("%w: %w", apperrors.ErrStorage, err)
}

func isAppError(err error) bool {
	return apperrors.IsValidationError(err) ||
		apperrors.IsConflictError(err) ||
		errors.Is(err, apperrors.ErrNotFound) ||
		errors.Is(err, apperrors.ErrForbidden) ||
		errors.Is(err, apperrors.ErrUnauthenticated) ||
		errors.Is(err, apperrors.ErrStorage)
}
