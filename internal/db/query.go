package database

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	apperrors "github.com/sebuszqo/ExpenseTracker/internal/errors"
)

const busyRetryDelay = 50 * time.Millisecond

// Scanner is implemented by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// FetchAll runs a read query on a dedicated connection and scans every row.
// It never returns a nil slice on success.
func FetchAll[T any](ctx context.Context, s *DBService, scan func(Scanner) (T, error), query string, args ...any) ([]T, error) {
	var out []T
	err := s.retry(ctx, func() error {
		out = []T{}
		return s.withConn(ctx, func(conn *sql.Conn) error {
			rows, err := conn.QueryContext(ctx, s.rebind(query), args...)
			if err != nil {
				return err
			}
			defer rows.Close()

			for rows.Next() {
				item, err := scan(rows)
				if err != nil {
					return err
				}
				out = append(out, item)
			}
			return rows.Err()
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FetchOne returns the first row of a read query, or ErrNotFound.
func FetchOne[T any](ctx context.Context, s *DBService, scan func(Scanner) (T, error), query string, args ...any) (T, error) {
	var out T
	err := s.retry(ctx, func() error {
		return s.withConn(ctx, func(conn *sql.Conn) error {
			item, err := scan(conn.QueryRowContext(ctx, s.rebind(query), args...))
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return apperrors.ErrNotFound
				}
				return err
			}
			out = item
			return nil
		})
	})
	return out, err
}

// Execute runs an INSERT ... RETURNING id in its own transaction and returns the id.
func (s *DBService) Execute(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	err := s.WithTx(ctx, func(tx *Tx) error {
		var err error
		id, err = tx.Execute(ctx, query, args...)
		return err
	})
	return id, err
}

// Exec runs an UPDATE or DELETE in its own transaction and returns the rows affected.
func (s *DBService) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	var affected int64
	err := s.WithTx(ctx, func(tx *Tx) error {
		var err error
		affected, err = tx.Exec(ctx, query, args...)
		return err
	})
	return affected, err
}

// Tx is a transaction handed to WithTx callbacks. Queries use ? placeholders.
type Tx struct {
	tx     *sql.Tx
	rebind func(string) string
}

func (t *Tx) Execute(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	if err := t.tx.QueryRowContext(ctx, t.rebind(query), args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (t *Tx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := t.tx.ExecContext(ctx, t.rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (t *Tx) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(ctx, t.rebind(query), args...)
}

// WithTx runs fn in a transaction. It commits when fn returns nil and rolls
// back otherwise, including on panic. A busy database is retried once.
func (s *DBService) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	return s.retry(ctx, func() error {
		return s.runTx(ctx, fn)
	})
}

func (s *DBService) runTx(ctx context.Context, fn func(tx *Tx) error) (err error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.logger.ErrorContext(ctx, "Rollback failed", "error", rbErr)
			}
		}
	}()

	if err = fn(&Tx{tx: tx, rebind: s.rebind}); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *DBService) withConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := s.DB.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	return fn(conn)
}

// retry translates driver errors and repeats op once when the database was busy.
func (s *DBService) retry(ctx context.Context, op func() error) error {
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(busyRetryDelay), 1), ctx)

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := translate(op())
		if err == nil {
			return nil
		}
		if !errors.Is(err, apperrors.ErrBusy) {
			return backoff.Permanent(err)
		}
		s.logger.WarnContext(ctx, "Database busy", "attempt", attempt, "error", err)
		return err
	}, policy)
}

// rebind rewrites ? placeholders to $1..$n for postgres. Queries in this
// module never contain a literal question mark.
func (s *DBService) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	return rebindDollar(query)
}

func rebindDollar(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
