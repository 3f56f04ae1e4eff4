package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	applog "github.com/sebuszqo/ExpenseTracker/internal/log"
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

const defaultBusyTimeout = 5 * time.Second

// Options selects and configures the backing database.
type Options struct {
	Driver Driver
	// Path is the database file for sqlite.
	Path string
	// ConnectionString is the DSN for postgres.
	ConnectionString string
	// BusyTimeout bounds how long a statement waits on a lock.
	BusyTimeout time.Duration
}

// DBService represents a service that interacts with a database.
type DBService struct {
	DB     *sql.DB
	driver Driver
	logger *applog.Logger
	// open returns a fresh handle on the same database, used by migrations.
	open func() (*sql.DB, error)
}

// NewDBService opens the pool described by opts and checks it is reachable.
func NewDBService(ctx context.Context, opts Options, logger *applog.Logger) (*DBService, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	if opts.BusyTimeout <= 0 {
		opts.BusyTimeout = defaultBusyTimeout
	}

	var open func() (*sql.DB, error)
	switch opts.Driver {
	case DriverSQLite, "":
		opts.Driver = DriverSQLite
		if opts.Path == "" || opts.Path == ":memory:" || strings.Contains(opts.Path, "mode=memory") {
			return nil, errors.New("sqlite needs a database file path")
		}
		dsn := sqliteDSN(opts.Path, opts.BusyTimeout)
		open = func() (*sql.DB, error) { return sql.Open("sqlite", dsn) }
	case DriverPostgres:
		if opts.ConnectionString == "" {
			return nil, errors.New("missing postgres connection string")
		}
		cfg, err := pgx.ParseConfig(opts.ConnectionString)
		if err != nil {
			return nil, fmt.Errorf("could not parse connection string: %w", err)
		}
		cfg.RuntimeParams["lock_timeout"] = strconv.FormatInt(opts.BusyTimeout.Milliseconds(), 10)
		open = func() (*sql.DB, error) { return stdlib.OpenDB(*cfg), nil }
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	db, err := open()
	if err != nil {
		return nil, fmt.Errorf("could not open db connection: %w", err)
	}

	if opts.Driver == DriverSQLite {
		// one writer at a time anyway; readers run alongside thanks to WAL
		db.SetMaxOpenConns(8)
		db.SetMaxIdleConns(8)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(50)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not connect to the database: %w", err)
	}

	return &DBService{
		DB:     db,
		driver: opts.Driver,
		logger: logger.WithComponent(applog.ComponentStorage),
		open:   open,
	}, nil
}

// sqliteDSN enables foreign keys, WAL and a bounded lock wait on every
// pooled connection. Writers take the lock at BEGIN so a busy database fails
// fast instead of deadlocking on lock upgrade.
func sqliteDSN(path string, busyTimeout time.Duration) string {
	return fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_txlock=immediate",
		path, busyTimeout.Milliseconds())
}

func (s *DBService) Driver() Driver {
	return s.driver
}

// Health checks the health of the database connection by pinging the database.
// It returns a map with keys indicating various health statistics.
func (s *DBService) Health(ctx context.Context) map[string]string {
	stats := make(map[string]string)

	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	if err := s.DB.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	dbStats := s.DB.Stats()
	stats["status"] = "up"
	stats["message"] = "It's healthy"
	stats["driver"] = string(s.driver)
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	return stats
}

// Close closes the database connection.
func (s *DBService) Close() error {
	s.logger.Info("Closing database connection", "driver", string(s.driver))
	return s.DB.Close()
}
