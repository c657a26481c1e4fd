package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // registers the "postgres" driver
	_ "github.com/mattn/go-sqlite3" // registers the "sqlite3" driver
	"github.com/pressly/goose/v3"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverSQLite   = "sqlite3"
	DriverMemory   = "memory"
)

//go:embed migrations/postgres/*.sql migrations/sqlite3/*.sql
var migrationsFS embed.FS

// DBOptions controls how Open connects.
type DBOptions struct {
	Driver          string
	URL             string
	ConnectAttempts uint
	ConnectDelay    time.Duration
}

// Open connects to the configured database, retrying while the server comes
// up. The returned handle has been pinged.
func Open(ctx context.Context, opts DBOptions, logger *slog.Logger) (*sqlx.DB, error) {
	switch opts.Driver {
	case DriverPostgres, DriverPgx, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
	if opts.URL == "" {
		return nil, errors.New("DB connection string (url) cannot be empty")
	}
	attempts := opts.ConnectAttempts
	if attempts == 0 {
		attempts = 1
	}

	var db *sqlx.DB
	err := retry.Do(
		func() error {
			conn, err := sqlx.ConnectContext(ctx, opts.Driver, opts.URL)
			if err != nil {
				return err
			}
			db = conn
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(opts.ConnectDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.WarnContext(ctx, "Database not reachable yet, retrying",
				slog.String("driver", opts.Driver),
				slog.Int("attempt", int(n+1)),
				slog.String("error", err.Error()))
		}),
	)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to connect to database", slog.String("driver", opts.Driver), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to connect to %s: %w", opts.Driver, err)
	}
	if opts.Driver == DriverSQLite {
		// sqlite serializes writers; a single connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}
	logger.InfoContext(ctx, "Successfully connected to database", slog.String("driver", opts.Driver))
	return db, nil
}

// Migrate applies all pending schema migrations for the driver's dialect.
func Migrate(ctx context.Context, db *sqlx.DB, driver string) error {
	dialect, dir, err := migrationDialect(driver)
	if err != nil {
		return err
	}
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db.DB, dir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// MigrationVersion reports the current schema version.
func MigrationVersion(ctx context.Context, db *sqlx.DB, driver string) (int64, error) {
	dialect, _, err := migrationDialect(driver)
	if err != nil {
		return 0, err
	}
	if err := goose.SetDialect(dialect); err != nil {
		return 0, fmt.Errorf("failed to set migration dialect: %w", err)
	}
	return goose.GetDBVersionContext(ctx, db.DB)
}

func migrationDialect(driver string) (string, string, error) {
	switch driver {
	case DriverPostgres, DriverPgx:
		return "postgres", "migrations/postgres", nil
	case DriverSQLite:
		return "sqlite3", "migrations/sqlite3", nil
	}
	return "", "", fmt.Errorf("no migrations for driver %q", driver)
}
