// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"path"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql
	_ "modernc.org/sqlite"             // SQLite driver for database/sql
)

//go:embed migrations
var migrations embed.FS

// Dialect identifies the SQL flavour of a database connection.
type Dialect string

// Supported dialects.
const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
)

// driverName returns the database/sql driver registered for the dialect.
func (d Dialect) driverName() string {
	switch d {
	case DialectPostgres:
		return "pgx"
	case DialectMySQL:
		return "mysql"
	default:
		return "sqlite"
	}
}

// gooseDialect returns the goose dialect name.
func (d Dialect) gooseDialect() string {
	if d == DialectSQLite {
		return "sqlite3"
	}
	return string(d)
}

// DBConfig holds database configuration options.
type DBConfig struct {
	// MaxOpenConns is the maximum number of open connections to the database.
	MaxOpenConns int
	// MaxIdleConns is the maximum number of connections in the idle connection pool.
	MaxIdleConns int
	// ConnMaxLifetime is the maximum amount of time a connection may be reused.
	ConnMaxLifetime time.Duration
	// ConnMaxIdleTime is the maximum amount of time a connection may be idle.
	ConnMaxIdleTime time.Duration
	// ConnectRetries is how many times the first ping is attempted.
	ConnectRetries int
	// RetryDelay is the initial wait between attempts. It doubles each time.
	RetryDelay time.Duration
}

// DefaultDBConfig returns sensible defaults for a small site.
func DefaultDBConfig() DBConfig {
	return DBConfig{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
		ConnectRetries:  1,
		RetryDelay:      time.Second,
	}
}

// sqlitePragmas configure SQLite for concurrent readers.
var sqlitePragmas = []string{
	"PRAGMA journal_mode=WAL",   // Write-Ahead Logging for better concurrency
	"PRAGMA busy_timeout=5000",  // Wait 5s when database is locked
	"PRAGMA synchronous=NORMAL", // Good balance of safety and speed
	"PRAGMA foreign_keys=ON",
	"PRAGMA temp_store=MEMORY",
}

// NewDB opens a SQLite database file and configures it.
func NewDB(path string) (*sql.DB, error) {
	cfg := DefaultDBConfig()
	return Open(context.Background(), DialectSQLite, path, cfg)
}

// Open connects to the database and verifies the connection. The first
// ping is retried with exponential backoff so a database that is still
// waking up (serverless cold start) does not fail the process.
func Open(ctx context.Context, dialect Dialect, dsn string, cfg DBConfig) (*sql.DB, error) {
	if dialect == DialectMySQL {
		var err error
		if dsn, err = mysqlDSN(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := pingWithRetry(ctx, db, cfg.ConnectRetries, cfg.RetryDelay); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if dialect == DialectSQLite {
		for _, pragma := range sqlitePragmas {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("setting pragma %q: %w", pragma, err)
			}
		}
	}

	return db, nil
}

func pingWithRetry(ctx context.Context, db *sql.DB, attempts int, delay time.Duration) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 1; i <= attempts; i++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		if i == attempts {
			break
		}
		slog.Warn("database not ready, retrying",
			"attempt", i,
			"max_attempts", attempts,
			"delay", delay.String(),
			"error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}

// mysqlDSN forces parseTime so DATETIME columns scan into time.Time.
func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parsing mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

// goose keeps its base FS and dialect in package state.
var migrateMu sync.Mutex

// Migrate runs all pending migrations for the dialect.
func Migrate(db *sql.DB, dialect Dialect) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(dialect.gooseDialect()); err != nil {
		return fmt.Errorf("setting dialect: %w", err)
	}

	if err := goose.Up(db, path.Join("migrations", string(dialect))); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}
