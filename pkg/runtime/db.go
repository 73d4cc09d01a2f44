package runtime

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/marshallshelly/pebble-retail/pkg/schema"
)

// DefaultPath is the SQLite file used when no path is configured.
const DefaultPath = "retail.sqlite"

// Conn is the statement surface shared by DB and Tx.
type Conn interface {
	Dialect() schema.Dialect
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) *sql.Row
}

// DB represents a database handle.
type DB struct {
	sqlDB   *sql.DB
	dialect schema.Dialect
}

// Config represents database configuration.
type Config struct {
	Dialect schema.Dialect
	// Path is the SQLite database file. Created if absent.
	Path string
	// URL is the PostgreSQL connection string.
	URL string
}

// DefaultConfig returns a configuration for the embedded SQLite file.
func DefaultConfig() *Config {
	return &Config{
		Dialect: schema.SQLite,
		Path:    DefaultPath,
	}
}

// Open opens and pings the configured database.
func Open(ctx context.Context, config *Config) (*DB, error) {
	if config == nil {
		config = DefaultConfig()
	}

	driver, dsn, err := buildDSN(config)
	if err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", config.Dialect, err)
	}
	if config.Dialect == schema.SQLite {
		// One writer; keeps pragmas and the bootstrap transaction on a single connection.
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{sqlDB: sqlDB, dialect: config.Dialect}, nil
}

// NewDB wraps an already opened *sql.DB.
func NewDB(sqlDB *sql.DB, dialect schema.Dialect) *DB {
	return &DB{sqlDB: sqlDB, dialect: dialect}
}

// buildDSN returns the database/sql driver name and DSN for config.
func buildDSN(config *Config) (string, string, error) {
	switch config.Dialect {
	case schema.SQLite, "":
		config.Dialect = schema.SQLite
		path := strings.TrimSpace(config.Path)
		if path == "" {
			path = DefaultPath
		}
		path = filepath.Clean(path)
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return "", "", fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		return "sqlite", "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", nil
	case schema.PostgreSQL:
		if strings.TrimSpace(config.URL) == "" {
			return "", "", fmt.Errorf("postgres connection URL is required")
		}
		return "pgx", config.URL, nil
	default:
		return "", "", fmt.Errorf("unsupported dialect %q", config.Dialect)
	}
}

// SQL returns the underlying *sql.DB.
func (db *DB) SQL() *sql.DB {
	return db.sqlDB
}

// Dialect returns the SQL dialect of the connection.
func (db *DB) Dialect() schema.Dialect {
	return db.dialect
}

// Close closes the database handle.
func (db *DB) Close() error {
	if db == nil || db.sqlDB == nil {
		return nil
	}
	return db.sqlDB.Close()
}

// Ping verifies the database connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.sqlDB.PingContext(ctx)
}

// Begin starts a new transaction.
func (db *DB) Begin(ctx context.Context) (*Tx, error) {
	tx, err := db.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Tx{tx: tx, dialect: db.dialect}, nil
}

// Exec executes a query without returning any rows.
func (db *DB) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return execResult(db.sqlDB.ExecContext(ctx, query, args...))(query)
}

// Query executes a query that returns rows.
func (db *DB) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := db.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}
	return rows, nil
}

// QueryRow executes a query that returns at most one row.
func (db *DB) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return db.sqlDB.QueryRowContext(ctx, query, args...)
}

func execResult(result sql.Result, err error) func(query string) (int64, error) {
	return func(query string) (int64, error) {
		if err != nil {
			return 0, &QueryError{Query: query, Err: err}
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, nil
		}
		return n, nil
	}
}

var (
	_ Conn = (*DB)(nil)
	_ Conn = (*Tx)(nil)
)
