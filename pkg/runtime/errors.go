// Package runtime opens the backing SQL store and classifies driver errors.
package runtime

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")

	// ErrForeignKeyViolation is returned when a foreign key constraint is violated.
	ErrForeignKeyViolation = errors.New("foreign key violation")

	// ErrTransactionClosed is returned when operating on a closed transaction.
	ErrTransactionClosed = errors.New("transaction already closed")
)

// PostgreSQL SQLSTATE codes.
const (
	pgForeignKeyViolation = "23503"
	pgDuplicateTable      = "42P07"
)

// QueryError represents a query execution error.
type QueryError struct {
	Query string
	Err   error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	return fmt.Sprintf("query error: %v\nQuery: %s", e.Err, e.Query)
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// IsForeignKeyViolation reports whether err is a foreign key constraint
// failure raised by either driver.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrForeignKeyViolation) {
		return true
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY:
			return true
		case sqlite3lib.SQLITE_CONSTRAINT:
			// Primary code only when extended codes are off
			return strings.Contains(sqliteErr.Error(), "FOREIGN KEY")
		}
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	return false
}

// IsAlreadyExists reports whether err means a table or index already exists.
func IsAlreadyExists(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgDuplicateTable
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3lib.SQLITE_ERROR &&
			strings.Contains(sqliteErr.Error(), "already exists")
	}
	return false
}
