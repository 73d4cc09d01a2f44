package runtime

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/marshallshelly/pebble-retail/pkg/schema"
)

// Tx wraps a database/sql transaction and remembers whether it has ended.
type Tx struct {
	tx      *sql.Tx
	dialect schema.Dialect
	closed  bool
}

// Dialect returns the SQL dialect of the transaction.
func (t *Tx) Dialect() schema.Dialect {
	return t.dialect
}

// Closed reports whether the transaction was committed or rolled back.
func (t *Tx) Closed() bool {
	return t.closed
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	if t.closed {
		return ErrTransactionClosed
	}
	t.closed = true
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback rolls back the transaction. Rolling back a closed transaction is
// a no-op.
func (t *Tx) Rollback() error {
	if t.closed {
		return nil
	}
	t.closed = true
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

// Exec executes a query without returning any rows.
func (t *Tx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	if t.closed {
		return 0, ErrTransactionClosed
	}
	return execResult(t.tx.ExecContext(ctx, query, args...))(query)
}

// Query executes a query that returns rows.
func (t *Tx) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if t.closed {
		return nil, ErrTransactionClosed
	}
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}
	return rows, nil
}

// QueryRow executes a query that returns at most one row.
func (t *Tx) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(ctx, query, args...)
}
