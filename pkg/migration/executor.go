package migration

import (
	"context"
	"fmt"
	"strings"

	"github.com/marshallshelly/pebble-retail/pkg/runtime"
	"github.com/marshallshelly/pebble-retail/pkg/schema"
)

// DefaultLockID is the advisory lock key taken on PostgreSQL while DDL runs.
const DefaultLockID int64 = 1234567890

// Executor runs DDL on a connection, normally the open bootstrap
// transaction.
type Executor struct {
	conn   runtime.Conn
	lockID int64
}

// NewExecutor creates a new executor.
func NewExecutor(conn runtime.Conn) *Executor {
	return &Executor{
		conn:   conn,
		lockID: DefaultLockID,
	}
}

// WithLockID sets a custom advisory lock ID.
func (e *Executor) WithLockID(lockID int64) *Executor {
	e.lockID = lockID
	return e
}

// Lock serialises concurrent bootstraps against the same PostgreSQL
// database. The lock is transaction scoped and released on commit or
// rollback. SQLite already allows a single writer, so this is a no-op there.
func (e *Executor) Lock(ctx context.Context) error {
	if e.conn.Dialect() != schema.PostgreSQL {
		return nil
	}
	if _, err := e.conn.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", e.lockID); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	return nil
}

// Apply executes a migration's up SQL statement by statement.
func (e *Executor) Apply(ctx context.Context, migration Migration) error {
	if err := e.ApplyStatements(ctx, splitSQL(migration.UpSQL)); err != nil {
		return fmt.Errorf("migration %s_%s: %w", migration.Version, migration.Name, err)
	}
	return nil
}

// Rollback executes a migration's down SQL statement by statement.
func (e *Executor) Rollback(ctx context.Context, migration Migration) error {
	if err := e.ApplyStatements(ctx, splitSQL(migration.DownSQL)); err != nil {
		return fmt.Errorf("rollback %s_%s: %w", migration.Version, migration.Name, err)
	}
	return nil
}

// ApplyStatements executes statements in order and stops at the first
// failure.
func (e *Executor) ApplyStatements(ctx context.Context, statements []string) error {
	for i, stmt := range statements {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" || strings.HasPrefix(stmt, "--") {
			continue
		}

		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := e.conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("statement %d failed: %w", i+1, err)
		}
	}
	return nil
}

// splitSQL splits a SQL string into individual statements.
// This is a simple implementation that splits on semicolons, which is
// enough for the DDL the planner emits.
func splitSQL(sql string) []string {
	lines := strings.Split(sql, "\n")
	var cleanedLines []string
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		cleanedLines = append(cleanedLines, line)
	}

	statements := strings.Split(strings.Join(cleanedLines, "\n"), ";")

	var result []string
	for _, stmt := range statements {
		stmt = strings.TrimSpace(stmt)
		if stmt != "" {
			result = append(result, stmt)
		}
	}

	return result
}
