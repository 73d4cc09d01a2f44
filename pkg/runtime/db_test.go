package runtime

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marshallshelly/pebble-retail/pkg/schema"
)

func openSQLite(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), &Config{
		Dialect: schema.SQLite,
		Path:    filepath.Join(t.TempDir(), "nested", "test.sqlite"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen_SQLite(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	assert.Equal(t, schema.SQLite, db.Dialect())
	require.NoError(t, db.Ping(ctx))

	var fk int
	require.NoError(t, db.QueryRow(ctx, "PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("postgres without url", func(t *testing.T) {
		_, err := Open(ctx, &Config{Dialect: schema.PostgreSQL})
		assert.ErrorContains(t, err, "postgres connection URL is required")
	})

	t.Run("unknown dialect", func(t *testing.T) {
		_, err := Open(ctx, &Config{Dialect: "oracle"})
		assert.ErrorContains(t, err, `unsupported dialect "oracle"`)
	})

	t.Run("directory below a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(file, nil, 0o644))
		_, err := Open(ctx, &Config{Dialect: schema.SQLite, Path: filepath.Join(file, "db.sqlite")})
		assert.Error(t, err)
	})
}

func TestTx(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	_, err := db.Exec(ctx, "CREATE TABLE parents (id INTEGER PRIMARY KEY)")
	require.NoError(t, err)
	_, err = db.Exec(ctx, "CREATE TABLE children (id INTEGER PRIMARY KEY, parent_id INTEGER NOT NULL REFERENCES parents (id))")
	require.NoError(t, err)

	count := func() int {
		var n int
		require.NoError(t, db.QueryRow(ctx, "SELECT COUNT(*) FROM parents").Scan(&n))
		return n
	}

	t.Run("rollback discards", func(t *testing.T) {
		tx, err := db.Begin(ctx)
		require.NoError(t, err)
		n, err := tx.Exec(ctx, "INSERT INTO parents (id) VALUES (1)")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		require.NoError(t, tx.Rollback())
		assert.True(t, tx.Closed())
		assert.NoError(t, tx.Rollback())
		assert.Equal(t, 0, count())
	})

	t.Run("commit persists", func(t *testing.T) {
		tx, err := db.Begin(ctx)
		require.NoError(t, err)
		_, err = tx.Exec(ctx, "INSERT INTO parents (id) VALUES (1)")
		require.NoError(t, err)
		require.NoError(t, tx.Commit())
		assert.Equal(t, 1, count())

		assert.ErrorIs(t, tx.Commit(), ErrTransactionClosed)
		_, err = tx.Exec(ctx, "INSERT INTO parents (id) VALUES (2)")
		assert.ErrorIs(t, err, ErrTransactionClosed)
		_, err = tx.Query(ctx, "SELECT id FROM parents")
		assert.ErrorIs(t, err, ErrTransactionClosed)
	})

	t.Run("foreign key violation", func(t *testing.T) {
		tx, err := db.Begin(ctx)
		require.NoError(t, err)
		defer tx.Rollback()

		_, err = tx.Exec(ctx, "INSERT INTO children (parent_id) VALUES (99)")
		require.Error(t, err)
		assert.True(t, IsForeignKeyViolation(err))
		assert.False(t, IsAlreadyExists(err))

		var qe *QueryError
		require.ErrorAs(t, err, &qe)
		assert.Contains(t, qe.Error(), "INSERT INTO children")
	})

	t.Run("already exists", func(t *testing.T) {
		_, err := db.Exec(ctx, "CREATE TABLE parents (id INTEGER PRIMARY KEY)")
		require.Error(t, err)
		assert.True(t, IsAlreadyExists(err))
		assert.False(t, IsForeignKeyViolation(err))
	})
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		foreignKey    bool
		alreadyExists bool
	}{
		{"nil", nil, false, false},
		{"plain", errors.New("boom"), false, false},
		{"sentinel", ErrForeignKeyViolation, true, false},
		{"pg foreign key", &pgconn.PgError{Code: "23503"}, true, false},
		{"pg duplicate table", &QueryError{Err: &pgconn.PgError{Code: "42P07"}}, false, true},
		{"pg unique", &pgconn.PgError{Code: "23505"}, false, false},
		{"no rows", sql.ErrNoRows, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.foreignKey, IsForeignKeyViolation(tt.err))
			assert.Equal(t, tt.alreadyExists, IsAlreadyExists(tt.err))
		})
	}
}

func TestNewDB(t *testing.T) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db := NewDB(sqlDB, schema.SQLite)
	defer db.Close()

	assert.Same(t, sqlDB, db.SQL())
	var nilDB *DB
	assert.NoError(t, nilDB.Close())
}
