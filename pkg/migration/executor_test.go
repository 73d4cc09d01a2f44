package migration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marshallshelly/pebble-retail/pkg/models"
	"github.com/marshallshelly/pebble-retail/pkg/schema"
)

func TestSplitSQL(t *testing.T) {
	sql := `-- Migration: init
CREATE TABLE a (
    id INTEGER
);

-- trailing comment
CREATE TABLE b (id INTEGER);
`
	got := splitSQL(sql)
	require.Len(t, got, 2)
	assert.Equal(t, "CREATE TABLE a (\n    id INTEGER\n)", got[0])
	assert.Equal(t, "CREATE TABLE b (id INTEGER)", got[1])
}

func TestExecutor_StopsAtFirstFailure(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)

	err := NewExecutor(db).ApplyStatements(ctx, []string{
		"CREATE TABLE ok_table (id INTEGER)",
		"CREATE TABLE broken (",
		"CREATE TABLE never_created (id INTEGER)",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "statement 2")

	names, err := NewIntrospector(db).TableNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ok_table"}, names)
}

func TestExecutor_LockIsNoopOnSQLite(t *testing.T) {
	assert.NoError(t, NewExecutor(openSQLite(t)).Lock(context.Background()))
}

func TestGenerator_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	reg, err := models.NewRegistry()
	require.NoError(t, err)
	ordered, err := reg.Ordered()
	require.NoError(t, err)

	gen := NewGenerator(dir, NewPlanner(schema.SQLite))
	file, err := gen.Generate("init_retail", &SchemaDiff{TablesAdded: ordered})
	require.NoError(t, err)
	assert.FileExists(t, file.UpPath)
	assert.FileExists(t, file.DownPath)

	m, err := gen.ReadMigration(*file)
	require.NoError(t, err)
	assert.Contains(t, m.UpSQL, "-- Dialect: sqlite")

	db := openSQLite(t)
	exec := NewExecutor(db)
	require.NoError(t, exec.Apply(ctx, *m))

	names, err := NewIntrospector(db).TableNames(ctx)
	require.NoError(t, err)
	assert.Len(t, names, 12)

	require.NoError(t, exec.Rollback(ctx, *m))
	names, err = NewIntrospector(db).TableNames(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}
