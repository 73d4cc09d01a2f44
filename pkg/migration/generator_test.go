package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marshallshelly/pebble-retail/pkg/models"
	"github.com/marshallshelly/pebble-retail/pkg/schema"
)

func TestGenerator_Generate(t *testing.T) {
	reg, err := models.NewRegistry()
	require.NoError(t, err)
	ordered, err := reg.Ordered()
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "migrations")
	gen := NewGenerator(dir, NewPlanner(schema.SQLite))

	file, err := gen.Generate("init_retail", &SchemaDiff{TablesAdded: ordered})
	require.NoError(t, err)

	assert.Equal(t, "init_retail", file.Name)
	assert.Equal(t, filepath.Join(dir, file.Version+"_init_retail.up.sql"), file.UpPath)
	assert.Equal(t, filepath.Join(dir, file.Version+"_init_retail.down.sql"), file.DownPath)
	assert.FileExists(t, file.UpPath)
	assert.FileExists(t, file.DownPath)

	m, err := gen.ReadMigration(*file)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(m.UpSQL, "-- Migration: init_retail\n-- Dialect: sqlite\n"))
	assert.Equal(t, 12, strings.Count(m.UpSQL, "CREATE TABLE"))
	assert.Equal(t, 12, strings.Count(m.DownSQL, "DROP TABLE IF EXISTS"))

	// parents are created first and dropped last
	assert.Less(t, strings.Index(m.UpSQL, "customers"), strings.Index(m.UpSQL, "shipments"))
	assert.Less(t, strings.Index(m.DownSQL, "shipments"), strings.Index(m.DownSQL, "customers"))
}

func TestGenerator_Errors(t *testing.T) {
	t.Run("directory below a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(file, nil, 0o644))

		_, err := NewGenerator(filepath.Join(file, "migrations"), NewPlanner(schema.SQLite)).
			Generate("init_retail", &SchemaDiff{})
		assert.ErrorContains(t, err, "failed to create migrations directory")
	})

	t.Run("missing files", func(t *testing.T) {
		gen := NewGenerator(t.TempDir(), NewPlanner(schema.PostgreSQL))
		_, err := gen.ReadMigration(MigrationFile{UpPath: filepath.Join(t.TempDir(), "nope.up.sql")})
		assert.ErrorContains(t, err, "failed to read up migration")
	})
}
