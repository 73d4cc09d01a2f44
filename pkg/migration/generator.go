package migration

import (
	"fmt"
	"os"
	"path/filepath"
)

// Generator writes migration scripts to a directory.
type Generator struct {
	migrationsDir string
	planner       *Planner
}

// NewGenerator creates a generator that renders SQL with planner.
func NewGenerator(migrationsDir string, planner *Planner) *Generator {
	return &Generator{
		migrationsDir: migrationsDir,
		planner:       planner,
	}
}

// Generate writes the up/down scripts for a diff and returns their paths.
func (g *Generator) Generate(name string, diff *SchemaDiff) (*MigrationFile, error) {
	if err := os.MkdirAll(g.migrationsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	version := GenerateVersion()
	upSQL, downSQL := g.planner.GenerateMigration(diff)

	header := fmt.Sprintf("-- Migration: %s\n-- Dialect: %s\n\n", name, g.planner.Dialect())

	migrationFile := &MigrationFile{
		Version:  version,
		Name:     name,
		UpPath:   filepath.Join(g.migrationsDir, GenerateFileName(version, name, "up")),
		DownPath: filepath.Join(g.migrationsDir, GenerateFileName(version, name, "down")),
	}

	if err := g.writeFile(migrationFile.UpPath, header+upSQL); err != nil {
		return nil, fmt.Errorf("failed to write up migration: %w", err)
	}

	if err := g.writeFile(migrationFile.DownPath, header+downSQL); err != nil {
		return nil, fmt.Errorf("failed to write down migration: %w", err)
	}

	return migrationFile, nil
}

// ReadMigration reads the SQL content from a migration file.
func (g *Generator) ReadMigration(file MigrationFile) (*Migration, error) {
	upSQL, err := g.readFile(file.UpPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read up migration: %w", err)
	}

	downSQL, err := g.readFile(file.DownPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read down migration: %w", err)
	}

	return &Migration{
		Version: file.Version,
		Name:    file.Name,
		UpSQL:   upSQL,
		DownSQL: downSQL,
	}, nil
}

func (g *Generator) writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func (g *Generator) readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
