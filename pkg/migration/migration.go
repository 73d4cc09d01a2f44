// Package migration plans, introspects and applies the DDL that brings a
// database in line with the declared table metadata.
package migration

import (
	"fmt"
	"strings"
	"time"

	"github.com/marshallshelly/pebble-retail/pkg/schema"
)

// Migration represents a pair of up/down scripts.
type Migration struct {
	Version string // Version/timestamp (e.g., "20240101120000")
	Name    string // Migration name (e.g., "init_retail")
	UpSQL   string // SQL for applying the migration
	DownSQL string // SQL for rolling back the migration
}

// MigrationFile represents a migration file on disk.
type MigrationFile struct {
	Version  string // Version/timestamp
	Name     string // Migration name
	UpPath   string // Path to .up.sql file
	DownPath string // Path to .down.sql file
}

// SchemaDiff represents differences between the declared schema and the
// database.
type SchemaDiff struct {
	TablesAdded    []*schema.TableMetadata // Declared tables absent from the database, in input order
	TablesMatching []string                // Declared tables present and compatible
	Conflicts      []Conflict              // Declared tables present but incompatible
}

// Conflict describes one incompatibility between a declared table and the
// table found in the database.
type Conflict struct {
	Table  string
	Column string // empty for table-level conflicts
	Reason string
}

func (c Conflict) String() string {
	if c.Column == "" {
		return fmt.Sprintf("%s: %s", c.Table, c.Reason)
	}
	return fmt.Sprintf("%s.%s: %s", c.Table, c.Column, c.Reason)
}

// HasChanges returns true if any declared table must be created.
func (d *SchemaDiff) HasChanges() bool {
	return len(d.TablesAdded) > 0
}

// HasConflicts returns true if any declared table is incompatible with the
// database.
func (d *SchemaDiff) HasConflicts() bool {
	return len(d.Conflicts) > 0
}

// ConflictTables returns the distinct names of conflicting tables in the
// order they were reported.
func (d *SchemaDiff) ConflictTables() []string {
	var names []string
	seen := make(map[string]bool)
	for _, c := range d.Conflicts {
		if !seen[c.Table] {
			seen[c.Table] = true
			names = append(names, c.Table)
		}
	}
	return names
}

// Summary joins every conflict into a single line.
func (d *SchemaDiff) Summary() string {
	parts := make([]string, len(d.Conflicts))
	for i, c := range d.Conflicts {
		parts[i] = c.String()
	}
	return strings.Join(parts, "; ")
}

// GenerateVersion generates a timestamp-based version string.
// Format: YYYYMMDDHHmmss (e.g., "20240101120000")
func GenerateVersion() string {
	return time.Now().Format("20060102150405")
}

// GenerateFileName generates a migration filename.
// Format: {version}_{name}.{up|down}.sql
func GenerateFileName(version, name, direction string) string {
	return version + "_" + name + "." + direction + ".sql"
}
