package migration

import (
	"fmt"
	"slices"
	"strings"

	"github.com/marshallshelly/pebble-retail/pkg/schema"
)

// quoteIdent quotes an identifier (table name, column name, etc.)
// to handle reserved keywords and special characters.
func quoteIdent(name string) string {
	return fmt.Sprintf(`"%s"`, name)
}

// PlannerOptions configures statement generation behavior.
type PlannerOptions struct {
	// IfNotExists adds IF NOT EXISTS to CREATE TABLE statements.
	// Default: true
	IfNotExists bool
}

// Planner generates DDL statements for one dialect.
type Planner struct {
	dialect schema.Dialect
	options PlannerOptions
}

// NewPlanner creates a new planner with default options.
func NewPlanner(dialect schema.Dialect) *Planner {
	return &Planner{
		dialect: dialect,
		options: PlannerOptions{IfNotExists: true},
	}
}

// NewPlannerWithOptions creates a new planner with custom options.
func NewPlannerWithOptions(dialect schema.Dialect, opts PlannerOptions) *Planner {
	return &Planner{dialect: dialect, options: opts}
}

// Dialect returns the dialect statements are rendered for.
func (p *Planner) Dialect() schema.Dialect {
	return p.dialect
}

// CreateStatements returns one CREATE TABLE statement per table, in the
// given order. Callers pass tables in dependency order.
func (p *Planner) CreateStatements(tables []*schema.TableMetadata) []string {
	statements := make([]string, 0, len(tables))
	for _, t := range tables {
		statements = append(statements, p.CreateTable(t))
	}
	return statements
}

// DropStatements returns DROP TABLE statements in reverse order so that
// children are dropped before their parents.
func (p *Planner) DropStatements(tables []*schema.TableMetadata) []string {
	statements := make([]string, 0, len(tables))
	for _, t := range slices.Backward(tables) {
		statements = append(statements, p.DropTable(t.Name))
	}
	return statements
}

// GenerateMigration generates up and down SQL for the tables a diff adds.
func (p *Planner) GenerateMigration(diff *SchemaDiff) (upSQL, downSQL string) {
	up := p.CreateStatements(diff.TablesAdded)
	down := p.DropStatements(diff.TablesAdded)

	return strings.Join(up, "\n\n") + "\n", strings.Join(down, "\n") + "\n"
}

// CreateTable generates a CREATE TABLE statement.
func (p *Planner) CreateTable(table *schema.TableMetadata) string {
	var parts []string

	// Single-column primary keys are declared inline
	var singlePKColumn string
	if table.PrimaryKey != nil && len(table.PrimaryKey.Columns) == 1 {
		singlePKColumn = table.PrimaryKey.Columns[0]
	}

	for _, col := range table.Columns {
		parts = append(parts, "    "+p.columnDefinition(col, col.Name == singlePKColumn))
	}

	// Composite primary key
	if table.PrimaryKey != nil && len(table.PrimaryKey.Columns) > 1 {
		pkCols := strings.Join(table.PrimaryKey.Columns, ", ")
		parts = append(parts, fmt.Sprintf("    CONSTRAINT %s PRIMARY KEY (%s)", table.PrimaryKey.Name, pkCols))
	}

	for _, fk := range table.ForeignKeys {
		parts = append(parts, "    "+p.foreignKeyDefinition(fk))
	}

	createClause := "CREATE TABLE"
	if p.options.IfNotExists {
		createClause = "CREATE TABLE IF NOT EXISTS"
	}
	return fmt.Sprintf("%s %s (\n%s\n);", createClause, table.Name, strings.Join(parts, ",\n"))
}

// columnDefinition generates a column definition.
func (p *Planner) columnDefinition(col schema.ColumnMetadata, inlinePK bool) string {
	parts := []string{col.Name, p.dialect.ColumnType(col)}

	if inlinePK {
		switch {
		case col.Identity && p.dialect == schema.PostgreSQL:
			// BY DEFAULT keeps explicit ids insertable
			parts = append(parts, "GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY")
		case col.Identity:
			parts = append(parts, "PRIMARY KEY AUTOINCREMENT")
		default:
			parts = append(parts, "PRIMARY KEY")
		}
		return strings.Join(parts, " ")
	}

	if !col.Nullable {
		parts = append(parts, "NOT NULL")
	}

	if col.Default != nil {
		parts = append(parts, "DEFAULT", *col.Default)
	}

	return strings.Join(parts, " ")
}

// foreignKeyDefinition generates a foreign key constraint.
func (p *Planner) foreignKeyDefinition(fk schema.ForeignKeyMetadata) string {
	localCols := strings.Join(fk.Columns, ", ")
	refCols := strings.Join(fk.ReferencedColumns, ", ")

	parts := []string{
		fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s)", fk.Name, localCols),
		fmt.Sprintf("REFERENCES %s (%s)", fk.ReferencedTable, refCols),
	}

	if fk.OnDelete != schema.NoAction && fk.OnDelete != "" {
		parts = append(parts, "ON DELETE "+string(fk.OnDelete))
	}

	if fk.OnUpdate != schema.NoAction && fk.OnUpdate != "" {
		parts = append(parts, "ON UPDATE "+string(fk.OnUpdate))
	}

	return strings.Join(parts, " ")
}

// DropTable generates a DROP TABLE statement.
func (p *Planner) DropTable(tableName string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s;", quoteIdent(tableName))
}
