package migration

import (
	"fmt"
	"slices"

	"github.com/marshallshelly/pebble-retail/pkg/schema"
)

// Differ compares declared tables with introspected ones.
type Differ struct{}

// NewDiffer creates a new schema differ.
func NewDiffer() *Differ {
	return &Differ{}
}

// Compare sorts every declared table into one of three buckets: missing
// from the database, present and compatible, or present and conflicting.
// Tables that exist only in the database are ignored.
//
// A present table is compatible when every declared column exists with the
// same kind and nullability, the primary key covers the same columns, every
// declared foreign key exists, and any extra column can be left out of an
// insert (nullable or defaulted). Defaults are not compared.
func (d *Differ) Compare(declared []*schema.TableMetadata, existing map[string]*schema.TableMetadata) *SchemaDiff {
	diff := &SchemaDiff{}

	for _, table := range declared {
		dbTable, ok := existing[table.Name]
		if !ok {
			diff.TablesAdded = append(diff.TablesAdded, table)
			continue
		}

		conflicts := d.compareTable(table, dbTable)
		if len(conflicts) > 0 {
			diff.Conflicts = append(diff.Conflicts, conflicts...)
			continue
		}
		diff.TablesMatching = append(diff.TablesMatching, table.Name)
	}

	return diff
}

// compareTable compares two versions of the same table.
func (d *Differ) compareTable(codeTable, dbTable *schema.TableMetadata) []Conflict {
	var conflicts []Conflict
	conflicts = append(conflicts, d.compareColumns(codeTable, dbTable)...)
	conflicts = append(conflicts, d.comparePrimaryKey(codeTable, dbTable)...)
	conflicts = append(conflicts, d.compareForeignKeys(codeTable, dbTable)...)
	return conflicts
}

// compareColumns compares columns between code and database.
func (d *Differ) compareColumns(codeTable, dbTable *schema.TableMetadata) []Conflict {
	var conflicts []Conflict
	add := func(column, format string, args ...any) {
		conflicts = append(conflicts, Conflict{
			Table:  codeTable.Name,
			Column: column,
			Reason: fmt.Sprintf(format, args...),
		})
	}

	for _, codeCol := range codeTable.Columns {
		dbCol := dbTable.GetColumnByName(codeCol.Name)
		if dbCol == nil {
			add(codeCol.Name, "column missing")
			continue
		}

		if dbCol.Kind != codeCol.Kind {
			add(codeCol.Name, "type %s, declared %s", kindLabel(dbCol.Kind), kindLabel(codeCol.Kind))
		} else if codeCol.Kind == schema.KindDecimal && dbCol.Precision != 0 &&
			(dbCol.Precision != codeCol.Precision || dbCol.Scale != codeCol.Scale) {
			add(codeCol.Name, "decimal(%d,%d), declared decimal(%d,%d)",
				dbCol.Precision, dbCol.Scale, codeCol.Precision, codeCol.Scale)
		}

		// Primary keys are reported by comparePrimaryKey
		if codeTable.IsPrimaryKey(codeCol.Name) {
			continue
		}
		if dbCol.Nullable != codeCol.Nullable {
			add(codeCol.Name, "nullable=%t, declared nullable=%t", dbCol.Nullable, codeCol.Nullable)
		}
	}

	for _, dbCol := range dbTable.Columns {
		if codeTable.GetColumnByName(dbCol.Name) != nil {
			continue
		}
		if !dbCol.Nullable && dbCol.Default == nil && !dbCol.Identity {
			add(dbCol.Name, "undeclared required column")
		}
	}

	return conflicts
}

// comparePrimaryKey compares primary keys.
func (d *Differ) comparePrimaryKey(codeTable, dbTable *schema.TableMetadata) []Conflict {
	var codeCols, dbCols []string
	if codeTable.PrimaryKey != nil {
		codeCols = codeTable.PrimaryKey.Columns
	}
	if dbTable.PrimaryKey != nil {
		dbCols = dbTable.PrimaryKey.Columns
	}

	if slices.Equal(codeCols, dbCols) {
		return nil
	}
	return []Conflict{{
		Table:  codeTable.Name,
		Reason: fmt.Sprintf("primary key %v, declared %v", dbCols, codeCols),
	}}
}

// compareForeignKeys reports declared foreign keys the database does not
// enforce. Constraint names are not compared.
func (d *Differ) compareForeignKeys(codeTable, dbTable *schema.TableMetadata) []Conflict {
	var conflicts []Conflict
	for _, codeFK := range codeTable.ForeignKeys {
		found := slices.ContainsFunc(dbTable.ForeignKeys, func(dbFK schema.ForeignKeyMetadata) bool {
			return sameReference(codeFK, dbFK)
		})
		if !found {
			conflicts = append(conflicts, Conflict{
				Table:  codeTable.Name,
				Column: codeFK.Columns[0],
				Reason: fmt.Sprintf("missing reference to %s(%s)", codeFK.ReferencedTable, codeFK.ReferencedColumns[0]),
			})
		}
	}
	return conflicts
}

func sameReference(code, db schema.ForeignKeyMetadata) bool {
	if code.ReferencedTable != db.ReferencedTable || !slices.Equal(code.Columns, db.Columns) {
		return false
	}
	if len(code.ReferencedColumns) != len(db.ReferencedColumns) {
		return false
	}
	for i, col := range code.ReferencedColumns {
		// SQLite leaves the target empty when it is the parent's primary key
		if db.ReferencedColumns[i] != "" && db.ReferencedColumns[i] != col {
			return false
		}
	}
	return true
}

func kindLabel(k schema.Kind) string {
	if k == schema.KindUnknown {
		return "unknown"
	}
	return string(k)
}
