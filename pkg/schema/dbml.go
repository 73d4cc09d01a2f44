package schema

import (
	"fmt"
	"strings"
)

// dbmlType returns the diagram type for a column kind.
func dbmlType(col ColumnMetadata) string {
	switch col.Kind {
	case KindText:
		return "varchar"
	case KindDecimal:
		return fmt.Sprintf("decimal(%d,%d)", col.Precision, col.Scale)
	default:
		return string(col.Kind)
	}
}

func dbmlAttributes(t *TableMetadata, col ColumnMetadata) []string {
	var attrs []string
	if t.IsPrimaryKey(col.Name) {
		attrs = append(attrs, "pk")
	}
	if col.Identity {
		attrs = append(attrs, "increment")
	}
	if !col.Nullable && !t.IsPrimaryKey(col.Name) {
		attrs = append(attrs, "not null")
	}
	if col.Default != nil {
		attrs = append(attrs, "default: `"+*col.Default+"`")
	}
	return attrs
}

// RenderDBML renders tables as a DBML diagram: one Table block per table in
// the given order, followed by one Ref line per foreign key column of the
// form `Ref: Child.(field) < Parent.(field)`.
func RenderDBML(tables []*TableMetadata) string {
	entities := make(map[string]string, len(tables))
	for _, t := range tables {
		entities[t.Name] = t.Entity
	}
	entityOf := func(table string) string {
		if e, ok := entities[table]; ok && e != "" {
			return e
		}
		return table
	}

	var b strings.Builder
	for i, t := range tables {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Table %s {\n", entityOf(t.Name))
		for _, col := range t.Columns {
			fmt.Fprintf(&b, "  %s %s", col.Name, dbmlType(col))
			if attrs := dbmlAttributes(t, col); len(attrs) > 0 {
				fmt.Fprintf(&b, " [%s]", strings.Join(attrs, ", "))
			}
			b.WriteString("\n")
		}
		if t.Note != "" {
			fmt.Fprintf(&b, "\n  Note: '%s'\n", strings.ReplaceAll(t.Note, "'", `\'`))
		}
		b.WriteString("}\n")
	}

	first := true
	for _, t := range tables {
		for _, fk := range t.ForeignKeys {
			for i, col := range fk.Columns {
				if first {
					b.WriteString("\n")
					first = false
				}
				fmt.Fprintf(&b, "Ref: %s.(%s) < %s.(%s)\n",
					entityOf(t.Name), col, entityOf(fk.ReferencedTable), fk.ReferencedColumns[i])
			}
		}
	}

	return b.String()
}
