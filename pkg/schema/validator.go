package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownReference is returned when a foreign key names a table or
	// column that is not part of the schema.
	ErrUnknownReference = errors.New("unknown reference")

	// ErrCycle is returned when foreign keys form a cycle between tables.
	ErrCycle = errors.New("foreign key cycle")
)

// Validate checks that every foreign key resolves to a declared table and
// column of the same kind, and that every default expression looks sane.
func Validate(tables []*TableMetadata) error {
	byName := make(map[string]*TableMetadata, len(tables))
	for _, t := range tables {
		if _, dup := byName[t.Name]; dup {
			return fmt.Errorf("table %s declared twice", t.Name)
		}
		byName[t.Name] = t
	}

	var problems []string
	for _, t := range tables {
		for _, col := range t.Columns {
			if col.Default != nil {
				if err := ValidateDefaultValue(*col.Default); err != nil {
					problems = append(problems, fmt.Sprintf("%s.%s: %v", t.Name, col.Name, err))
				}
			}
		}
		for _, fk := range t.ForeignKeys {
			parent, ok := byName[fk.ReferencedTable]
			if !ok {
				return fmt.Errorf("%w: %s.%s -> %s", ErrUnknownReference, t.Name, strings.Join(fk.Columns, ","), fk.ReferencedTable)
			}
			for i, refCol := range fk.ReferencedColumns {
				target := parent.GetColumnByName(refCol)
				if target == nil {
					return fmt.Errorf("%w: %s.%s -> %s.%s", ErrUnknownReference, t.Name, fk.Columns[i], parent.Name, refCol)
				}
				source := t.GetColumnByName(fk.Columns[i])
				if source != nil && source.Kind != target.Kind {
					problems = append(problems, fmt.Sprintf("%s.%s is %s but references %s.%s of kind %s",
						t.Name, source.Name, source.Kind, parent.Name, target.Name, target.Kind))
				}
			}
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid schema:\n  %s", strings.Join(problems, "\n  "))
	}
	return nil
}

// ValidateDefaultValue checks if a default value expression is likely valid SQL
// in both supported dialects.
func ValidateDefaultValue(defaultVal string) error {
	trimmed := strings.TrimSpace(defaultVal)
	if trimmed == "" {
		return fmt.Errorf("empty DEFAULT value")
	}

	commonMistakes := map[string]string{
		"CURRENT TIMESTAMP": "CURRENT_TIMESTAMP",
		"CURRENT TIME":      "CURRENT_TIME",
		"CURRENT DATE":      "CURRENT_DATE",
	}
	upperVal := strings.ToUpper(trimmed)
	for mistake, correct := range commonMistakes {
		if strings.Contains(upperVal, mistake) {
			return fmt.Errorf("invalid DEFAULT value: '%s' contains '%s' which should be '%s'", defaultVal, mistake, correct)
		}
	}

	// NOW() is PostgreSQL only; SQLite rejects it.
	if strings.Contains(upperVal, "NOW()") {
		return fmt.Errorf("invalid DEFAULT value: '%s' is not portable, use CURRENT_TIMESTAMP", defaultVal)
	}

	return nil
}
