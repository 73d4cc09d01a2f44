package schema

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the semantic type of a column, independent of any SQL dialect.
type Kind string

const (
	KindUnknown   Kind = ""
	KindInteger   Kind = "integer"
	KindText      Kind = "text"
	KindDecimal   Kind = "decimal"
	KindTimestamp Kind = "timestamp"
)

// Default precision and scale for decimal columns declared without one.
const (
	DefaultPrecision = 10
	DefaultScale     = 2
)

var (
	timeType    = reflect.TypeOf(time.Time{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
)

// KindOf infers the semantic kind of a Go type.
// Returns KindUnknown if the type has no natural mapping.
func KindOf(t reflect.Type) Kind {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t {
	case timeType:
		return KindTimestamp
	case decimalType:
		return KindDecimal
	}

	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return KindInteger
	case reflect.String:
		return KindText
	}

	return KindUnknown
}

// IsNullable checks if a Go type is nullable.
func IsNullable(t reflect.Type) bool {
	return t.Kind() == reflect.Ptr
}

// Dialect identifies the SQL flavour a statement is rendered for.
type Dialect string

const (
	SQLite     Dialect = "sqlite"
	PostgreSQL Dialect = "postgres"
)

// ParseDialect converts a driver name into a Dialect.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sqlite", "sqlite3", "":
		return SQLite, nil
	case "postgres", "postgresql", "pgx":
		return PostgreSQL, nil
	}
	return "", fmt.Errorf("unsupported dialect %q", name)
}

// Placeholder returns the bind parameter for the n-th (1-based) argument.
func (d Dialect) Placeholder(n int) string {
	if d == PostgreSQL {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// QuoteIdent quotes an identifier. Both dialects accept double quotes.
func (d Dialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// ColumnType returns the physical SQL type for a column.
func (d Dialect) ColumnType(col ColumnMetadata) string {
	switch col.Kind {
	case KindInteger:
		if d == PostgreSQL {
			return "integer"
		}
		return "INTEGER"
	case KindText:
		if d == PostgreSQL {
			return "text"
		}
		return "TEXT"
	case KindDecimal:
		precision, scale := col.Precision, col.Scale
		if precision == 0 {
			precision, scale = DefaultPrecision, DefaultScale
		}
		if d == PostgreSQL {
			return fmt.Sprintf("numeric(%d,%d)", precision, scale)
		}
		return fmt.Sprintf("DECIMAL(%d,%d)", precision, scale)
	case KindTimestamp:
		if d == PostgreSQL {
			return "timestamp"
		}
		return "TIMESTAMP"
	}
	return ""
}

// KindOfSQLType maps a physical type reported by the database back to a
// semantic kind. SQLite and PostgreSQL spellings are both recognised.
func KindOfSQLType(sqlType string) Kind {
	t := strings.ToLower(strings.TrimSpace(sqlType))
	if idx := strings.Index(t, "("); idx != -1 {
		t = strings.TrimSpace(t[:idx])
	}

	switch t {
	case "integer", "int", "int4", "int8", "bigint", "smallint", "int2":
		return KindInteger
	case "text", "varchar", "character varying", "char", "character", "clob":
		return KindText
	case "decimal", "numeric":
		return KindDecimal
	case "timestamp", "datetime", "timestamp without time zone", "timestamp with time zone", "timestamptz":
		return KindTimestamp
	}
	return KindUnknown
}
