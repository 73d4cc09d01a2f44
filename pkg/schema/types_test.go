package schema

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		value any
		want  Kind
	}{
		{int64(0), KindInteger},
		{int(0), KindInteger},
		{"", KindText},
		{new(string), KindText},
		{decimal.Decimal{}, KindDecimal},
		{new(decimal.Decimal), KindDecimal},
		{time.Time{}, KindTimestamp},
		{new(time.Time), KindTimestamp},
		{1.5, KindUnknown},
		{true, KindUnknown},
	}

	for _, tt := range tests {
		typ := reflect.TypeOf(tt.value)
		if got := KindOf(typ); got != tt.want {
			t.Errorf("KindOf(%s) = %q, want %q", typ, got, tt.want)
		}
	}
}

func TestDialect_ColumnType(t *testing.T) {
	tests := []struct {
		col      ColumnMetadata
		sqlite   string
		postgres string
	}{
		{ColumnMetadata{Kind: KindInteger}, "INTEGER", "integer"},
		{ColumnMetadata{Kind: KindText}, "TEXT", "text"},
		{ColumnMetadata{Kind: KindDecimal, Precision: 10, Scale: 2}, "DECIMAL(10,2)", "numeric(10,2)"},
		{ColumnMetadata{Kind: KindDecimal}, "DECIMAL(10,2)", "numeric(10,2)"},
		{ColumnMetadata{Kind: KindTimestamp}, "TIMESTAMP", "timestamp"},
	}

	for _, tt := range tests {
		t.Run(string(tt.col.Kind), func(t *testing.T) {
			if got := SQLite.ColumnType(tt.col); got != tt.sqlite {
				t.Errorf("sqlite: got %s, want %s", got, tt.sqlite)
			}
			if got := PostgreSQL.ColumnType(tt.col); got != tt.postgres {
				t.Errorf("postgres: got %s, want %s", got, tt.postgres)
			}
		})
	}
}

func TestKindOfSQLType(t *testing.T) {
	tests := map[string]Kind{
		"INTEGER":                     KindInteger,
		"bigint":                      KindInteger,
		"TEXT":                        KindText,
		"character varying":           KindText,
		"DECIMAL(10,2)":               KindDecimal,
		"numeric":                     KindDecimal,
		"TIMESTAMP":                   KindTimestamp,
		"timestamp without time zone": KindTimestamp,
		"DATETIME":                    KindTimestamp,
		"BLOB":                        KindUnknown,
	}
	for in, want := range tests {
		if got := KindOfSQLType(in); got != want {
			t.Errorf("KindOfSQLType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseDialect(t *testing.T) {
	for _, name := range []string{"sqlite", "SQLite3", ""} {
		if d, err := ParseDialect(name); err != nil || d != SQLite {
			t.Errorf("ParseDialect(%q) = %q, %v", name, d, err)
		}
	}
	for _, name := range []string{"postgres", "PostgreSQL", "pgx"} {
		if d, err := ParseDialect(name); err != nil || d != PostgreSQL {
			t.Errorf("ParseDialect(%q) = %q, %v", name, d, err)
		}
	}
	if _, err := ParseDialect("mysql"); err == nil {
		t.Error("expected error for mysql")
	}
}

func TestDialect_Placeholder(t *testing.T) {
	if got := SQLite.Placeholder(3); got != "?" {
		t.Errorf("sqlite placeholder = %s", got)
	}
	if got := PostgreSQL.Placeholder(3); got != "$3" {
		t.Errorf("postgres placeholder = %s", got)
	}
	if got := PostgreSQL.QuoteIdent(`odd"name`); got != `"odd""name"` {
		t.Errorf("QuoteIdent = %s", got)
	}
}
