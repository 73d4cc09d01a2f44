package schema

import (
	"reflect"
	"slices"
)

// TableMetadata describes a table derived from a tagged Go struct.
type TableMetadata struct {
	Name        string // physical table name
	Entity      string // Go struct name, used in diagrams
	Note        string
	GoType      reflect.Type
	Columns     []ColumnMetadata
	PrimaryKey  *PrimaryKeyMetadata
	ForeignKeys []ForeignKeyMetadata
}

// ColumnMetadata describes a single column.
type ColumnMetadata struct {
	Name      string
	GoField   string
	GoType    reflect.Type
	Kind      Kind
	Precision int
	Scale     int
	Nullable  bool
	Default   *string
	Identity  bool
	Position  int
}

// PrimaryKeyMetadata describes the primary key of a table.
type PrimaryKeyMetadata struct {
	Name    string
	Columns []string
}

// ForeignKeyMetadata describes a many-to-one reference from one table to another.
type ForeignKeyMetadata struct {
	Name              string
	Columns           []string
	ReferencedTable   string
	ReferencedColumns []string
	OnDelete          ReferenceAction
	OnUpdate          ReferenceAction
}

// ReferenceAction is the referential action taken on delete or update.
type ReferenceAction string

const (
	NoAction   ReferenceAction = "NO ACTION"
	Restrict   ReferenceAction = "RESTRICT"
	Cascade    ReferenceAction = "CASCADE"
	SetNull    ReferenceAction = "SET NULL"
	SetDefault ReferenceAction = "SET DEFAULT"
)

// GetColumnByName returns the column with the given name, or nil.
func (t *TableMetadata) GetColumnByName(name string) *ColumnMetadata {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// GetColumnByField returns the column mapped to the given Go field, or nil.
func (t *TableMetadata) GetColumnByField(field string) *ColumnMetadata {
	for i := range t.Columns {
		if t.Columns[i].GoField == field {
			return &t.Columns[i]
		}
	}
	return nil
}

// IsPrimaryKey reports whether column is part of the primary key.
func (t *TableMetadata) IsPrimaryKey(column string) bool {
	if t.PrimaryKey == nil {
		return false
	}
	return slices.Contains(t.PrimaryKey.Columns, column)
}

// IdentityColumn returns the single-column primary key name, or "" for
// tables without one.
func (t *TableMetadata) IdentityColumn() string {
	if t.PrimaryKey == nil || len(t.PrimaryKey.Columns) != 1 {
		return ""
	}
	return t.PrimaryKey.Columns[0]
}

// ForeignKeyFor returns the foreign key declared on column, or nil.
func (t *TableMetadata) ForeignKeyFor(column string) *ForeignKeyMetadata {
	for i := range t.ForeignKeys {
		if slices.Contains(t.ForeignKeys[i].Columns, column) {
			return &t.ForeignKeys[i]
		}
	}
	return nil
}

// Parents returns the distinct tables this table references, in
// declaration order. Self references are excluded.
func (t *TableMetadata) Parents() []string {
	var parents []string
	for _, fk := range t.ForeignKeys {
		if fk.ReferencedTable == t.Name || slices.Contains(parents, fk.ReferencedTable) {
			continue
		}
		parents = append(parents, fk.ReferencedTable)
	}
	return parents
}
