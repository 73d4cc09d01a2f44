package builder

import (
	"github.com/marshallshelly/pebble-retail/pkg/registry"
	"github.com/marshallshelly/pebble-retail/pkg/runtime"
	"github.com/marshallshelly/pebble-retail/pkg/schema"
)

// DB binds a runtime connection (a handle or an open transaction) to the
// registry that describes its tables.
type DB struct {
	conn     runtime.Conn
	registry *registry.Registry
}

// New creates a query builder over conn using the global registry.
func New(conn runtime.Conn) *DB {
	return &DB{conn: conn, registry: registry.Default()}
}

// NewWithRegistry creates a query builder that resolves models through reg.
func NewWithRegistry(conn runtime.Conn, reg *registry.Registry) *DB {
	if reg == nil {
		reg = registry.Default()
	}
	return &DB{conn: conn, registry: reg}
}

// Conn returns the underlying runtime connection.
func (d *DB) Conn() runtime.Conn {
	return d.conn
}

// Dialect returns the dialect statements are rendered for.
func (d *DB) Dialect() schema.Dialect {
	if d.conn == nil {
		return schema.SQLite
	}
	return d.conn.Dialect()
}

// Select creates a new type-safe SELECT query.
// Usage: builder.Select[models.Customer](db).Where(...).All(ctx)
func Select[T any](d *DB) *SelectQuery[T] {
	var model T

	table, err := d.registry.GetOrRegister(model)
	return &SelectQuery[T]{
		db:      d,
		table:   table,
		err:     err,
		columns: []string{"*"},
	}
}

// Insert creates a new type-safe INSERT query.
// Usage: builder.Insert[models.Customer](db).Values(c).Exec(ctx)
func Insert[T any](d *DB) *InsertQuery[T] {
	var model T

	table, err := d.registry.GetOrRegister(model)
	return &InsertQuery[T]{
		db:    d,
		table: table,
		err:   err,
	}
}
