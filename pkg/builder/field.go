package builder

import (
	"github.com/marshallshelly/pebble-retail/pkg/registry"
)

// Col returns the database column name for a given Go field name, looked up
// in the global registry.
//
// Usage:
//
//	type Address struct {
//	    CustomerID int64 `po:"customer_id,notNull,fk(customers.id)"`
//	}
//
//	// Instead of hardcoded: Where(builder.Eq("customer_id", 2))
//	// Use: Where(builder.Eq(builder.Col[Address]("CustomerID"), 2))
func Col[T any](goFieldName string) string {
	var zero T

	table, err := registry.GetOrRegister(zero)
	if err != nil {
		// Not a model; return the field name as-is
		return goFieldName
	}

	column := table.GetColumnByField(goFieldName)
	if column == nil {
		return goFieldName
	}

	return column.Name
}
