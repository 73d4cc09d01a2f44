package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marshallshelly/pebble-retail/pkg/models"
	"github.com/marshallshelly/pebble-retail/pkg/schema"
)

// clone returns a deep enough copy of a table for mutation in tests.
func clone(t *schema.TableMetadata) *schema.TableMetadata {
	c := *t
	c.Columns = append([]schema.ColumnMetadata(nil), t.Columns...)
	c.ForeignKeys = append([]schema.ForeignKeyMetadata(nil), t.ForeignKeys...)
	if t.PrimaryKey != nil {
		pk := *t.PrimaryKey
		c.PrimaryKey = &pk
	}
	return &c
}

func TestDiffer_Compare(t *testing.T) {
	customers := mustTable(t, models.Customer{})
	addresses := mustTable(t, models.Address{})
	declared := []*schema.TableMetadata{customers, addresses}

	t.Run("empty database", func(t *testing.T) {
		diff := NewDiffer().Compare(declared, map[string]*schema.TableMetadata{})
		assert.True(t, diff.HasChanges())
		assert.False(t, diff.HasConflicts())
		require.Len(t, diff.TablesAdded, 2)
		assert.Equal(t, "customers", diff.TablesAdded[0].Name)
	})

	t.Run("identical schema", func(t *testing.T) {
		diff := NewDiffer().Compare(declared, map[string]*schema.TableMetadata{
			"customers": clone(customers),
			"addresses": clone(addresses),
		})
		assert.False(t, diff.HasChanges())
		assert.False(t, diff.HasConflicts())
		assert.Equal(t, []string{"customers", "addresses"}, diff.TablesMatching)
	})

	t.Run("unrelated tables are ignored", func(t *testing.T) {
		other := &schema.TableMetadata{Name: "audit_log"}
		diff := NewDiffer().Compare(declared, map[string]*schema.TableMetadata{
			"customers": clone(customers),
			"audit_log": other,
		})
		assert.False(t, diff.HasConflicts())
		require.Len(t, diff.TablesAdded, 1)
		assert.Equal(t, "addresses", diff.TablesAdded[0].Name)
	})
}

func TestDiffer_Conflicts(t *testing.T) {
	addresses := mustTable(t, models.Address{})

	tests := []struct {
		name   string
		mutate func(*schema.TableMetadata)
		column string
	}{
		{
			name: "missing column",
			mutate: func(tbl *schema.TableMetadata) {
				tbl.Columns = tbl.Columns[:len(tbl.Columns)-1]
			},
			column: "postal_code",
		},
		{
			name: "kind changed",
			mutate: func(tbl *schema.TableMetadata) {
				tbl.Columns[4].Kind = schema.KindInteger
			},
			column: "city",
		},
		{
			name: "nullability changed",
			mutate: func(tbl *schema.TableMetadata) {
				tbl.Columns[4].Nullable = true
			},
			column: "city",
		},
		{
			name: "undeclared required column",
			mutate: func(tbl *schema.TableMetadata) {
				tbl.Columns = append(tbl.Columns, schema.ColumnMetadata{Name: "country", Kind: schema.KindText})
			},
			column: "country",
		},
		{
			name: "foreign key missing",
			mutate: func(tbl *schema.TableMetadata) {
				tbl.ForeignKeys = nil
			},
			column: "customer_id",
		},
		{
			name: "primary key changed",
			mutate: func(tbl *schema.TableMetadata) {
				tbl.PrimaryKey = nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := clone(addresses)
			tt.mutate(existing)

			diff := NewDiffer().Compare([]*schema.TableMetadata{addresses},
				map[string]*schema.TableMetadata{"addresses": existing})

			require.True(t, diff.HasConflicts(), "expected a conflict")
			assert.Empty(t, diff.TablesMatching)
			assert.Equal(t, []string{"addresses"}, diff.ConflictTables())
			assert.Equal(t, tt.column, diff.Conflicts[0].Column)
			assert.NotEmpty(t, diff.Summary())
		})
	}
}

func TestDiffer_ExtraNullableColumnIsCompatible(t *testing.T) {
	customers := mustTable(t, models.Customer{})
	existing := clone(customers)
	existing.Columns = append(existing.Columns, schema.ColumnMetadata{
		Name: "loyalty_tier", Kind: schema.KindText, Nullable: true,
	})

	diff := NewDiffer().Compare([]*schema.TableMetadata{customers},
		map[string]*schema.TableMetadata{"customers": existing})
	assert.False(t, diff.HasConflicts())
}

func TestSameReference_ImplicitTarget(t *testing.T) {
	code := schema.ForeignKeyMetadata{Columns: []string{"order_id"}, ReferencedTable: "orders", ReferencedColumns: []string{"id"}}
	db := schema.ForeignKeyMetadata{Columns: []string{"order_id"}, ReferencedTable: "orders", ReferencedColumns: []string{""}}
	assert.True(t, sameReference(code, db))

	db.ReferencedTable = "customers"
	assert.False(t, sameReference(code, db))
}
