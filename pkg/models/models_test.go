package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)
	assert.Len(t, reg.All(), 12)

	levels, err := reg.Levels()
	require.NoError(t, err)

	got := make([][]string, len(levels))
	for i, level := range levels {
		for _, table := range level {
			got[i] = append(got[i], table.Name)
		}
	}

	assert.Equal(t, [][]string{
		{"customers", "products", "categories", "suppliers", "employees"},
		{"addresses", "product_categories", "inventory", "orders", "payments"},
		{"order_details", "shipments"},
	}, got)
}

func TestModels_References(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	refs := make(map[string][]string)
	for _, table := range reg.All() {
		for _, fk := range table.ForeignKeys {
			refs[table.Name] = append(refs[table.Name], fk.Columns[0]+"->"+fk.ReferencedTable)
		}
	}

	assert.Equal(t, map[string][]string{
		"addresses":          {"customer_id->customers"},
		"product_categories": {"product_id->products", "category_id->categories"},
		"inventory":          {"product_id->products", "supplier_id->suppliers"},
		"orders":             {"customer_id->customers"},
		"order_details":      {"order_id->orders", "product_id->products"},
		"payments":           {"customer_id->customers"},
		"shipments":          {"order_id->orders"},
	}, refs)
}

func TestModels_Columns(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	payments, err := reg.GetByName("payments")
	require.NoError(t, err)

	amount := payments.GetColumnByName("amount")
	require.NotNil(t, amount)
	assert.False(t, amount.Nullable)
	assert.Equal(t, 10, amount.Precision)
	assert.Equal(t, 2, amount.Scale)

	date := payments.GetColumnByName("payment_date")
	require.NotNil(t, date)
	require.NotNil(t, date.Default)
	assert.Equal(t, "CURRENT_TIMESTAMP", *date.Default)

	for _, table := range reg.All() {
		assert.Equal(t, "id", table.IdentityColumn(), table.Name)
		assert.NotEmpty(t, table.Note, table.Name)
	}
}
