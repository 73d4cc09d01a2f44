package builder

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marshallshelly/pebble-retail/pkg/models"
	"github.com/marshallshelly/pebble-retail/pkg/runtime"
	"github.com/marshallshelly/pebble-retail/pkg/schema"
)

func TestSelectQuery_ToSQL(t *testing.T) {
	pgDB := New(dialectConn{dialect: schema.PostgreSQL})
	sqliteDB := New(dialectConn{dialect: schema.SQLite})

	tests := []struct {
		name    string
		query   Query
		wantSQL string
		wantArg int
	}{
		{
			name:    "select all",
			query:   Select[models.Customer](pgDB),
			wantSQL: "SELECT * FROM customers",
		},
		{
			name:    "columns and where",
			query:   Select[models.Address](pgDB).Columns("city", "postal_code").Where(Eq("customer_id", 2)),
			wantSQL: "SELECT city, postal_code FROM addresses WHERE customer_id = $1",
			wantArg: 1,
		},
		{
			name:    "order limit offset",
			query:   Select[models.OrderDetail](sqliteDB).Where(Eq("order_id", 1)).OrderByAsc("id").Limit(10).Offset(5),
			wantSQL: "SELECT * FROM order_details WHERE order_id = ? ORDER BY id ASC LIMIT 10 OFFSET 5",
			wantArg: 1,
		},
		{
			name:    "or",
			query:   Select[models.Category](pgDB).Where(Eq("name", "Books")).Or(Eq("name", "Electronics")),
			wantSQL: "SELECT * FROM categories WHERE name = $1 OR name = $2",
			wantArg: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := tt.query.ToSQL()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Len(t, args, tt.wantArg)
		})
	}
}

func openSQLite(t *testing.T) *runtime.DB {
	t.Helper()
	ctx := context.Background()
	db, err := runtime.Open(ctx, &runtime.Config{
		Dialect: schema.SQLite,
		Path:    filepath.Join(t.TempDir(), "builder.sqlite"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	for _, stmt := range []string{
		`CREATE TABLE customers (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL, email TEXT, phone_number TEXT)`,
		`CREATE TABLE products (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL, description TEXT, price DECIMAL(10,2))`,
	} {
		_, err := db.Exec(ctx, stmt)
		require.NoError(t, err)
	}
	return db
}

func TestInsertAndSelect_SQLite(t *testing.T) {
	ctx := context.Background()
	db := New(openSQLite(t))

	ids, err := Insert[models.Customer](db).Values(
		models.Customer{Name: "John Doe", Email: strPtr("john@example.com")},
		models.Customer{Name: "Jane Smith", PhoneNumber: strPtr("987-654-3210")},
	).ExecIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)

	price := decimal.RequireFromString("99.99")
	_, err = Insert[models.Product](db).Values(models.Product{Name: "Laptop", Price: &price}).Exec(ctx)
	require.NoError(t, err)

	t.Run("first by id", func(t *testing.T) {
		c, err := Select[models.Customer](db).Where(Eq("id", ids[1])).First(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Jane Smith", c.Name)
		assert.Nil(t, c.Email)
		require.NotNil(t, c.PhoneNumber)
		assert.Equal(t, "987-654-3210", *c.PhoneNumber)
	})

	t.Run("decimal round trip", func(t *testing.T) {
		p, err := Select[models.Product](db).First(ctx)
		require.NoError(t, err)
		require.NotNil(t, p.Price)
		assert.True(t, price.Equal(*p.Price), "price = %s", p.Price)
		assert.Nil(t, p.Description)
	})

	t.Run("count", func(t *testing.T) {
		n, err := Select[models.Customer](db).Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := Select[models.Customer](db).Where(Eq("id", 99)).First(ctx)
		assert.ErrorIs(t, err, runtime.ErrNotFound)
	})

	t.Run("all ordered", func(t *testing.T) {
		all, err := Select[models.Customer](db).OrderByDesc("id").All(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "Jane Smith", all[0].Name)
	})

	t.Run("insert returning rows", func(t *testing.T) {
		rows, err := Insert[models.Customer](db).Values(models.Customer{Name: "Mike"}).ExecReturning(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, int64(3), rows[0].ID)
		assert.Equal(t, "Mike", rows[0].Name)
		assert.Nil(t, rows[0].Email)
	})
}
