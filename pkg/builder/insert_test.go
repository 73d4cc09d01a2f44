package builder

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marshallshelly/pebble-retail/pkg/models"
	"github.com/marshallshelly/pebble-retail/pkg/schema"
)

// dialectConn renders SQL for a dialect without a live database.
type dialectConn struct {
	dialect schema.Dialect
}

func (c dialectConn) Dialect() schema.Dialect { return c.dialect }

func (dialectConn) Exec(context.Context, string, ...any) (int64, error) { return 0, nil }

func (dialectConn) Query(context.Context, string, ...any) (*sql.Rows, error) { return nil, nil }

func (dialectConn) QueryRow(context.Context, string, ...any) *sql.Row { return nil }

func strPtr(s string) *string { return &s }

func TestInsertQuery_ToSQL(t *testing.T) {
	sqliteDB := New(dialectConn{dialect: schema.SQLite})
	pgDB := New(dialectConn{dialect: schema.PostgreSQL})

	customer := models.Customer{
		Name:        "John Doe",
		Email:       strPtr("john@example.com"),
		PhoneNumber: strPtr("123-456-7890"),
	}

	tests := []struct {
		name       string
		query      Query
		wantSQL    string
		wantArgLen int
	}{
		{
			name:       "single row sqlite",
			query:      Insert[models.Customer](sqliteDB).Values(customer),
			wantSQL:    "INSERT INTO customers (name, email, phone_number) VALUES (?, ?, ?)",
			wantArgLen: 3,
		},
		{
			name:       "single row postgres",
			query:      Insert[models.Customer](pgDB).Values(customer),
			wantSQL:    "INSERT INTO customers (name, email, phone_number) VALUES ($1, $2, $3)",
			wantArgLen: 3,
		},
		{
			name:       "returning",
			query:      Insert[models.Customer](pgDB).Values(customer).Returning("id"),
			wantSQL:    "INSERT INTO customers (name, email, phone_number) VALUES ($1, $2, $3) RETURNING id",
			wantArgLen: 3,
		},
		{
			name: "multiple rows",
			query: Insert[models.Category](pgDB).Values(
				models.Category{Name: "Electronics"},
				models.Category{Name: "Books"},
			),
			wantSQL:    "INSERT INTO categories (name) VALUES ($1), ($2)",
			wantArgLen: 2,
		},
		{
			name: "explicit identity value is kept",
			query: Insert[models.Category](pgDB).Values(
				models.Category{ID: 7, Name: "Toys"},
			),
			wantSQL:    "INSERT INTO categories (id, name) VALUES ($1, $2)",
			wantArgLen: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := tt.query.ToSQL()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Len(t, args, tt.wantArgLen)
		})
	}
}

func TestInsertQuery_Errors(t *testing.T) {
	db := New(dialectConn{dialect: schema.SQLite})

	t.Run("no values", func(t *testing.T) {
		_, _, err := Insert[models.Customer](db).ToSQL()
		assert.Error(t, err)
	})

	t.Run("not a model", func(t *testing.T) {
		_, _, err := Insert[int](db).Values(1).ToSQL()
		assert.Error(t, err)
	})

	t.Run("rows with different column sets", func(t *testing.T) {
		_, _, err := Insert[models.Order](db).Values(
			models.Order{CustomerID: 1},
			models.Order{CustomerID: 2, OrderDate: time.Now()},
		).ToSQL()
		assert.Error(t, err)
	})
}

func TestSmartDefaultDetection(t *testing.T) {
	db := New(dialectConn{dialect: schema.SQLite})

	t.Run("zero timestamp with default is omitted", func(t *testing.T) {
		sql, args, err := Insert[models.Payment](db).Values(models.Payment{
			CustomerID: 1,
			Amount:     decimal.RequireFromString("99.99"),
		}).ToSQL()
		require.NoError(t, err)
		assert.Equal(t, "INSERT INTO payments (customer_id, amount) VALUES (?, ?)", sql)
		assert.Len(t, args, 2)
	})

	t.Run("explicit timestamp is sent", func(t *testing.T) {
		at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		sql, args, err := Insert[models.Payment](db).Values(models.Payment{
			CustomerID:  1,
			Amount:      decimal.RequireFromString("99.99"),
			PaymentDate: at,
		}).ToSQL()
		require.NoError(t, err)
		assert.Equal(t, "INSERT INTO payments (customer_id, amount, payment_date) VALUES (?, ?, ?)", sql)
		assert.Equal(t, at, args[2])
	})

	t.Run("nil nullable column is sent as null", func(t *testing.T) {
		sql, args, err := Insert[models.Shipment](db).Values(models.Shipment{OrderID: 1}).ToSQL()
		require.NoError(t, err)
		assert.Equal(t, "INSERT INTO shipments (order_id, ship_date) VALUES (?, ?)", sql)
		assert.Nil(t, args[1])
	})
}
