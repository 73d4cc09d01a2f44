package bootstrap

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/marshallshelly/pebble-retail/pkg/models"
)

func ptr[T any](v T) *T { return &v }

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// SampleData returns two rows for every table. Foreign keys assume the
// identity columns of an empty database start at 1. Batches are listed in
// the order a person would describe the data, not in dependency order;
// SeedSampleData sorts them.
func SampleData() []Batch {
	return []Batch{
		Rows(
			models.Customer{Name: "John Doe", Email: ptr("john.doe@example.com"), PhoneNumber: ptr("123456789")},
			models.Customer{Name: "Jane Smith", Email: ptr("jane.smith@example.com"), PhoneNumber: ptr("987654321")},
		),
		Rows(
			models.Product{Name: "Widget", Description: ptr("A useful widget"), Price: ptr(money("19.99"))},
			models.Product{Name: "Gadget", Description: ptr("An awesome gadget"), Price: ptr(money("29.99"))},
		),
		Rows(
			models.Order{CustomerID: 1, OrderDate: date(2023, time.January, 1)},
			models.Order{CustomerID: 2, OrderDate: date(2023, time.February, 1)},
		),
		Rows(
			models.OrderDetail{OrderID: 1, ProductID: 1, Quantity: 5},
			models.OrderDetail{OrderID: 2, ProductID: 2, Quantity: 3},
		),
		Rows(
			models.Address{CustomerID: 1, AddressLine1: "123 Elm St", City: "Somewhere", PostalCode: ptr("12345")},
			models.Address{CustomerID: 2, AddressLine1: "456 Maple Ave", City: "Anywhere", PostalCode: ptr("67890")},
		),
		Rows(
			models.Supplier{Name: "ABC Supplies", ContactName: ptr("Alice")},
			models.Supplier{Name: "XYZ Wholesale", ContactName: ptr("Bob")},
		),
		Rows(
			models.Inventory{ProductID: 1, SupplierID: 1, Quantity: 100},
			models.Inventory{ProductID: 2, SupplierID: 2, Quantity: 200},
		),
		Rows(
			models.Payment{CustomerID: 1, Amount: money("99.95"), PaymentDate: date(2023, time.January, 15)},
			models.Payment{CustomerID: 2, Amount: money("89.97"), PaymentDate: date(2023, time.February, 16)},
		),
		Rows(
			models.Category{Name: "Technology"},
			models.Category{Name: "Household"},
		),
		Rows(
			models.ProductCategory{ProductID: 1, CategoryID: 1},
			models.ProductCategory{ProductID: 2, CategoryID: 2},
		),
		Rows(
			models.Employee{Name: "Manager Mike", HireDate: date(2022, time.January, 1)},
			models.Employee{Name: "Worker Wanda", HireDate: date(2022, time.February, 1)},
		),
		Rows(
			models.Shipment{OrderID: 1, ShipDate: ptr(date(2023, time.January, 10))},
			models.Shipment{OrderID: 2, ShipDate: ptr(date(2023, time.February, 10))},
		),
	}
}
