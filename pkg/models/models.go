// Package models declares the retail schema: one plain struct per table,
// with references held as explicit foreign-key values.
package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/marshallshelly/pebble-retail/pkg/registry"
)

type Customer struct {
	ID          int64   `po:"id,primaryKey,identity"`
	Name        string  `po:"name,notNull"`
	Email       *string `po:"email"`
	PhoneNumber *string `po:"phone_number"`
}

func (Customer) TableName() string { return "customers" }
func (Customer) TableNote() string { return "Stores customer information." }

type Address struct {
	ID           int64   `po:"id,primaryKey,identity"`
	CustomerID   int64   `po:"customer_id,notNull,fk(customers.id)"`
	AddressLine1 string  `po:"address_line1,notNull"`
	AddressLine2 *string `po:"address_line2"`
	City         string  `po:"city,notNull"`
	PostalCode   *string `po:"postal_code"`
}

func (Address) TableName() string { return "addresses" }
func (Address) TableNote() string { return "Stores customer addresses." }

type Product struct {
	ID          int64            `po:"id,primaryKey,identity"`
	Name        string           `po:"name,notNull"`
	Description *string          `po:"description"`
	Price       *decimal.Decimal `po:"price,decimal(10,2)"`
}

func (Product) TableName() string { return "products" }
func (Product) TableNote() string { return "Contains information about products." }

type Category struct {
	ID   int64  `po:"id,primaryKey,identity"`
	Name string `po:"name,notNull"`
}

func (Category) TableName() string { return "categories" }
func (Category) TableNote() string { return "Categories for products." }

// ProductCategory links products to categories.
type ProductCategory struct {
	ID         int64 `po:"id,primaryKey,identity"`
	ProductID  int64 `po:"product_id,notNull,fk(products.id)"`
	CategoryID int64 `po:"category_id,notNull,fk(categories.id)"`
}

func (ProductCategory) TableName() string { return "product_categories" }
func (ProductCategory) TableNote() string { return "Links products to categories." }

type Supplier struct {
	ID          int64   `po:"id,primaryKey,identity"`
	Name        string  `po:"name,notNull"`
	ContactName *string `po:"contact_name"`
}

func (Supplier) TableName() string { return "suppliers" }
func (Supplier) TableNote() string { return "Details of suppliers." }

// Inventory is the stock of one product held by one supplier.
type Inventory struct {
	ID         int64 `po:"id,primaryKey,identity"`
	ProductID  int64 `po:"product_id,notNull,fk(products.id)"`
	SupplierID int64 `po:"supplier_id,notNull,fk(suppliers.id)"`
	Quantity   int64 `po:"quantity,notNull"`
}

func (Inventory) TableName() string { return "inventory" }
func (Inventory) TableNote() string { return "Stores product inventory information." }

type Order struct {
	ID         int64     `po:"id,primaryKey,identity"`
	CustomerID int64     `po:"customer_id,notNull,fk(customers.id)"`
	OrderDate  time.Time `po:"order_date,default(CURRENT_TIMESTAMP)"`
}

func (Order) TableName() string { return "orders" }
func (Order) TableNote() string { return "Represents customer orders." }

// OrderDetail is one product line of an order.
type OrderDetail struct {
	ID        int64 `po:"id,primaryKey,identity"`
	OrderID   int64 `po:"order_id,notNull,fk(orders.id)"`
	ProductID int64 `po:"product_id,notNull,fk(products.id)"`
	Quantity  int64 `po:"quantity,notNull"`
}

func (OrderDetail) TableName() string { return "order_details" }
func (OrderDetail) TableNote() string { return "Stores details of each order." }

type Payment struct {
	ID          int64           `po:"id,primaryKey,identity"`
	CustomerID  int64           `po:"customer_id,notNull,fk(customers.id)"`
	Amount      decimal.Decimal `po:"amount,decimal(10,2),notNull"`
	PaymentDate time.Time       `po:"payment_date,default(CURRENT_TIMESTAMP)"`
}

func (Payment) TableName() string { return "payments" }
func (Payment) TableNote() string { return "Records customer payments." }

type Shipment struct {
	ID       int64      `po:"id,primaryKey,identity"`
	OrderID  int64      `po:"order_id,notNull,fk(orders.id)"`
	ShipDate *time.Time `po:"ship_date"`
}

func (Shipment) TableName() string { return "shipments" }
func (Shipment) TableNote() string { return "Records shipments of orders." }

type Employee struct {
	ID       int64     `po:"id,primaryKey,identity"`
	Name     string    `po:"name,notNull"`
	HireDate time.Time `po:"hire_date,default(CURRENT_TIMESTAMP)"`
}

func (Employee) TableName() string { return "employees" }
func (Employee) TableNote() string { return "Employee details." }

// All returns a zero value of every model in declaration order.
func All() []any {
	return []any{
		Customer{},
		Address{},
		Product{},
		Category{},
		ProductCategory{},
		Supplier{},
		Inventory{},
		Order{},
		OrderDetail{},
		Payment{},
		Shipment{},
		Employee{},
	}
}

// NewRegistry returns a registry holding every model, checked for dangling
// references.
func NewRegistry() (*registry.Registry, error) {
	r := registry.NewRegistry()
	if err := r.RegisterAll(All()...); err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}
