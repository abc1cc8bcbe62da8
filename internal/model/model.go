// Package model defines the typed records that flow through the pipeline:
// raw rows as extracted, cleaned dimension and fact rows, and the order
// entities built at load time.
package model

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Entity names used as metric key prefixes.
const (
	EntityCustomers = "customers"
	EntityProducts  = "products"
	EntitySales     = "sales"
)

// RawCustomer is one row of the customers extract. Text cells are untrimmed.
type RawCustomer struct {
	Line             int
	FirstName        pgtype.Text
	LastName         pgtype.Text
	Email            pgtype.Text
	Phone            pgtype.Text
	City             pgtype.Text
	RegistrationDate pgtype.Text
}

// RawProduct is one row of the products extract.
type RawProduct struct {
	Line          int
	ProductName   pgtype.Text
	Category      pgtype.Text
	Price         decimal.NullDecimal
	StockQuantity pgtype.Int8
}

// RawSale is one row of the sales extract.
type RawSale struct {
	Line            int
	TransactionID   pgtype.Text
	CustomerID      pgtype.Int8
	ProductID       pgtype.Int8
	TransactionDate pgtype.Text
	Quantity        pgtype.Int8
	UnitPrice       decimal.NullDecimal
	Status          pgtype.Text
}

// CleanCustomer is a customer that survived cleaning.
// Email and RegistrationDate are always present.
type CleanCustomer struct {
	FirstName        pgtype.Text
	LastName         pgtype.Text
	Email            string
	Phone            pgtype.Text
	City             pgtype.Text
	RegistrationDate time.Time
}

// CleanProduct is a product that survived cleaning.
// Price and StockQuantity are always present (imputed when missing).
type CleanProduct struct {
	ProductName   pgtype.Text
	Category      pgtype.Text
	Price         decimal.Decimal
	StockQuantity int64
}

// CleanSalesLine is a sales transaction that survived cleaning.
// CustomerID, ProductID and OrderDate are always present; Subtotal is set by
// the derivation stage.
type CleanSalesLine struct {
	Line          int
	TransactionID pgtype.Text
	CustomerID    int64
	ProductID     int64
	OrderDate     time.Time
	Quantity      pgtype.Int8
	UnitPrice     decimal.NullDecimal
	Subtotal      decimal.Decimal
	Status        pgtype.Text
}

// Order is the fact row created for one sales line. ID is assigned by the store.
type Order struct {
	ID          int64
	CustomerID  int64
	OrderDate   time.Time
	TotalAmount decimal.Decimal
	Status      pgtype.Text
}

// OrderItem is the single line item of an Order. OrderID is only known once
// the parent order has been persisted.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int64
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// NewOrder builds the order for a derived sales line.
func NewOrder(line CleanSalesLine) Order {
	return Order{
		CustomerID:  line.CustomerID,
		OrderDate:   line.OrderDate,
		TotalAmount: line.Subtotal,
		Status:      line.Status,
	}
}

// NewOrderItem builds the item for a derived sales line under orderID.
func NewOrderItem(orderID int64, line CleanSalesLine) OrderItem {
	return OrderItem{
		OrderID:   orderID,
		ProductID: line.ProductID,
		Quantity:  line.Quantity.Int64,
		UnitPrice: line.UnitPrice.Decimal,
		Subtotal:  line.Subtotal,
	}
}

// Batch is the cleaned, derived output handed to the loader.
type Batch struct {
	Customers []CleanCustomer
	Products  []CleanProduct
	Sales     []CleanSalesLine
}
