package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
)

const insertCustomer = `
INSERT INTO customers (first_name, last_name, email, phone, city, registration_date)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (email) DO NOTHING
`

type InsertCustomerParams struct {
	FirstName        pgtype.Text
	LastName         pgtype.Text
	Email            string
	Phone            pgtype.Text
	City             pgtype.Text
	RegistrationDate pgtype.Date
}

// InsertCustomer inserts a customer unless the email is already present.
// It returns the number of rows inserted (0 or 1).
func (q *Queries) InsertCustomer(ctx context.Context, arg InsertCustomerParams) (int64, error) {
	tag, err := q.db.Exec(ctx, insertCustomer,
		arg.FirstName,
		arg.LastName,
		arg.Email,
		arg.Phone,
		arg.City,
		arg.RegistrationDate,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const insertProduct = `
INSERT INTO products (product_name, category, price, stock_quantity)
VALUES ($1, $2, $3, $4)
ON CONFLICT (product_name) DO NOTHING
`

type InsertProductParams struct {
	ProductName   pgtype.Text
	Category      pgtype.Text
	Price         pgtype.Numeric
	StockQuantity int64
}

// InsertProduct inserts a product unless the name is already present.
func (q *Queries) InsertProduct(ctx context.Context, arg InsertProductParams) (int64, error) {
	tag, err := q.db.Exec(ctx, insertProduct,
		arg.ProductName,
		arg.Category,
		arg.Price,
		arg.StockQuantity,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const insertOrder = `
INSERT INTO orders (customer_id, order_date, total_amount, status)
VALUES ($1, $2, $3, $4)
RETURNING id
`

type InsertOrderParams struct {
	CustomerID  int64
	OrderDate   pgtype.Date
	TotalAmount pgtype.Numeric
	Status      pgtype.Text
}

func (q *Queries) InsertOrder(ctx context.Context, arg InsertOrderParams) (int64, error) {
	row := q.db.QueryRow(ctx, insertOrder,
		arg.CustomerID,
		arg.OrderDate,
		arg.TotalAmount,
		arg.Status,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const insertOrderItem = `
INSERT INTO order_items (order_id, product_id, quantity, unit_price, subtotal)
VALUES ($1, $2, $3, $4, $5)
RETURNING id
`

type InsertOrderItemParams struct {
	OrderID   int64
	ProductID int64
	Quantity  int64
	UnitPrice pgtype.Numeric
	Subtotal  pgtype.Numeric
}

func (q *Queries) InsertOrderItem(ctx context.Context, arg InsertOrderItemParams) (int64, error) {
	row := q.db.QueryRow(ctx, insertOrderItem,
		arg.OrderID,
		arg.ProductID,
		arg.Quantity,
		arg.UnitPrice,
		arg.Subtotal,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

// Tables lists the loaded tables, children first.
var Tables = []string{"order_items", "orders", "products", "customers"}

const resetAll = `TRUNCATE order_items, orders, products, customers RESTART IDENTITY`

// ResetAll empties every loaded table and restarts the id sequences.
func (q *Queries) ResetAll(ctx context.Context) error {
	_, err := q.db.Exec(ctx, resetAll)
	return err
}

// CountRows returns the row count of one of Tables.
func (q *Queries) CountRows(ctx context.Context, table string) (int64, error) {
	if !isKnownTable(table) {
		return 0, fmt.Errorf("unknown table %q", table)
	}
	var n int64
	err := q.db.QueryRow(ctx, "SELECT count(*) FROM "+table).Scan(&n)
	return n, err
}

func isKnownTable(table string) bool {
	for _, t := range Tables {
		if t == table {
			return true
		}
	}
	return false
}
