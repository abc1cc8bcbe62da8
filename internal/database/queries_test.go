package database

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// recordingDB captures the SQL it is asked to run. QueryRow scans id.
type recordingDB struct {
	sql []string
	id  int64
}

func (r *recordingDB) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	r.sql = append(r.sql, sql)
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (r *recordingDB) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	r.sql = append(r.sql, sql)
	return nil, nil
}

func (r *recordingDB) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	r.sql = append(r.sql, sql)
	return idRow{id: r.id}
}

type idRow struct{ id int64 }

func (r idRow) Scan(dest ...any) error {
	*dest[0].(*int64) = r.id
	return nil
}

// ============================================================================
// Query Tests
// ============================================================================

func TestInsertFacts_ReturnID(t *testing.T) {
	db := &recordingDB{id: 42}
	q := New(db)
	ctx := context.Background()

	orderID, err := q.InsertOrder(ctx, InsertOrderParams{CustomerID: 1})
	if err != nil || orderID != 42 {
		t.Fatalf("InsertOrder = %d, %v", orderID, err)
	}
	itemID, err := q.InsertOrderItem(ctx, InsertOrderItemParams{OrderID: orderID, ProductID: 1})
	if err != nil || itemID != 42 {
		t.Fatalf("InsertOrderItem = %d, %v", itemID, err)
	}

	for _, sql := range db.sql {
		if !strings.Contains(sql, "RETURNING id\n") {
			t.Errorf("statement should return the id primary key:\n%s", sql)
		}
	}
}

func TestInsertDimensions_RowsAffected(t *testing.T) {
	db := &recordingDB{}
	q := New(db)
	ctx := context.Background()

	n, err := q.InsertCustomer(ctx, InsertCustomerParams{Email: "a@example.com"})
	if err != nil || n != 1 {
		t.Errorf("InsertCustomer = %d, %v", n, err)
	}
	n, err = q.InsertProduct(ctx, InsertProductParams{ProductName: pgtype.Text{String: "Pen", Valid: true}})
	if err != nil || n != 1 {
		t.Errorf("InsertProduct = %d, %v", n, err)
	}

	if !strings.Contains(db.sql[0], "ON CONFLICT (email) DO NOTHING") {
		t.Errorf("customer insert is not insert-if-absent:\n%s", db.sql[0])
	}
	if !strings.Contains(db.sql[1], "ON CONFLICT (product_name) DO NOTHING") {
		t.Errorf("product insert is not insert-if-absent:\n%s", db.sql[1])
	}
}

func TestCountRows_UnknownTable(t *testing.T) {
	db := &recordingDB{}
	if _, err := New(db).CountRows(context.Background(), "users; DROP TABLE orders"); err == nil {
		t.Error("CountRows should reject tables outside Tables")
	}
	if len(db.sql) != 0 {
		t.Errorf("no SQL should run for an unknown table, ran %q", db.sql)
	}
}
