// Package store defines the persistence boundary of the loader.
//
// A Store hands out transactions; the loader opens one per load phase and
// either commits it once or rolls it back. Implementations live in the
// postgres and memory subpackages and enforce the same constraints as
// schema.sql: unique customer email, unique product name, and foreign keys
// from orders to customers and from order items to orders and products.
package store

import (
	"context"
	_ "embed"

	"github.com/JonMunkholm/fleximart/internal/model"
)

// Store is an open connection to the target schema.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
	Close()
}

// Tx is one load-phase transaction. Rollback after Commit is a no-op, so
// callers can always defer it.
type Tx interface {
	// InsertCustomer inserts c unless its email is present; inserted reports
	// whether a row was added.
	InsertCustomer(ctx context.Context, c model.CleanCustomer) (inserted bool, err error)
	// InsertProduct inserts p unless its name is present.
	InsertProduct(ctx context.Context, p model.CleanProduct) (inserted bool, err error)
	// InsertOrder persists o and returns its assigned id.
	InsertOrder(ctx context.Context, o model.Order) (int64, error)
	// InsertOrderItem persists it and returns its assigned id.
	InsertOrderItem(ctx context.Context, it model.OrderItem) (int64, error)

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// OpenFunc opens a Store. The loader calls it once per load and closes the
// result before returning.
type OpenFunc func(ctx context.Context) (Store, error)

//go:embed schema.sql
var schema string

// Schema returns the DDL of the target tables.
func Schema() string {
	return schema
}
