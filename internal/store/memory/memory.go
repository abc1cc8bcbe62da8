// Package memory implements store.Store in process memory.
//
// It backs dry runs and tests. Constraint violations are reported as
// *pgconn.PgError with the SQLSTATE PostgreSQL would use, so error
// classification behaves the same against either store. Like PostgreSQL
// sequences, assigned ids are never reused after a rollback.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/JonMunkholm/fleximart/internal/model"
	"github.com/JonMunkholm/fleximart/internal/store"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrTxDone is returned when a finished transaction is used.
var ErrTxDone = errors.New("transaction has already been committed or rolled back")

// Op names an operation failures can be injected into.
type Op string

const (
	OpBegin           Op = "begin"
	OpInsertCustomer  Op = "insert_customer"
	OpInsertProduct   Op = "insert_product"
	OpInsertOrder     Op = "insert_order"
	OpInsertOrderItem Op = "insert_order_item"
	OpCommit          Op = "commit"
)

// CustomerRow is a persisted customer.
type CustomerRow struct {
	ID int64
	model.CleanCustomer
}

// ProductRow is a persisted product.
type ProductRow struct {
	ID int64
	model.CleanProduct
}

type tables struct {
	customers  []CustomerRow
	products   []ProductRow
	orders     []model.Order
	orderItems []model.OrderItem
}

func (t *tables) clone() *tables {
	return &tables{
		customers:  append([]CustomerRow(nil), t.customers...),
		products:   append([]ProductRow(nil), t.products...),
		orders:     append([]model.Order(nil), t.orders...),
		orderItems: append([]model.OrderItem(nil), t.orderItems...),
	}
}

type sequences struct {
	customer, product, order, orderItem int64
}

// Store is an in-memory store.Store. It is safe for concurrent use; data
// survives Close so repeated opens see earlier commits.
type Store struct {
	mu       sync.Mutex
	data     *tables
	seq      sequences
	failures map[Op][]failure
	opens    int
	closes   int
}

type failure struct {
	after int // successful calls to let through first
	err   error
}

// New creates an empty store.
func New() *Store {
	return &Store{
		data:     &tables{},
		failures: make(map[Op][]failure),
	}
}

// Opener returns a store.OpenFunc handing out s.
func (s *Store) Opener() store.OpenFunc {
	return func(ctx context.Context) (store.Store, error) {
		s.mu.Lock()
		s.opens++
		s.mu.Unlock()
		return s, nil
	}
}

// FailOn makes op return err once, after `after` further successful calls.
func (s *Store) FailOn(op Op, after int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = append(s.failures[op], failure{after: after, err: err})
}

func (s *Store) injected(op Op) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := s.failures[op]
	if len(pending) == 0 {
		return nil
	}
	if pending[0].after > 0 {
		pending[0].after--
		return nil
	}
	err := pending[0].err
	s.failures[op] = pending[1:]
	return err
}

// Begin starts a transaction over a snapshot of the committed data.
func (s *Store) Begin(ctx context.Context) (store.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.injected(OpBegin); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return &Tx{s: s, data: s.data.clone()}, nil
}

// Close records the release. Data is kept.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
}

// Balanced reports whether every open was matched by a Close.
func (s *Store) Balanced() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opens == s.closes
}

// Customers returns the committed customers in insertion order.
func (s *Store) Customers() []CustomerRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]CustomerRow(nil), s.data.customers...)
}

// Products returns the committed products in insertion order.
func (s *Store) Products() []ProductRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ProductRow(nil), s.data.products...)
}

// Orders returns the committed orders in insertion order.
func (s *Store) Orders() []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Order(nil), s.data.orders...)
}

// OrderItems returns the committed order items in insertion order.
func (s *Store) OrderItems() []model.OrderItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.OrderItem(nil), s.data.orderItems...)
}

// Reset empties every table and restarts the sequences.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = &tables{}
	s.seq = sequences{}
	return nil
}

// Counts returns the committed row count of every table.
func (s *Store) Counts(ctx context.Context) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return map[string]int64{
		"order_items": int64(len(s.data.orderItems)),
		"orders":      int64(len(s.data.orders)),
		"products":    int64(len(s.data.products)),
		"customers":   int64(len(s.data.customers)),
	}, nil
}

func (s *Store) nextID(counter *int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	*counter++
	return *counter
}

// Tx is a transaction over a private copy of the tables.
type Tx struct {
	s    *Store
	data *tables
	done bool
}

func (t *Tx) check(ctx context.Context, op Op) error {
	if t.done {
		return ErrTxDone
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.s.injected(op)
}

func (t *Tx) InsertCustomer(ctx context.Context, c model.CleanCustomer) (bool, error) {
	if err := t.check(ctx, OpInsertCustomer); err != nil {
		return false, err
	}
	if c.Email == "" {
		return false, notNull("customers", "email")
	}
	if c.RegistrationDate.IsZero() {
		return false, notNull("customers", "registration_date")
	}
	for _, row := range t.data.customers {
		if row.Email == c.Email {
			return false, nil
		}
	}

	t.data.customers = append(t.data.customers, CustomerRow{
		ID:            t.s.nextID(&t.s.seq.customer),
		CleanCustomer: c,
	})
	return true, nil
}

func (t *Tx) InsertProduct(ctx context.Context, p model.CleanProduct) (bool, error) {
	if err := t.check(ctx, OpInsertProduct); err != nil {
		return false, err
	}
	// NULL names never conflict, as with a UNIQUE column in PostgreSQL
	if p.ProductName.Valid {
		for _, row := range t.data.products {
			if row.ProductName.Valid && row.ProductName.String == p.ProductName.String {
				return false, nil
			}
		}
	}

	t.data.products = append(t.data.products, ProductRow{
		ID:           t.s.nextID(&t.s.seq.product),
		CleanProduct: p,
	})
	return true, nil
}

func (t *Tx) InsertOrder(ctx context.Context, o model.Order) (int64, error) {
	if err := t.check(ctx, OpInsertOrder); err != nil {
		return 0, err
	}
	if o.OrderDate.IsZero() {
		return 0, notNull("orders", "order_date")
	}
	if !t.hasCustomer(o.CustomerID) {
		return 0, foreignKey("orders", "orders_customer_id_fkey",
			fmt.Sprintf("Key (customer_id)=(%d) is not present in table \"customers\".", o.CustomerID))
	}

	o.ID = t.s.nextID(&t.s.seq.order)
	t.data.orders = append(t.data.orders, o)
	return o.ID, nil
}

func (t *Tx) InsertOrderItem(ctx context.Context, it model.OrderItem) (int64, error) {
	if err := t.check(ctx, OpInsertOrderItem); err != nil {
		return 0, err
	}
	if !t.hasOrder(it.OrderID) {
		return 0, foreignKey("order_items", "order_items_order_id_fkey",
			fmt.Sprintf("Key (order_id)=(%d) is not present in table \"orders\".", it.OrderID))
	}
	if !t.hasProduct(it.ProductID) {
		return 0, foreignKey("order_items", "order_items_product_id_fkey",
			fmt.Sprintf("Key (product_id)=(%d) is not present in table \"products\".", it.ProductID))
	}

	it.ID = t.s.nextID(&t.s.seq.orderItem)
	t.data.orderItems = append(t.data.orderItems, it)
	return it.ID, nil
}

// Commit publishes the transaction's tables.
func (t *Tx) Commit(ctx context.Context) error {
	if err := t.check(ctx, OpCommit); err != nil {
		if !errors.Is(err, ErrTxDone) {
			t.done = true
		}
		return err
	}
	t.done = true

	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.s.data = t.data
	return nil
}

// Rollback discards the transaction. It is a no-op once finished.
func (t *Tx) Rollback(ctx context.Context) error {
	t.done = true
	t.data = nil
	return nil
}

func (t *Tx) hasCustomer(id int64) bool {
	for _, row := range t.data.customers {
		if row.ID == id {
			return true
		}
	}
	return false
}

func (t *Tx) hasProduct(id int64) bool {
	for _, row := range t.data.products {
		if row.ID == id {
			return true
		}
	}
	return false
}

func (t *Tx) hasOrder(id int64) bool {
	for _, row := range t.data.orders {
		if row.ID == id {
			return true
		}
	}
	return false
}

func foreignKey(table, constraint, detail string) error {
	return &pgconn.PgError{
		Severity:       "ERROR",
		Code:           "23503",
		Message:        fmt.Sprintf("insert or update on table %q violates foreign key constraint %q", table, constraint),
		Detail:         detail,
		TableName:      table,
		ConstraintName: constraint,
	}
}

func notNull(table, column string) error {
	return &pgconn.PgError{
		Severity:   "ERROR",
		Code:       "23502",
		Message:    fmt.Sprintf("null value in column %q of relation %q violates not-null constraint", column, table),
		TableName:  table,
		ColumnName: column,
	}
}
