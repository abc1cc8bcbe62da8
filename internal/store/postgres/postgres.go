// Package postgres implements store.Store on a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JonMunkholm/fleximart/internal/config"
	"github.com/JonMunkholm/fleximart/internal/database"
	"github.com/JonMunkholm/fleximart/internal/model"
	"github.com/JonMunkholm/fleximart/internal/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens and pings a pool configured from cfg.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Debug("connected to database",
		"host", poolConfig.ConnConfig.Host,
		"name", poolConfig.ConnConfig.Database,
	)
	return pool, nil
}

// Opener returns a store.OpenFunc that connects a fresh pool per call.
// The pool is closed by Store.Close.
func Opener(cfg config.DatabaseConfig) store.OpenFunc {
	return func(ctx context.Context) (store.Store, error) {
		pool, err := Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return New(pool), nil
	}
}

// Store is a store.Store backed by a pgx pool.
type Store struct {
	pool *pgxpool.Pool
	q    *database.Queries
}

// New wraps an existing pool. Close closes the pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, q: database.New(pool)}
}

// Begin starts a transaction.
func (s *Store) Begin(ctx context.Context) (store.Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &Tx{tx: tx, q: s.q.WithTx(tx)}, nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Tx is a store.Tx on a pgx transaction.
type Tx struct {
	tx pgx.Tx
	q  *database.Queries
}

func (t *Tx) InsertCustomer(ctx context.Context, c model.CleanCustomer) (bool, error) {
	n, err := t.q.InsertCustomer(ctx, database.InsertCustomerParams{
		FirstName:        c.FirstName,
		LastName:         c.LastName,
		Email:            c.Email,
		Phone:            c.Phone,
		City:             c.City,
		RegistrationDate: database.ToPgDate(c.RegistrationDate),
	})
	if err != nil {
		return false, fmt.Errorf("insert customer %q: %w", c.Email, err)
	}
	return n > 0, nil
}

func (t *Tx) InsertProduct(ctx context.Context, p model.CleanProduct) (bool, error) {
	n, err := t.q.InsertProduct(ctx, database.InsertProductParams{
		ProductName:   p.ProductName,
		Category:      p.Category,
		Price:         database.ToPgNumeric(p.Price),
		StockQuantity: p.StockQuantity,
	})
	if err != nil {
		return false, fmt.Errorf("insert product %q: %w", p.ProductName.String, err)
	}
	return n > 0, nil
}

func (t *Tx) InsertOrder(ctx context.Context, o model.Order) (int64, error) {
	id, err := t.q.InsertOrder(ctx, database.InsertOrderParams{
		CustomerID:  o.CustomerID,
		OrderDate:   database.ToPgDate(o.OrderDate),
		TotalAmount: database.ToPgNumeric(o.TotalAmount),
		Status:      statusOrNull(o.Status),
	})
	if err != nil {
		return 0, fmt.Errorf("insert order for customer %d: %w", o.CustomerID, err)
	}
	return id, nil
}

func (t *Tx) InsertOrderItem(ctx context.Context, it model.OrderItem) (int64, error) {
	id, err := t.q.InsertOrderItem(ctx, database.InsertOrderItemParams{
		OrderID:   it.OrderID,
		ProductID: it.ProductID,
		Quantity:  it.Quantity,
		UnitPrice: database.ToPgNumeric(it.UnitPrice),
		Subtotal:  database.ToPgNumeric(it.Subtotal),
	})
	if err != nil {
		return 0, fmt.Errorf("insert order item for order %d: %w", it.OrderID, err)
	}
	return id, nil
}

func (t *Tx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Rollback aborts the transaction. Rolling back a committed transaction is
// a no-op.
func (t *Tx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

func statusOrNull(s pgtype.Text) pgtype.Text {
	if s.Valid && s.String == "" {
		return pgtype.Text{}
	}
	return s
}

// Reset empties the four loaded tables and restarts their sequences.
func (s *Store) Reset(ctx context.Context) error {
	return s.q.ResetAll(ctx)
}

// Counts returns the row count of every loaded table.
func (s *Store) Counts(ctx context.Context) (map[string]int64, error) {
	out := make(map[string]int64, len(database.Tables))
	for _, table := range database.Tables {
		n, err := s.q.CountRows(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		out[table] = n
	}
	return out, nil
}
