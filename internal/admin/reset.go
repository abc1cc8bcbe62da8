// Package admin provides administrative operations on the target tables.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/JonMunkholm/fleximart/internal/database"
)

// ResetTimeout is the maximum duration for a reset.
const ResetTimeout = 30 * time.Second

// Target is a store whose tables can be counted and emptied. Both the
// postgres and memory stores implement it.
type Target interface {
	Counts(ctx context.Context) (map[string]int64, error)
	Reset(ctx context.Context) error
}

// TableCount is the row count of one table.
type TableCount struct {
	Table string
	Rows  int64
}

// ResetAll empties the customers, products, orders and order_items tables
// and restarts their id sequences. It returns how many rows each table held,
// children first. This is destructive; callers confirm before calling it.
func ResetAll(ctx context.Context, t Target) ([]TableCount, error) {
	ctx, cancel := context.WithTimeout(ctx, ResetTimeout)
	defer cancel()

	before, err := t.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count rows: %w", err)
	}
	if err := t.Reset(ctx); err != nil {
		return nil, fmt.Errorf("reset tables: %w", err)
	}

	cleared := make([]TableCount, 0, len(database.Tables))
	for _, table := range database.Tables {
		cleared = append(cleared, TableCount{Table: table, Rows: before[table]})
		slog.Info("table reset", "table", table, "rows", before[table])
	}
	return cleared, nil
}
