// Package loader persists a cleaned batch in two independent transactions.
//
// Phase 1 inserts the dimensions (customers, then products) with
// insert-if-absent semantics and commits once. Phase 2 inserts one order and
// one order item per sales line, in source order, and commits once. A phase
// that fails is rolled back as a whole and is not retried. A phase-1 failure
// means phase 2 is never attempted; a phase-2 failure leaves phase 1
// committed.
//
// Load never returns load errors to its caller: they are recorded in the run
// metrics so the report can always be written.
package loader

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/fleximart/internal/logging"
	"github.com/JonMunkholm/fleximart/internal/model"
	"github.com/JonMunkholm/fleximart/internal/quality"
	"github.com/JonMunkholm/fleximart/internal/store"
)

// Phase identifies a load phase.
type Phase string

const (
	PhaseDimensions Phase = "dimensions"
	PhaseFacts      Phase = "facts"
)

// Counter keys recorded by the loader.
const (
	KeyCustomersLoaded  = "customers_loaded"
	KeyCustomersPresent = "customers_already_present"
	KeyProductsLoaded   = "products_loaded"
	KeyProductsPresent  = "products_already_present"
	KeyOrdersLoaded     = "orders_loaded"
	KeyOrderItemsLoaded = "order_items_loaded"
)

// FactsSkipped is the facts_load value when phase 1 failed.
const FactsSkipped = "skipped"

// Observer is notified of each phase outcome. Optional.
type Observer interface {
	PhaseDone(phase Phase, rows map[string]int, elapsed time.Duration, err error)
}

// Loader loads batches through a store opened per Load.
type Loader struct {
	open     store.OpenFunc
	observer Observer
}

// Option configures a Loader.
type Option func(*Loader)

// WithObserver reports phase outcomes to o.
func WithObserver(o Observer) Option {
	return func(l *Loader) { l.observer = o }
}

// New creates a Loader. open is called once per Load.
func New(open store.OpenFunc, opts ...Option) *Loader {
	l := &Loader{open: open}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Result summarizes a Load.
type Result struct {
	FailedPhase Phase // empty when both phases committed
	Err         error
}

// OK reports whether both phases committed.
func (r Result) OK() bool { return r.Err == nil }

// Load runs both phases and records the outcome in m.
func (l *Loader) Load(ctx context.Context, batch model.Batch, m *quality.Metrics) Result {
	logger := logging.FromContext(ctx)

	st, err := l.open(ctx)
	if err != nil {
		// Nothing was attempted; count it against phase 1
		res := Result{FailedPhase: PhaseDimensions, Err: fmt.Errorf("open store: %w", err)}
		l.recordFailure(ctx, m, res)
		m.Set(quality.KeyFactsLoad, FactsSkipped)
		return res
	}
	defer st.Close()

	if err := l.loadDimensions(ctx, st, batch, m); err != nil {
		res := Result{FailedPhase: PhaseDimensions, Err: err}
		l.recordFailure(ctx, m, res)
		m.Set(quality.KeyFactsLoad, FactsSkipped)
		return res
	}

	if err := l.loadFacts(ctx, st, batch.Sales, m); err != nil {
		res := Result{FailedPhase: PhaseFacts, Err: err}
		l.recordFailure(ctx, m, res)
		return res
	}

	m.Set(quality.KeyRecordsLoaded, "Yes")
	logger.Info("load complete")
	return Result{}
}

func (l *Loader) recordFailure(ctx context.Context, m *quality.Metrics, res Result) {
	info := store.Classify(res.Err)
	logging.FromContext(ctx).Error("load phase failed",
		"phase", res.FailedPhase,
		"code", info.Code,
		"sqlstate", info.SQLState,
		"constraint", info.Constraint,
		"error", res.Err,
	)
	m.Set(quality.KeyLoadError, fmt.Sprintf("%s: %s", res.FailedPhase, store.Format(res.Err)))
	m.Set(quality.KeyFailedPhase, string(res.FailedPhase))
}

// loadDimensions runs phase 1. Counters are recorded only after commit.
func (l *Loader) loadDimensions(ctx context.Context, st store.Store, batch model.Batch, m *quality.Metrics) (err error) {
	start := time.Now()
	rows := map[string]int{}
	defer func() { l.notify(PhaseDimensions, rows, start, err) }()

	tx, err := st.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var custLoaded, custPresent int
	for _, c := range batch.Customers {
		inserted, err := tx.InsertCustomer(ctx, c)
		if err != nil {
			return err
		}
		if inserted {
			custLoaded++
		} else {
			custPresent++
		}
	}

	var prodLoaded, prodPresent int
	for _, p := range batch.Products {
		inserted, err := tx.InsertProduct(ctx, p)
		if err != nil {
			return err
		}
		if inserted {
			prodLoaded++
		} else {
			prodPresent++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	rows[model.EntityCustomers] = custLoaded
	rows[model.EntityProducts] = prodLoaded
	m.Set(KeyCustomersLoaded, custLoaded)
	m.Set(KeyCustomersPresent, custPresent)
	m.Set(KeyProductsLoaded, prodLoaded)
	m.Set(KeyProductsPresent, prodPresent)

	logging.WithFields(ctx, "phase", PhaseDimensions).Info("phase committed",
		"customers_loaded", custLoaded,
		"customers_already_present", custPresent,
		"products_loaded", prodLoaded,
		"products_already_present", prodPresent,
	)
	return nil
}

// loadFacts runs phase 2: one order plus one item per line.
func (l *Loader) loadFacts(ctx context.Context, st store.Store, lines []model.CleanSalesLine, m *quality.Metrics) (err error) {
	start := time.Now()
	rows := map[string]int{}
	defer func() { l.notify(PhaseFacts, rows, start, err) }()

	tx, err := st.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, line := range lines {
		orderID, err := tx.InsertOrder(ctx, model.NewOrder(line))
		if err != nil {
			return fmt.Errorf("sales line %d: %w", line.Line, err)
		}
		if _, err := tx.InsertOrderItem(ctx, model.NewOrderItem(orderID, line)); err != nil {
			return fmt.Errorf("sales line %d: %w", line.Line, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	rows["orders"] = len(lines)
	rows["order_items"] = len(lines)
	m.Set(KeyOrdersLoaded, len(lines))
	m.Set(KeyOrderItemsLoaded, len(lines))

	logging.WithFields(ctx, "phase", PhaseFacts).Info("phase committed", "orders", len(lines))
	return nil
}

func (l *Loader) notify(phase Phase, rows map[string]int, start time.Time, err error) {
	if l.observer != nil {
		l.observer.PhaseDone(phase, rows, time.Since(start), err)
	}
}
