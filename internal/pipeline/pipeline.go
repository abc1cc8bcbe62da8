// Package pipeline runs the ETL end to end:
// extract -> clean -> derive -> load -> report.
//
// Extraction and derivation errors abort the run before anything is loaded
// and no report is written. Load errors never abort: the loader records them
// and the report is written regardless.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/fleximart/internal/clean"
	"github.com/JonMunkholm/fleximart/internal/loader"
	"github.com/JonMunkholm/fleximart/internal/logging"
	"github.com/JonMunkholm/fleximart/internal/metrics"
	"github.com/JonMunkholm/fleximart/internal/model"
	"github.com/JonMunkholm/fleximart/internal/quality"
	"github.com/google/uuid"
)

// Extractor supplies the raw records of the three sources.
type Extractor interface {
	Customers(ctx context.Context) ([]model.RawCustomer, error)
	Products(ctx context.Context) ([]model.RawProduct, error)
	Sales(ctx context.Context) ([]model.RawSale, error)
}

// Keys of the extraction counters, recorded first in the report.
const (
	KeyCustomersRead = model.EntityCustomers + "_records_read"
	KeyProductsRead  = model.EntityProducts + "_records_read"
	KeySalesRead     = model.EntitySales + "_records_read"
)

// Pipeline wires the stages of one run.
type Pipeline struct {
	extractor  Extractor
	loader     *loader.Loader
	reportPath string
	timeout    time.Duration
	telemetry  *metrics.Registry
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTimeout bounds each run. Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.timeout = d }
}

// WithTelemetry records run outcomes in reg.
func WithTelemetry(reg *metrics.Registry) Option {
	return func(p *Pipeline) { p.telemetry = reg }
}

// New creates a Pipeline writing its report to reportPath.
func New(extractor Extractor, ld *loader.Loader, reportPath string, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor:  extractor,
		loader:     ld,
		reportPath: reportPath,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run is the outcome of one pipeline execution.
type Run struct {
	ID         string           `json:"id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	ReportPath string           `json:"report_path"`
	Metrics    *quality.Metrics `json:"metrics"`
	Load       loader.Result    `json:"-"`
}

// Succeeded reports whether both load phases committed.
func (r *Run) Succeeded() bool { return r.Load.OK() }

// Run executes the pipeline once with a fresh run ID.
func (p *Pipeline) Run(ctx context.Context) (*Run, error) {
	return p.RunWithID(ctx, uuid.NewString())
}

// RunWithID executes the pipeline once under runID.
func (p *Pipeline) RunWithID(ctx context.Context, runID string) (*Run, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.FromContext(ctx)

	run := &Run{
		ID:         runID,
		StartedAt:  time.Now(),
		ReportPath: p.reportPath,
		Metrics:    quality.NewMetrics(),
	}
	logger.Info("run started")

	batch, err := p.transform(ctx, run.Metrics)
	if err != nil {
		logger.Error("run aborted", "error", err)
		p.finish(run, metrics.OutcomeAborted)
		return nil, err
	}

	run.Load = p.loader.Load(ctx, batch, run.Metrics)

	if err := quality.WriteFile(p.reportPath, run.Metrics); err != nil {
		p.finish(run, metrics.OutcomeAborted)
		return run, fmt.Errorf("write report: %w", err)
	}

	outcome := metrics.OutcomeSuccess
	if !run.Succeeded() {
		outcome = metrics.OutcomeLoadFailed
	}
	p.finish(run, outcome)

	logger.Info("run finished",
		"outcome", outcome,
		"report", p.reportPath,
		"duration", run.FinishedAt.Sub(run.StartedAt),
	)
	return run, nil
}

// transform extracts, cleans and derives the batch, recording counters in m.
func (p *Pipeline) transform(ctx context.Context, m *quality.Metrics) (model.Batch, error) {
	rawCustomers, err := p.extractor.Customers(ctx)
	if err != nil {
		return model.Batch{}, fmt.Errorf("extract customers: %w", err)
	}
	rawProducts, err := p.extractor.Products(ctx)
	if err != nil {
		return model.Batch{}, fmt.Errorf("extract products: %w", err)
	}
	rawSales, err := p.extractor.Sales(ctx)
	if err != nil {
		return model.Batch{}, fmt.Errorf("extract sales: %w", err)
	}

	m.Set(KeyCustomersRead, len(rawCustomers))
	m.Set(KeyProductsRead, len(rawProducts))
	m.Set(KeySalesRead, len(rawSales))
	p.observeRows(model.EntityCustomers, "read", len(rawCustomers))
	p.observeRows(model.EntityProducts, "read", len(rawProducts))
	p.observeRows(model.EntitySales, "read", len(rawSales))

	customers := clean.Customers(ctx, rawCustomers, m)
	products := clean.Products(ctx, rawProducts, m)
	sales := clean.Sales(ctx, rawSales, m)

	sales, err = clean.DeriveSubtotals(sales)
	if err != nil {
		return model.Batch{}, fmt.Errorf("derive subtotals: %w", err)
	}

	p.observeRows(model.EntityCustomers, "kept", len(customers))
	p.observeRows(model.EntityProducts, "kept", len(products))
	p.observeRows(model.EntitySales, "kept", len(sales))

	return model.Batch{
		Customers: customers,
		Products:  products,
		Sales:     sales,
	}, nil
}

func (p *Pipeline) observeRows(entity, stage string, n int) {
	if p.telemetry != nil {
		p.telemetry.ObserveRows(entity, stage, n)
	}
}

func (p *Pipeline) finish(run *Run, outcome string) {
	run.FinishedAt = time.Now()
	if p.telemetry != nil {
		p.telemetry.RunFinished(outcome, run.FinishedAt)
	}
}
