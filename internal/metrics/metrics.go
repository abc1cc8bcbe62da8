// Package metrics exposes pipeline run telemetry in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/JonMunkholm/fleximart/internal/loader"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run outcomes used as the "outcome" label.
const (
	OutcomeSuccess    = "success"
	OutcomeLoadFailed = "load_failed"
	OutcomeAborted    = "aborted"
	OutcomeRejected   = "rejected"
)

type Registry struct {
	reg           *prometheus.Registry
	Runs          *prometheus.CounterVec
	PhaseFailures *prometheus.CounterVec
	Rows          *prometheus.CounterVec
	PhaseLatency  *prometheus.HistogramVec
	LastRunTime   prometheus.Gauge
	LastRunOK     prometheus.Gauge
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fleximart_etl_runs_total",
		Help: "Pipeline runs by outcome.",
	}, []string{"outcome"})
	phaseFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fleximart_etl_load_phase_failures_total",
		Help: "Load phases rolled back, by phase.",
	}, []string{"phase"})
	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fleximart_etl_rows_total",
		Help: "Rows processed by entity and stage (read, kept, loaded).",
	}, []string{"entity", "stage"})
	phaseLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fleximart_etl_load_phase_seconds",
		Help:    "Load phase duration including commit or rollback.",
		Buckets: prometheus.DefBuckets,
	}, []string{"phase"})
	lastRunTime := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fleximart_etl_last_run_timestamp_seconds",
		Help: "Unix time the last run finished.",
	})
	lastRunOK := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fleximart_etl_last_run_success",
		Help: "1 if the last run loaded both phases, 0 otherwise.",
	})

	r.MustRegister(runs, phaseFailures, rows, phaseLatency, lastRunTime, lastRunOK)
	return &Registry{
		reg:           r,
		Runs:          runs,
		PhaseFailures: phaseFailures,
		Rows:          rows,
		PhaseLatency:  phaseLatency,
		LastRunTime:   lastRunTime,
		LastRunOK:     lastRunOK,
	}
}

// PhaseDone implements loader.Observer.
func (r *Registry) PhaseDone(phase loader.Phase, rows map[string]int, elapsed time.Duration, err error) {
	r.PhaseLatency.WithLabelValues(string(phase)).Observe(elapsed.Seconds())
	if err != nil {
		r.PhaseFailures.WithLabelValues(string(phase)).Inc()
		return
	}
	for entity, n := range rows {
		r.Rows.WithLabelValues(entity, "loaded").Add(float64(n))
	}
}

// ObserveRows adds n rows of entity at stage.
func (r *Registry) ObserveRows(entity, stage string, n int) {
	r.Rows.WithLabelValues(entity, stage).Add(float64(n))
}

// RunFinished records a completed run.
func (r *Registry) RunFinished(outcome string, at time.Time) {
	r.Runs.WithLabelValues(outcome).Inc()
	r.LastRunTime.Set(float64(at.Unix()))
	if outcome == OutcomeSuccess {
		r.LastRunOK.Set(1)
	} else {
		r.LastRunOK.Set(0)
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
