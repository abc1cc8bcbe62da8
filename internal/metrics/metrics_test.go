package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/fleximart/internal/loader"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPhaseDone(t *testing.T) {
	r := NewRegistry()

	r.PhaseDone(loader.PhaseDimensions, map[string]int{"customers": 3, "products": 2}, time.Millisecond, nil)
	r.PhaseDone(loader.PhaseFacts, map[string]int{}, time.Millisecond, errors.New("fk"))

	if got := testutil.ToFloat64(r.Rows.WithLabelValues("customers", "loaded")); got != 3 {
		t.Errorf("customers loaded = %v, want 3", got)
	}
	if got := testutil.ToFloat64(r.PhaseFailures.WithLabelValues("facts")); got != 1 {
		t.Errorf("facts failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.PhaseFailures.WithLabelValues("dimensions")); got != 0 {
		t.Errorf("dimensions failures = %v, want 0", got)
	}
}

func TestRunFinished(t *testing.T) {
	r := NewRegistry()
	at := time.Unix(1700000000, 0)

	r.RunFinished(OutcomeSuccess, at)
	if got := testutil.ToFloat64(r.LastRunOK); got != 1 {
		t.Errorf("last_run_success = %v, want 1", got)
	}

	r.RunFinished(OutcomeLoadFailed, at)
	if got := testutil.ToFloat64(r.LastRunOK); got != 0 {
		t.Errorf("last_run_success = %v, want 0", got)
	}
	if got := testutil.ToFloat64(r.Runs.WithLabelValues(OutcomeSuccess)); got != 1 {
		t.Errorf("success runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.LastRunTime); got != 1700000000 {
		t.Errorf("last_run_timestamp = %v", got)
	}
}

func TestHandler(t *testing.T) {
	r := NewRegistry()
	r.ObserveRows("sales", "read", 12)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `fleximart_etl_rows_total{entity="sales",stage="read"} 12`) {
		t.Errorf("metrics output missing rows counter:\n%s", body)
	}
}
