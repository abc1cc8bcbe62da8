// Package quality collects the data-quality counters of a run and renders
// them as the "key: value" report.
//
// Keys keep the order in which they were first recorded, so the report always
// lists extraction counters first, then cleaning, then load outcome.
package quality

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/cevaris/ordered_map"
)

// Report keys shared by the pipeline stages.
const (
	KeyRecordsLoaded = "records_loaded_successfully"
	KeyLoadError     = "load_error"
	KeyFailedPhase   = "load_failed_phase"
	KeyFactsLoad     = "facts_load"
)

// Metrics is a run-scoped, insertion-ordered mapping of counter names to
// values. Values are ints (counters) or strings (outcomes).
type Metrics struct {
	mu sync.RWMutex
	om *ordered_map.OrderedMap
}

// NewMetrics creates an empty Metrics.
func NewMetrics() *Metrics {
	return &Metrics{om: ordered_map.NewOrderedMap()}
}

// Set records value under key. An existing key keeps its position.
func (m *Metrics) Set(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.om.Set(key, value)
}

// Add increments an integer counter, creating it at zero first.
func (m *Metrics) Add(key string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := 0
	if v, ok := m.om.Get(key); ok {
		if i, ok := v.(int); ok {
			cur = i
		}
	}
	m.om.Set(key, cur+n)
}

// Get returns the value stored under key.
func (m *Metrics) Get(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.om.Get(key)
}

// Int returns the integer counter under key, or 0.
func (m *Metrics) Int(key string) int {
	v, _ := m.Get(key)
	i, _ := v.(int)
	return i
}

// String returns the value under key formatted as it appears in the report.
func (m *Metrics) String(key string) string {
	v, ok := m.Get(key)
	if !ok {
		return ""
	}
	return fmt.Sprint(v)
}

// Len returns the number of recorded keys.
func (m *Metrics) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.om.Len()
}

// Keys returns the keys in insertion order.
func (m *Metrics) Keys() []string {
	keys := make([]string, 0, m.Len())
	m.Each(func(key string, _ any) {
		keys = append(keys, key)
	})
	return keys
}

// Each calls fn for every entry in insertion order.
func (m *Metrics) Each(fn func(key string, value any)) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	iter := m.om.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		fn(kv.Key.(string), kv.Value)
	}
}

// Entry is one key/value pair of the report.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Entries returns the report lines as ordered pairs.
func (m *Metrics) Entries() []Entry {
	out := make([]Entry, 0, m.Len())
	m.Each(func(key string, value any) {
		out = append(out, Entry{Key: key, Value: fmt.Sprint(value)})
	})
	return out
}

// MarshalJSON encodes the metrics as an ordered list of entries; a Go map
// would lose the report order.
func (m *Metrics) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Entries())
}
