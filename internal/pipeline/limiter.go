package pipeline

// limiter.go admits one pipeline run at a time.
//
// A run waits up to maxWait for the previous run to finish before failing
// with ErrRunInProgress. WaitForDrain lets shutdown block until the current
// run has written its report.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrRunInProgress is returned when another run holds the slot and the wait
// timeout expires.
var ErrRunInProgress = errors.New("a pipeline run is already in progress")

// DefaultMaxWaitTime is how long to wait for the slot before rejecting.
const DefaultMaxWaitTime = 5 * time.Second

// RunLimiter serializes pipeline runs with a single-slot semaphore.
type RunLimiter struct {
	slot    chan struct{}
	maxWait time.Duration

	mu        sync.RWMutex
	runID     string
	startedAt time.Time
}

// NewRunLimiter creates a limiter. A non-positive maxWait uses DefaultMaxWaitTime.
func NewRunLimiter(maxWait time.Duration) *RunLimiter {
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &RunLimiter{
		slot:    make(chan struct{}, 1),
		maxWait: maxWait,
	}
}

// Acquire takes the slot for runID, waiting up to maxWait.
// The caller MUST call Release when the run completes (use defer).
func (l *RunLimiter) Acquire(ctx context.Context, runID string) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.slot <- struct{}{}:
		l.hold(runID)
		return nil

	case <-waitCtx.Done():
		// Caller cancellation wins over our own timeout
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrRunInProgress
	}
}

// TryAcquire takes the slot without waiting.
func (l *RunLimiter) TryAcquire(runID string) bool {
	select {
	case l.slot <- struct{}{}:
		l.hold(runID)
		return true
	default:
		return false
	}
}

func (l *RunLimiter) hold(runID string) {
	l.mu.Lock()
	l.runID = runID
	l.startedAt = time.Now()
	l.mu.Unlock()
}

// Release frees the slot. Must be called exactly once per successful acquire.
func (l *RunLimiter) Release() {
	l.mu.Lock()
	l.runID = ""
	l.startedAt = time.Time{}
	l.mu.Unlock()

	<-l.slot
}

// Running reports whether a run holds the slot.
func (l *RunLimiter) Running() bool {
	return len(l.slot) > 0
}

// WaitForDrain blocks until no run is active or ctx is done.
func (l *RunLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if !l.Running() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunLimiterStatus is a snapshot of the limiter state.
type RunLimiterStatus struct {
	Running   bool      `json:"running"`
	RunID     string    `json:"run_id,omitempty"`
	StartedAt time.Time `json:"started_at,omitempty"`
}

// Status returns the current limiter state for monitoring.
func (l *RunLimiter) Status() RunLimiterStatus {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return RunLimiterStatus{
		Running:   l.runID != "",
		RunID:     l.runID,
		StartedAt: l.startedAt,
	}
}
