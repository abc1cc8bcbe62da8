package pipeline

import (
	"context"
	"errors"
	"sync"

	"github.com/JonMunkholm/fleximart/internal/logging"
	"github.com/JonMunkholm/fleximart/internal/metrics"
	"github.com/google/uuid"
)

// Service triggers runs on demand, one at a time, and remembers the latest.
type Service struct {
	pipeline  *Pipeline
	limiter   *RunLimiter
	telemetry *metrics.Registry

	mu     sync.RWMutex
	latest *Run
}

// NewService wraps p with limiter. telemetry may be nil.
func NewService(p *Pipeline, limiter *RunLimiter, telemetry *metrics.Registry) *Service {
	return &Service{
		pipeline:  p,
		limiter:   limiter,
		telemetry: telemetry,
	}
}

// Trigger runs the pipeline if no other run is active, waiting up to the
// limiter's maxWait. It returns ErrRunInProgress when the slot stays busy.
func (s *Service) Trigger(ctx context.Context) (*Run, error) {
	runID := uuid.NewString()
	if err := s.limiter.Acquire(ctx, runID); err != nil {
		if s.telemetry != nil && errors.Is(err, ErrRunInProgress) {
			s.telemetry.Runs.WithLabelValues(metrics.OutcomeRejected).Inc()
		}
		logging.FromContext(ctx).Warn("run rejected", "error", err)
		return nil, err
	}
	defer s.limiter.Release()

	run, err := s.pipeline.RunWithID(ctx, runID)
	if run != nil {
		s.mu.Lock()
		s.latest = run
		s.mu.Unlock()
	}
	return run, err
}

// Latest returns the most recent run that produced metrics, or nil.
func (s *Service) Latest() *Run {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Status returns the limiter state.
func (s *Service) Status() RunLimiterStatus {
	return s.limiter.Status()
}

// WaitForDrain blocks until the active run, if any, has finished.
func (s *Service) WaitForDrain(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
