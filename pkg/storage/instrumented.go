package storage

import (
	"context"
	"time"

	"github.com/dd0wney/starry-habits/pkg/habits"
	"github.com/dd0wney/starry-habits/pkg/logging"
	"github.com/dd0wney/starry-habits/pkg/metrics"
)

// Instrumented wraps a Store with operation metrics and error logging.
type Instrumented struct {
	next    Store
	backend string
	metrics *metrics.Registry
	logger  logging.Logger
}

// NewInstrumented wraps next. A nil registry or logger disables that concern.
func NewInstrumented(next Store, backend string, registry *metrics.Registry, logger logging.Logger) *Instrumented {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Instrumented{
		next:    next,
		backend: backend,
		metrics: registry,
		logger:  logger.With(logging.Component("storage"), logging.String("backend", backend)),
	}
}

func (s *Instrumented) Load(ctx context.Context) (*habits.Data, error) {
	start := time.Now()
	data, err := s.next.Load(ctx)
	s.observe("load", start, err)
	return data, err
}

func (s *Instrumented) Save(ctx context.Context, data *habits.Data) error {
	start := time.Now()
	err := s.next.Save(ctx, data)
	s.observe("save", start, err)
	return err
}

func (s *Instrumented) Close() error {
	return s.next.Close()
}

// Unwrap returns the wrapped store.
func (s *Instrumented) Unwrap() Store {
	return s.next
}

func (s *Instrumented) observe(op string, start time.Time, err error) {
	elapsed := time.Since(start)
	if s.metrics != nil {
		s.metrics.RecordStorageOperation(s.backend, op, err, elapsed)
	}
	if err != nil {
		s.logger.Error("storage operation failed", logging.Operation(op), logging.Latency(elapsed), logging.Error(err))
		return
	}
	s.logger.Debug("storage operation", logging.Operation(op), logging.Latency(elapsed))
}
