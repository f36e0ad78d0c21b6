package worker

import (
	"context"
	"time"

	"github.com/viant/tasq/metrics"
	"go.uber.org/zap"
)

// Option represents a worker option
type Option func(w *Worker)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithBackoff sets the idle wait between polls of an empty queue
func WithBackoff(backoff time.Duration) Option {
	return func(w *Worker) {
		if backoff > 0 {
			w.backoff = backoff
		}
	}
}

// WithSleep replaces the idle sleeper, mostly for tests
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(w *Worker) {
		if sleep != nil {
			w.sleep = sleep
		}
	}
}

// WithMetrics sets metrics collectors
func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Worker) {
		w.metrics = m
	}
}

// WithID sets the worker id instead of a generated one
func WithID(id string) Option {
	return func(w *Worker) {
		if id != "" {
			w.id = id
		}
	}
}
