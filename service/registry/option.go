package registry

import (
	"github.com/viant/tasq/metrics"
	"go.uber.org/zap"
)

// Option represents a builder option
type Option func(b *Builder)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithMetrics sets metrics collectors
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Builder) {
		b.metrics = m
	}
}
