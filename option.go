package tasq

import (
	"github.com/viant/afs"
	"github.com/viant/tasq/metrics"
	"github.com/viant/tasq/service/broker"
	"github.com/viant/tasq/service/secret"
	"go.uber.org/zap"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option represents a service option
type Option func(s *Service)

// WithConfig sets the configuration
func WithConfig(config *Config) Option {
	return func(s *Service) {
		if config != nil {
			s.config = config
		}
	}
}

// WithBroker sets the broker, skipping broker construction from config
func WithBroker(b broker.Broker) Option {
	return func(s *Service) {
		s.broker = b
	}
}

// WithLogger sets the logger shared by the registry, workers and admin handler
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets metrics collectors
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithFileSystem sets the afs service used by the fs broker
func WithFileSystem(fs afs.Service) Option {
	return func(s *Service) {
		s.fs = fs
	}
}

// WithSecretResolver sets the broker credential resolver
func WithSecretResolver(resolver *secret.Resolver) Option {
	return func(s *Service) {
		s.resolver = resolver
	}
}

// WithTracing configures OpenTelemetry tracing with the stdout exporter. If
// outputFile is empty spans are written to os.Stdout.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		s.tracing = &TracingConfig{Service: serviceName, Version: serviceVersion, Output: outputFile}
	}
}

// WithTracingExporter configures OpenTelemetry tracing with a custom exporter
// (OTLP, Jaeger, Zipkin).
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		s.tracing = &TracingConfig{Service: serviceName, Version: serviceVersion}
		s.exporter = exporter
	}
}
