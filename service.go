package tasq

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/tasq/metrics"
	"github.com/viant/tasq/model/task"
	"github.com/viant/tasq/service/admin"
	"github.com/viant/tasq/service/broker"
	fsbroker "github.com/viant/tasq/service/broker/fs"
	"github.com/viant/tasq/service/broker/memory"
	"github.com/viant/tasq/service/broker/postgres"
	"github.com/viant/tasq/service/broker/redis"
	"github.com/viant/tasq/service/registry"
	"github.com/viant/tasq/service/secret"
	"github.com/viant/tasq/service/worker"
	"github.com/viant/tasq/tracing"
	"go.uber.org/zap"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Service wires a broker, a task registry and workers
type Service struct {
	config   *Config
	broker   broker.Broker
	builder  *registry.Builder
	logger   *zap.Logger
	metrics  *metrics.Metrics
	fs       afs.Service
	resolver *secret.Resolver
	tracing  *TracingConfig
	exporter sdktrace.SpanExporter

	mux     sync.Mutex
	app     *registry.App
	workers []*worker.Worker
}

// New creates a service; the broker is built from config unless WithBroker is used
func New(ctx context.Context, options ...Option) (*Service, error) {
	ret := &Service{config: DefaultConfig(), logger: zap.NewNop()}
	for _, option := range options {
		option(ret)
	}
	if err := ret.config.Validate(); err != nil {
		return nil, err
	}
	if err := ret.initTracing(); err != nil {
		return nil, err
	}
	if ret.broker == nil {
		var err error
		if ret.broker, err = ret.newBroker(ctx); err != nil {
			return nil, err
		}
	}
	ret.builder = registry.NewBuilder(ret.broker,
		registry.WithLogger(ret.logger),
		registry.WithMetrics(ret.metrics))
	return ret, nil
}

func (s *Service) initTracing() error {
	cfg := s.tracing
	if cfg == nil && s.config.Tracing.Service != "" {
		cfg = &s.config.Tracing
	}
	if cfg == nil {
		return nil
	}
	if s.exporter != nil {
		return tracing.InitWithExporter(cfg.Service, cfg.Version, s.exporter)
	}
	return tracing.Init(cfg.Service, cfg.Version, cfg.Output)
}

func (s *Service) newBroker(ctx context.Context) (broker.Broker, error) {
	cfg := s.config.Broker
	switch cfg.Vendor {
	case broker.VendorMemory:
		return memory.New(), nil
	case broker.VendorFs:
		if s.fs == nil {
			s.fs = afs.New()
		}
		b, err := fsbroker.New(ctx, s.fs, cfg.URL)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	URL := cfg.URL
	if cfg.Secret != nil {
		if s.resolver == nil {
			s.resolver = secret.New()
		}
		var err error
		if URL, err = s.resolver.Resolve(ctx, URL, cfg.Secret); err != nil {
			return nil, fmt.Errorf("%w: %v", broker.ErrConnection, err)
		}
	}
	switch cfg.Vendor {
	case broker.VendorPostgres:
		b, err := postgres.New(ctx, URL, cfg.Prefix)
		if err != nil {
			return nil, err
		}
		return b, nil
	case broker.VendorRedis:
		b, err := redis.New(ctx, URL, cfg.Prefix)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	return nil, fmt.Errorf("unsupported broker vendor: %v", cfg.Vendor)
}

// Config returns the service config
func (s *Service) Config() *Config {
	return s.config
}

// Broker returns the service broker
func (s *Service) Broker() broker.Broker {
	return s.broker
}

// Register registers aTask; it fails with registry.ErrFrozen once App has been called
func Register[A, R any](s *Service, aTask task.Task[A, R]) error {
	return registry.Register[A, R](s.builder, aTask)
}

// App freezes the registry on first use and returns the shared app
func (s *Service) App() *registry.App {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.app == nil {
		s.app = s.builder.Freeze()
	}
	return s.app
}

// Submit queues aTask with arg and returns the signature id
func Submit[A, R any](ctx context.Context, s *Service, aTask task.Task[A, R], arg A) (string, error) {
	return registry.Submit[A, R](ctx, s.App(), aTask, arg)
}

// NewWorker creates a worker with the configured backoff; Close removes it
func (s *Service) NewWorker(ctx context.Context, options ...worker.Option) (*worker.Worker, error) {
	opts := append([]worker.Option{worker.WithBackoff(s.config.Worker.Backoff())}, options...)
	ret, err := worker.New(ctx, s.App(), opts...)
	if err != nil {
		return nil, err
	}
	s.mux.Lock()
	s.workers = append(s.workers, ret)
	s.mux.Unlock()
	return ret, nil
}

// Handler returns the admin HTTP handler
func (s *Service) Handler(options ...admin.Option) http.Handler {
	opts := append([]admin.Option{admin.WithLogger(s.logger)}, options...)
	return admin.New(s.App(), opts...)
}

// Close removes worker presence entries and closes the broker when it holds
// connections
func (s *Service) Close(ctx context.Context) error {
	s.mux.Lock()
	workers := s.workers
	s.workers = nil
	s.mux.Unlock()
	for _, w := range workers {
		w.Close(ctx)
	}
	if closer, ok := s.broker.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
