package tracing

import (
	"context"
	"io"
	"os"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// TracerName identifies spans created by this module
const TracerName = "github.com/viant/tasq"

// Span kinds accepted by StartSpan
const (
	KindInternal = "INTERNAL"
	KindServer   = "SERVER"
	KindClient   = "CLIENT"
	KindProducer = "PRODUCER"
	KindConsumer = "CONSUMER"
)

// Span attribute keys
const (
	AttrTaskID      = "task.id"
	AttrSignatureID = "signature.id"
	AttrWorkerID    = "worker.id"
)

// Init configures OpenTelemetry with the stdout exporter writing to
// outputFile, or os.Stdout when empty. The first successful initialisation
// wins; a losing call closes the file it opened.
func Init(serviceName, serviceVersion, outputFile string) error {
	if outputFile == "" {
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(os.Stdout))
		if err != nil {
			return err
		}
		return InitWithExporter(serviceName, serviceVersion, exporter)
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return err
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(f))
	if err != nil {
		_ = f.Close()
		return err
	}
	installed, err := install(serviceName, serviceVersion, exporter, f)
	if !installed {
		_ = f.Close()
	}
	return err
}

// InitWithExporter configures OpenTelemetry with the supplied exporter (OTLP,
// Jaeger, in-memory). The first successful initialisation wins.
func InitWithExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) error {
	if exporter == nil {
		return nil
	}
	_, err := install(serviceName, serviceVersion, exporter, nil)
	return err
}

// Shutdown flushes the installed provider and closes the file opened by Init
func Shutdown(ctx context.Context) error {
	state.mux.Lock()
	defer state.mux.Unlock()
	var err error
	if state.provider != nil {
		err = state.provider.Shutdown(ctx)
		state.provider = nil
	}
	if state.output != nil {
		if closeErr := state.output.Close(); err == nil {
			err = closeErr
		}
		state.output = nil
	}
	return err
}

// install reports whether this call installed the global provider
func install(serviceName, serviceVersion string, exporter sdktrace.SpanExporter, output io.Closer) (bool, error) {
	installed := false
	providerOnce.Do(func() {
		var provider *sdktrace.TracerProvider
		provider, providerErr = NewProvider(serviceName, serviceVersion, sdktrace.NewSimpleSpanProcessor(exporter))
		if providerErr != nil {
			return
		}
		otel.SetTracerProvider(provider)
		state.mux.Lock()
		state.provider = provider
		state.output = output
		state.mux.Unlock()
		installed = true
	})
	return installed, providerErr
}

var (
	providerOnce sync.Once
	providerErr  error
	state        struct {
		mux      sync.Mutex
		provider *sdktrace.TracerProvider
		output   io.Closer
	}
)

// NewProvider creates a tracer provider tagged with the service resource
func NewProvider(serviceName, serviceVersion string, processor sdktrace.SpanProcessor) (*sdktrace.TracerProvider, error) {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", serviceVersion),
		),
	)
	if err != nil {
		return nil, err
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(processor),
		sdktrace.WithResource(res),
	), nil
}

// Span wraps an OpenTelemetry span
type Span struct {
	span trace.Span
}

// WithAttributes attaches string attributes to the span
func (s *Span) WithAttributes(attrs map[string]string) *Span {
	if s == nil || len(attrs) == 0 {
		return s
	}
	otelAttrs := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		otelAttrs = append(otelAttrs, attribute.String(k, v))
	}
	s.span.SetAttributes(otelAttrs...)
	return s
}

// SetStatus records err on the span, or an OK status when err is nil
func (s *Span) SetStatus(err error) {
	if s == nil {
		return
	}
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
		return
	}
	s.span.SetStatus(codes.Ok, "")
}

// StartSpan starts a child span on the global provider
func StartSpan(ctx context.Context, name, kind string) (context.Context, *Span) {
	tracer := otel.Tracer(TracerName)
	ctx, span := tracer.Start(ctx, name, trace.WithSpanKind(spanKind(kind)))
	return ctx, &Span{span: span}
}

func spanKind(kind string) trace.SpanKind {
	switch kind {
	case KindServer:
		return trace.SpanKindServer
	case KindClient:
		return trace.SpanKindClient
	case KindProducer:
		return trace.SpanKindProducer
	case KindConsumer:
		return trace.SpanKindConsumer
	default:
		return trace.SpanKindInternal
	}
}

// EndSpan records status depending on err and ends the span
func EndSpan(sp *Span, err error) {
	if sp == nil {
		return
	}
	sp.SetStatus(err)
	sp.span.End()
}
