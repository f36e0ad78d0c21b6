package tracing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestStartSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider, err := NewProvider("tasq", "0.0.1", recorder)
	require.NoError(t, err)
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	defer otel.SetTracerProvider(previous)

	var testCases = []struct {
		description string
		kind        string
		err         error
		expectKind  trace.SpanKind
		expectCode  codes.Code
	}{
		{description: "producer ok", kind: KindProducer, expectKind: trace.SpanKindProducer, expectCode: codes.Ok},
		{description: "consumer error", kind: KindConsumer, err: errors.New("boom"), expectKind: trace.SpanKindConsumer, expectCode: codes.Error},
		{description: "unknown kind", kind: "other", expectKind: trace.SpanKindInternal, expectCode: codes.Ok},
	}
	for i, testCase := range testCases {
		_, span := StartSpan(context.Background(), testCase.description, testCase.kind)
		span.WithAttributes(map[string]string{AttrTaskID: "sum"})
		EndSpan(span, testCase.err)

		ended := recorder.Ended()
		require.Len(t, ended, i+1, testCase.description)
		assert.Equal(t, testCase.expectKind, ended[i].SpanKind(), testCase.description)
		assert.Equal(t, testCase.expectCode, ended[i].Status().Code, testCase.description)
		assert.Contains(t, ended[i].Attributes(), attribute.String(AttrTaskID, "sum"), testCase.description)
	}
}

func TestInit_File(t *testing.T) {
	dir := t.TempDir()
	fname := filepath.Join(dir, "span_test.txt")
	require.NoError(t, Init("tasq", "0.0.1", fname))
	previous := otel.GetTracerProvider()

	var testCases = []struct {
		description string
		outputFile  string
	}{
		{description: "second file loses", outputFile: filepath.Join(dir, "second.txt")},
		{description: "stdout loses"},
	}
	for _, testCase := range testCases {
		assert.NoError(t, Init("other", "0.0.2", testCase.outputFile), testCase.description)
		assert.Equal(t, previous, otel.GetTracerProvider(), testCase.description)
	}

	_, span := StartSpan(context.Background(), "test", KindInternal)
	EndSpan(span, nil)

	data, err := os.ReadFile(fname)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	data, err = os.ReadFile(filepath.Join(dir, "second.txt"))
	require.NoError(t, err)
	assert.Empty(t, data)

	state.mux.Lock()
	output, ok := state.output.(*os.File)
	state.mux.Unlock()
	require.True(t, ok)
	assert.Equal(t, fname, output.Name())

	require.NoError(t, Shutdown(context.Background()))
	assert.ErrorIs(t, output.Close(), os.ErrClosed)
	assert.NoError(t, Shutdown(context.Background()))
}

func TestNilSpan(t *testing.T) {
	var span *Span
	assert.Nil(t, span.WithAttributes(map[string]string{"k": "v"}))
	span.SetStatus(errors.New("ignored"))
	EndSpan(span, nil)
}
