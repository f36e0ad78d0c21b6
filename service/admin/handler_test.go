package admin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/tasq/metrics"
	"github.com/viant/tasq/model/message"
	"github.com/viant/tasq/model/task"
	"github.com/viant/tasq/service/broker/memory"
	"github.com/viant/tasq/service/registry"
)

func newHandler(t *testing.T, opts ...Option) (*Handler, *memory.Broker) {
	b := memory.New()
	builder := registry.NewBuilder(b)
	require.NoError(t, registry.Register[[]int, int](builder, task.New("sum", func(ctx context.Context, arg []int) (int, error) {
		return len(arg), nil
	})))
	require.NoError(t, registry.Register[string, bool](builder, task.New("echo", func(ctx context.Context, arg string) (bool, error) {
		return true, nil
	})))
	return New(builder.Freeze(), opts...), b
}

func serve(h http.Handler, method, URL string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	h.ServeHTTP(recorder, httptest.NewRequest(method, URL, nil))
	return recorder
}

func TestHandler(t *testing.T) {
	ctx := context.Background()
	h, b := newHandler(t)
	require.NoError(t, b.UpdateWorkerInfo(ctx, &message.WorkerInfo{ID: "w1", State: message.WorkerStateRunning}))
	require.NoError(t, b.StoreResult(ctx, &message.Result{SignatureID: "s1", Result: "6"}))

	var testCases = []struct {
		description string
		method      string
		URL         string
		expectCode  int
		expectBody  string
	}{
		{
			description: "tasks",
			method:      http.MethodGet,
			URL:         "/tasks",
			expectCode:  http.StatusOK,
			expectBody:  `[{"name":"echo","arg":"string","result":"bool"},{"name":"sum","arg":"[]int","result":"int"}]`,
		},
		{
			description: "workers",
			method:      http.MethodGet,
			URL:         "/workers",
			expectCode:  http.StatusOK,
			expectBody:  `[{"id":"w1","state":"Running"}]`,
		},
		{
			description: "worker",
			method:      http.MethodGet,
			URL:         "/workers/w1",
			expectCode:  http.StatusOK,
			expectBody:  `{"id":"w1","state":"Running"}`,
		},
		{
			description: "result",
			method:      http.MethodGet,
			URL:         "/results/s1",
			expectCode:  http.StatusOK,
			expectBody:  `{"signature_id":"s1","result":"6"}`,
		},
		{description: "missing worker", method: http.MethodGet, URL: "/workers/w2", expectCode: http.StatusNotFound},
		{description: "missing result", method: http.MethodGet, URL: "/results/s2", expectCode: http.StatusNotFound},
		{description: "stop missing worker", method: http.MethodPost, URL: "/workers/w2/stop", expectCode: http.StatusNotFound},
		{description: "wrong method", method: http.MethodDelete, URL: "/workers/w1", expectCode: http.StatusMethodNotAllowed},
		{description: "metrics disabled", method: http.MethodGet, URL: "/metrics", expectCode: http.StatusNotFound},
	}
	for _, testCase := range testCases {
		recorder := serve(h, testCase.method, testCase.URL)
		assert.Equal(t, testCase.expectCode, recorder.Code, testCase.description)
		if testCase.expectBody != "" {
			assert.JSONEq(t, testCase.expectBody, recorder.Body.String(), testCase.description)
		}
	}
}

func TestHandler_StopWorker(t *testing.T) {
	ctx := context.Background()
	h, b := newHandler(t)
	require.NoError(t, b.UpdateWorkerInfo(ctx, &message.WorkerInfo{ID: "w1", State: message.WorkerStateRunning}))

	recorder := serve(h, http.MethodPost, "/workers/w1/stop")
	assert.Equal(t, http.StatusAccepted, recorder.Code)
	assert.JSONEq(t, `{"id":"w1","command":"StopWorker"}`, recorder.Body.String())

	cmd, err := b.PopCommand(ctx, "w1")
	require.NoError(t, err)
	require.NotNil(t, cmd)
	assert.Equal(t, message.StopWorker, *cmd)
}

func TestHandler_EmptyWorkers(t *testing.T) {
	h, _ := newHandler(t)
	recorder := serve(h, http.MethodGet, "/workers")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `[]`, recorder.Body.String())
}

func TestHandler_Metrics(t *testing.T) {
	promRegistry := prometheus.NewRegistry()
	m, err := metrics.New(promRegistry)
	require.NoError(t, err)
	m.Submitted("sum")

	h, _ := newHandler(t, WithGatherer(promRegistry))
	recorder := serve(h, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, strings.Contains(recorder.Body.String(), `tasq_submitted_total{task="sum"} 1`))
}
