package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/tasq/model/message"
)

func TestMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := New(registry)
	require.NoError(t, err)

	m.Submitted("sum")
	m.Submitted("sum")
	m.Dispatched("sum", 10*time.Millisecond, nil)
	m.Dispatched("sum", time.Millisecond, errors.New("boom"))
	m.WorkerTransition("", message.WorkerStatePending)
	m.WorkerTransition(message.WorkerStatePending, message.WorkerStateRunning)
	m.WorkerTransition("", message.WorkerStatePending)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.submitted.WithLabelValues("sum")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dispatched.WithLabelValues("sum", StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dispatched.WithLabelValues("sum", StatusError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.workers.WithLabelValues("Pending")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.workers.WithLabelValues("Running")))

	count, err := testutil.GatherAndCount(registry, "tasq_dispatch_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = New(registry)
	assert.Error(t, err, "duplicate registration")
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics
	m.Submitted("sum")
	m.Dispatched("sum", time.Second, nil)
	m.WorkerTransition("", message.WorkerStateRunning)
}
