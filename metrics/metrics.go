// Package metrics exposes prometheus collectors for submitted and dispatched
// tasks and live worker states. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/viant/tasq/model/message"
)

// Namespace prefixes every collector name
const Namespace = "tasq"

// Dispatch status label values
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics groups task queue collectors
type Metrics struct {
	submitted  *prometheus.CounterVec
	dispatched *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	workers    *prometheus.GaugeVec
}

// New creates collectors and registers them with registerer
// (prometheus.DefaultRegisterer when nil)
func New(registerer prometheus.Registerer) (*Metrics, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	ret := &Metrics{
		submitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "submitted_total",
			Help:      "Number of task signatures pushed to the broker.",
		}, []string{"task"}),
		dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "dispatched_total",
			Help:      "Number of task messages dispatched by workers.",
		}, []string{"task", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "dispatch_seconds",
			Help:      "Task dispatch latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"task"}),
		workers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "workers",
			Help:      "Workers in this process by state.",
		}, []string{"state"}),
	}
	for _, collector := range ret.Collectors() {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

// Collectors returns all collectors
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.submitted, m.dispatched, m.duration, m.workers}
}

// Submitted counts one submitted signature
func (m *Metrics) Submitted(taskID string) {
	if m == nil {
		return
	}
	m.submitted.WithLabelValues(taskID).Inc()
}

// Dispatched counts one dispatch and observes its latency
func (m *Metrics) Dispatched(taskID string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	m.dispatched.WithLabelValues(taskID, status).Inc()
	m.duration.WithLabelValues(taskID).Observe(elapsed.Seconds())
}

// WorkerTransition moves one worker from state from to state to; an empty
// from registers a new worker, an empty to removes it
func (m *Metrics) WorkerTransition(from, to message.WorkerState) {
	if m == nil {
		return
	}
	if from != "" {
		m.workers.WithLabelValues(string(from)).Dec()
	}
	if to != "" {
		m.workers.WithLabelValues(string(to)).Inc()
	}
}
