// Package metrics provides Prometheus metrics for the memory subsystem
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the memory subsystem
type Metrics struct {
	// Connection lifecycle metrics
	ConnectionState        prometheus.Gauge
	ConnectsTotal          *prometheus.CounterVec
	ReconnectAttemptsTotal prometheus.Counter
	ReconnectFailuresTotal prometheus.Counter

	// Store operation metrics
	OperationsTotal       *prometheus.CounterVec
	OperationDuration     *prometheus.HistogramVec
	OperationRetriesTotal prometheus.Counter
}

// NewMetrics creates all metrics and registers them with reg. Each Metrics
// instance needs its own registry; registering twice against the same one
// panics in the prometheus client.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{}

	// Connection lifecycle metrics
	m.ConnectionState = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "ain_memory_connection_state",
			Help: "Current connection state (0=disconnected, 1=connecting, 2=connected, 3=reconnecting)",
		},
	)

	m.ConnectsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ain_memory_connects_total",
			Help: "Total number of connect calls",
		},
		[]string{"status"},
	)

	m.ReconnectAttemptsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "ain_memory_reconnect_attempts_total",
			Help: "Total number of reconnection attempts",
		},
	)

	m.ReconnectFailuresTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "ain_memory_reconnect_failures_total",
			Help: "Total number of exhausted reconnection loops",
		},
	)

	// Store operation metrics
	m.OperationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ain_memory_operations_total",
			Help: "Total number of store operations",
		},
		[]string{"operation", "status"},
	)

	m.OperationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ain_memory_operation_duration_seconds",
			Help:    "Duration of store operations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	m.OperationRetriesTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "ain_memory_operation_retries_total",
			Help: "Total number of operations retried after a connection failure",
		},
	)

	return m
}

// RecordOperation records a store operation with its status
func (m *Metrics) RecordOperation(operation string, status string, duration time.Duration) {
	m.OperationsTotal.WithLabelValues(operation, status).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordConnect records a connect call outcome
func (m *Metrics) RecordConnect(status string) {
	m.ConnectsTotal.WithLabelValues(status).Inc()
}

// SetConnectionState updates the connection state gauge
func (m *Metrics) SetConnectionState(state int) {
	m.ConnectionState.Set(float64(state))
}
