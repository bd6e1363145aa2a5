package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

// Metrics groups the reconcile-loop instrumentation registered once at
// process start and shared by the three reconcilers.
type Metrics struct {
	ReconcileDuration *prometheus.HistogramVec
	ReconcileFailures *prometheus.CounterVec
	ReconcileSuccess  *prometheus.CounterVec
}

// NewMetrics builds the metric collectors and registers them with
// controller-runtime's global registry, which Server in turn serves on its
// `/metrics` endpoint.
func NewMetrics() *Metrics {
	m := &Metrics{
		ReconcileDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "garage_operator_reconcile_duration_seconds",
			Help:    "Duration of reconcile calls by resource kind.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		ReconcileFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "garage_operator_reconcile_failures_total",
			Help: "Count of reconcile calls that returned an error, by kind and namespace.",
		}, []string{"kind", "namespace"}),
		ReconcileSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "garage_operator_reconcile_success_total",
			Help: "Count of reconcile calls that completed without error, by kind.",
		}, []string{"kind"}),
	}
	metrics.Registry.MustRegister(m.ReconcileDuration, m.ReconcileFailures, m.ReconcileSuccess)
	return m
}

// ObserveReconcile records the outcome of one reconcile call.
func (m *Metrics) ObserveReconcile(kind, namespace string, started time.Time, err error) {
	m.ReconcileDuration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
	if err != nil {
		m.ReconcileFailures.WithLabelValues(kind, namespace).Inc()
		return
	}
	m.ReconcileSuccess.WithLabelValues(kind).Inc()
}
