// Package middleware provides cross-cutting observability concerns for
// the ranking engine.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-prp/internal/ports"
)

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. It exposes comparator decision counts, oracle call volume,
// token usage, and latency for a ranking run.
type PrometheusMetrics struct {
	comparatorDecisions *prometheus.CounterVec
	oracleRequests      *prometheus.CounterVec
	oracleTokens        *prometheus.CounterVec
	oracleLatency       *prometheus.HistogramVec
	operationCounter    *prometheus.CounterVec
	operationLatency    *prometheus.HistogramVec
}

// NewPrometheusMetrics creates a PrometheusMetrics instance and registers
// all metrics in the given registerer. Pass prometheus.DefaultRegisterer
// for the global registry.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		comparatorDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "comparator_decisions_total",
				Help: "Pairwise comparator decisions by reconciled outcome.",
			},
			[]string{"judge", "outcome"},
		),
		oracleRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oracle_requests_total",
				Help: "Oracle invocations by provider, model, and status.",
			},
			[]string{"provider", "model", "status"},
		),
		oracleTokens: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oracle_tokens_total",
				Help: "Tokens consumed across all oracle invocations.",
			},
			[]string{"provider", "model", "token_type"},
		),
		oracleLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "oracle_latency_seconds",
				Help:    "Oracle invocation latency.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider", "model"},
		),
		operationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ranking_operations_total",
				Help: "Ranking engine operations by name and status.",
			},
			[]string{"operation", "status"},
		),
		operationLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ranking_operation_duration_seconds",
				Help:    "Execution time of ranking engine operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordLatency implements the MetricsCollector interface by recording
// operation latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(operation string, duration time.Duration, labels map[string]string) {
	pm.operationLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by routing
// known metric names to their dedicated counter vectors.
func (pm *PrometheusMetrics) RecordCounter(metric string, value float64, labels map[string]string) {
	switch metric {
	case "comparator_decisions_total":
		pm.comparatorDecisions.WithLabelValues(
			labelOr(labels, "judge", "unknown"),
			labelOr(labels, "outcome", "unknown"),
		).Add(value)
	case "oracle_requests_total":
		pm.oracleRequests.WithLabelValues(
			labelOr(labels, "provider", "unknown"),
			labelOr(labels, "model", "unknown"),
			labelOr(labels, "status", "unknown"),
		).Add(value)
	case "oracle_tokens_total":
		pm.oracleTokens.WithLabelValues(
			labelOr(labels, "provider", "unknown"),
			labelOr(labels, "model", "unknown"),
			labelOr(labels, "token_type", "unknown"),
		).Add(value)
	default:
		pm.operationCounter.WithLabelValues(metric, labelOr(labels, "status", "success")).Add(value)
	}
}

// RecordHistogram implements the MetricsCollector interface by routing
// known metric names to their dedicated histogram vectors.
func (pm *PrometheusMetrics) RecordHistogram(metric string, value float64, labels map[string]string) {
	switch metric {
	case "oracle_latency_seconds":
		pm.oracleLatency.WithLabelValues(
			labelOr(labels, "provider", "unknown"),
			labelOr(labels, "model", "unknown"),
		).Observe(value)
	default:
		pm.operationLatency.WithLabelValues(metric).Observe(value)
	}
}

func labelOr(labels map[string]string, key, fallback string) string {
	if v, ok := labels[key]; ok && v != "" {
		return v
	}
	return fallback
}

// Compile-time verification that PrometheusMetrics implements
// MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
