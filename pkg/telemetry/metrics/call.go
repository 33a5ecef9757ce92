package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"osmosis-ai/osmosis-go/pkg/config"
)

// Call outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// CallMetrics tracks wrapped client calls.
//
// Metrics:
//   - osmosis_interceptor_calls_total: calls by api and outcome
//   - osmosis_interceptor_call_duration_seconds: wrapped call duration
//   - osmosis_interceptor_resolve_failures_total: calls logged without arguments
//   - osmosis_interceptor_stream_chunks_total: streamed text deltas observed
type CallMetrics struct {
	callsTotal      *prometheus.CounterVec
	callDuration    *prometheus.HistogramVec
	resolveFailures *prometheus.CounterVec
	streamChunks    *prometheus.CounterVec
}

// NewCallMetrics creates and registers call metrics with the provided registry.
func NewCallMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CallMetrics {
	cm := &CallMetrics{
		callsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "calls_total",
				Help:      "Total number of intercepted client calls",
			},
			[]string{"api", "outcome"},
		),

		callDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "call_duration_seconds",
				Help:      "Duration of intercepted client calls in seconds",
				Buckets:   cfg.CallDurationBuckets,
			},
			[]string{"api"},
		),

		resolveFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "resolve_failures_total",
				Help:      "Calls whose request arguments could not be captured for logging",
			},
			[]string{"api"},
		),

		streamChunks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "stream_chunks_total",
				Help:      "Text deltas observed on streaming calls",
			},
			[]string{"api"},
		),
	}

	registry.MustRegister(
		cm.callsTotal,
		cm.callDuration,
		cm.resolveFailures,
		cm.streamChunks,
	)

	return cm
}

// RecordCall records one completed call.
func (cm *CallMetrics) RecordCall(api, outcome string, duration time.Duration) {
	cm.callsTotal.WithLabelValues(api, outcome).Inc()
	cm.callDuration.WithLabelValues(api).Observe(duration.Seconds())
}
