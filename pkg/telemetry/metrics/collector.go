package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"osmosis-ai/osmosis-go/pkg/config"
)

// Collector owns the interceptor's Prometheus metrics.
//
// A nil *Collector is valid and records nothing, so components can be built
// without metrics in tests.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	callMetrics *CallMetrics
	sinkMetrics *SinkMetrics
}

// NewCollector creates a metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a new registry is created.
//
// Example:
//
//	cfg := config.Default().Telemetry.Metrics
//	collector := metrics.NewCollector(&cfg, nil)
//	http.Handle("/metrics", collector.Handler())
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.CallDurationBuckets) == 0 {
		cfg.CallDurationBuckets = config.DefaultCallDurationBuckets()
	}
	if len(cfg.IngestDurationBuckets) == 0 {
		cfg.IngestDurationBuckets = config.DefaultIngestDurationBuckets()
	}

	return &Collector{
		config:      cfg,
		registry:    registry,
		callMetrics: NewCallMetrics(cfg, registry),
		sinkMetrics: NewSinkMetrics(cfg, registry),
	}
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordCall records a completed wrapped call.
//
// Parameters:
//   - api: client family (e.g., "openai")
//   - outcome: OutcomeSuccess or OutcomeError
//   - duration: time spent in the wrapped client
func (c *Collector) RecordCall(api, outcome string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.callMetrics.RecordCall(api, outcome, duration)
}

// RecordResolveFailure counts calls whose arguments could not be captured.
func (c *Collector) RecordResolveFailure(api string) {
	if !c.enabled() {
		return
	}
	c.callMetrics.resolveFailures.WithLabelValues(api).Inc()
}

// RecordStreamChunk counts one text delta observed on a streaming call.
func (c *Collector) RecordStreamChunk(api string) {
	if !c.enabled() {
		return
	}
	c.callMetrics.streamChunks.WithLabelValues(api).Inc()
}

// RecordConsoleRecord counts one request record printed by the console sink.
func (c *Collector) RecordConsoleRecord(api string) {
	if !c.enabled() {
		return
	}
	c.sinkMetrics.consoleRecords.WithLabelValues(api).Inc()
}

// RecordEnvelope counts one envelope by delivery result
// (ResultSent, ResultRejected, ResultFailed, ResultSkipped).
func (c *Collector) RecordEnvelope(result string) {
	if !c.enabled() {
		return
	}
	c.sinkMetrics.envelopes.WithLabelValues(result).Inc()
}

// ObserveIngest records the duration of one ingest POST.
func (c *Collector) ObserveIngest(duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.sinkMetrics.ingestDuration.Observe(duration.Seconds())
}

// SetInflight sets the number of ingest posts in flight.
func (c *Collector) SetInflight(n int) {
	if !c.enabled() {
		return
	}
	c.sinkMetrics.inflight.Set(float64(n))
}

// Registry returns the Prometheus registry backing the collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
