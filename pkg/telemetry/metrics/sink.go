package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"osmosis-ai/osmosis-go/pkg/config"
)

// Envelope delivery results.
const (
	// ResultSent means the ingest endpoint answered 200.
	ResultSent = "sent"
	// ResultRejected means the endpoint answered with another status.
	ResultRejected = "rejected"
	// ResultFailed means serialization or the network failed.
	ResultFailed = "failed"
	// ResultSkipped means the sender was not ready to send.
	ResultSkipped = "skipped"
)

// SinkMetrics tracks console and cloud sink activity.
type SinkMetrics struct {
	consoleRecords *prometheus.CounterVec
	envelopes      *prometheus.CounterVec
	ingestDuration prometheus.Histogram
	inflight       prometheus.Gauge
}

// NewSinkMetrics creates and registers sink metrics with the provided registry.
func NewSinkMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *SinkMetrics {
	sm := &SinkMetrics{
		consoleRecords: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "console_records_total",
				Help:      "Request records printed by the console sink",
			},
			[]string{"api"},
		),

		envelopes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "envelopes_total",
				Help:      "Envelopes handled by the cloud sink by delivery result",
			},
			[]string{"result"},
		),

		ingestDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "ingest_duration_seconds",
				Help:      "Duration of ingest POST requests in seconds",
				Buckets:   cfg.IngestDurationBuckets,
			},
		),

		inflight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "ingest_inflight",
				Help:      "Ingest POST requests currently in flight",
			},
		),
	}

	registry.MustRegister(
		sm.consoleRecords,
		sm.envelopes,
		sm.ingestDuration,
		sm.inflight,
	)

	return sm
}
