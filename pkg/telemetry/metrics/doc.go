// Package metrics provides Prometheus metrics for the Osmosis interceptor.
//
// # Metrics Categories
//
//   - Call metrics: intercepted calls by family and outcome, call duration,
//     argument capture failures and streamed deltas
//   - Sink metrics: console records, envelopes by delivery result, ingest
//     POST duration and posts in flight
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordCall("openai", metrics.OutcomeSuccess, 800*time.Millisecond)
//	collector.RecordEnvelope(metrics.ResultSent)
//
//	http.Handle("/metrics", collector.Handler())
//
// Metric names are prefixed with the configured namespace and subsystem,
// osmosis_interceptor_ by default.
package metrics
