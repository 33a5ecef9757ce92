// Package telemetry groups the interceptor's own observability.
//
// # Components
//
//   - logging: structured diagnostics (slog) with secret redaction and
//     optional rotating file output
//   - metrics: Prometheus counters and histograms for wrapped calls and the
//     cloud sink
//   - health: readiness checks for the cloud sender and client families
//
// None of these affect interception. A failing metrics registry or an
// unhealthy check never changes what a wrapped call returns.
//
// # Usage
//
// The osmosis package builds all three from config.TelemetryConfig:
//
//	o, err := osmosis.New(ctx, osmosis.Options{Config: cfg})
//	http.Handle("/metrics", o.MetricsHandler())
//	http.Handle("/health", o.HealthHandler())
package telemetry
