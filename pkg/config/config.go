package config

import (
	"maps"
	"time"
)

// Destination selects which sinks receive log records.
type Destination string

const (
	// DestinationConsole prints request records locally.
	DestinationConsole Destination = "console"
	// DestinationCloud posts envelopes to the ingest endpoint.
	DestinationCloud Destination = "cloud"
	// DestinationBoth does both.
	DestinationBoth Destination = "both"
)

// Console reports whether d includes the console sink.
func (d Destination) Console() bool {
	return d == DestinationConsole || d == DestinationBoth
}

// Cloud reports whether d includes the cloud sink.
func (d Destination) Cloud() bool {
	return d == DestinationCloud || d == DestinationBoth
}

// Config is the complete interceptor configuration.
type Config struct {
	// Enabled gates all logging. When false every wrapped call passes through.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// LogDestination selects the sinks.
	// Options: "console", "cloud", "both"
	// Default: "console"
	LogDestination Destination `yaml:"log_destination"`

	// CloudAPIKey authenticates envelopes sent to the ingest endpoint.
	CloudAPIKey string `yaml:"cloud_api_key"`

	// EnabledAPIs toggles logging per client family.
	// Default: openai, anthropic and langchain enabled
	EnabledAPIs map[string]bool `yaml:"enabled_apis"`

	// Cloud configures the ingest transport.
	Cloud CloudConfig `yaml:"cloud"`

	// Telemetry configures the interceptor's own logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// CloudConfig contains ingest endpoint settings.
type CloudConfig struct {
	// BaseURL is the ingest service root; envelopes go to <BaseURL>/ingest.
	// Default: "https://osmosis.gulp.dev"
	BaseURL string `yaml:"base_url"`

	// Timeout bounds each background POST.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// TelemetryConfig contains logging and metrics configuration.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains diagnostic logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	AddSource bool `yaml:"add_source"`

	// RedactSecrets masks API keys and bearer tokens in log fields.
	// Default: true
	RedactSecrets bool `yaml:"redact_secrets"`

	// File optionally writes diagnostics to a rotating file instead of stderr.
	File FileConfig `yaml:"file"`
}

// FileConfig configures rotating file output.
type FileConfig struct {
	// Path is the log file path. Empty disables file output.
	Path string `yaml:"path"`

	// MaxSizeMB is the size at which the file is rotated.
	// Default: 10
	MaxSizeMB int `yaml:"max_size_mb"`

	// MaxBackups is the number of rotated files kept.
	// Default: 3
	MaxBackups int `yaml:"max_backups"`

	// MaxAgeDays removes rotated files older than this many days (0 keeps all).
	MaxAgeDays int `yaml:"max_age_days"`

	// Compress gzips rotated files.
	Compress bool `yaml:"compress"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are recorded.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix.
	// Default: "osmosis"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "interceptor"
	Subsystem string `yaml:"subsystem"`

	// CallDurationBuckets defines histogram buckets for wrapped call duration (seconds).
	// Default: [0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60]
	CallDurationBuckets []float64 `yaml:"call_duration_buckets"`

	// IngestDurationBuckets defines histogram buckets for ingest POST duration (seconds).
	// Default: [0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10]
	IngestDurationBuckets []float64 `yaml:"ingest_duration_buckets"`
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	out := c
	out.EnabledAPIs = maps.Clone(c.EnabledAPIs)
	if out.EnabledAPIs == nil {
		out.EnabledAPIs = make(map[string]bool)
	}
	out.Telemetry.Metrics.CallDurationBuckets = append([]float64(nil), c.Telemetry.Metrics.CallDurationBuckets...)
	out.Telemetry.Metrics.IngestDurationBuckets = append([]float64(nil), c.Telemetry.Metrics.IngestDurationBuckets...)
	return out
}

// APIEnabled reports whether logging is enabled for the given family.
func (c *Config) APIEnabled(api string) bool {
	return c.EnabledAPIs[api]
}

// Partial is a sparse configuration update. Nil fields are left unchanged.
//
// Top-level fields overwrite the current value. EnabledAPIs is merged key by
// key so families missing from the update keep their previous setting.
type Partial struct {
	Enabled        *bool            `yaml:"enabled"`
	LogDestination *Destination     `yaml:"log_destination"`
	CloudAPIKey    *string          `yaml:"cloud_api_key"`
	EnabledAPIs    map[string]bool  `yaml:"enabled_apis"`
	Cloud          *CloudConfig     `yaml:"cloud"`
	Telemetry      *TelemetryConfig `yaml:"telemetry"`
}

// Apply returns a copy of c with p merged in.
func (c Config) Apply(p Partial) Config {
	out := c.Clone()
	if p.Enabled != nil {
		out.Enabled = *p.Enabled
	}
	if p.LogDestination != nil {
		out.LogDestination = *p.LogDestination
	}
	if p.CloudAPIKey != nil {
		out.CloudAPIKey = *p.CloudAPIKey
	}
	for api, on := range p.EnabledAPIs {
		out.EnabledAPIs[api] = on
	}
	if p.Cloud != nil {
		out.Cloud = *p.Cloud
	}
	if p.Telemetry != nil {
		out.Telemetry = *p.Telemetry
	}
	return out
}

// Empty reports whether p changes nothing.
func (p Partial) Empty() bool {
	return p.Enabled == nil && p.LogDestination == nil && p.CloudAPIKey == nil &&
		len(p.EnabledAPIs) == 0 && p.Cloud == nil && p.Telemetry == nil
}

// Bool returns a pointer to v, for building Partial values.
func Bool(v bool) *bool { return &v }

// String returns a pointer to v, for building Partial values.
func String(v string) *string { return &v }

// Dest returns a pointer to d, for building Partial values.
func Dest(d Destination) *Destination { return &d }
