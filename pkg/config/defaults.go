package config

import "time"

// Default values for configuration fields.
const (
	DefaultEnabled        = true
	DefaultLogDestination = DestinationConsole

	// Cloud defaults
	DefaultCloudBaseURL = "https://osmosis.gulp.dev"
	DefaultCloudTimeout = 10 * time.Second

	// Logging defaults
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
	DefaultLogRedactSecrets = true
	DefaultLogFileMaxSizeMB = 10
	DefaultLogFileBackups   = 3

	// Metrics defaults
	DefaultMetricsEnabled   = true
	DefaultMetricsNamespace = "osmosis"
	DefaultMetricsSubsystem = "interceptor"
)

// Client family names known out of the box.
const (
	APIOpenAI    = "openai"
	APIAnthropic = "anthropic"
	APILangChain = "langchain"
)

// DefaultEnabledAPIs returns the per-family toggles applied at startup.
func DefaultEnabledAPIs() map[string]bool {
	return map[string]bool{
		APIOpenAI:    true,
		APIAnthropic: true,
		APILangChain: true,
	}
}

// DefaultCallDurationBuckets covers wrapped LLM calls from 50ms to a minute.
func DefaultCallDurationBuckets() []float64 {
	return []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60}
}

// DefaultIngestDurationBuckets covers ingest POSTs from 10ms to 10s.
func DefaultIngestDurationBuckets() []float64 {
	return []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
}

// Default returns a fully populated default configuration.
func Default() Config {
	cfg := Config{
		Enabled:        DefaultEnabled,
		LogDestination: DefaultLogDestination,
		EnabledAPIs:    DefaultEnabledAPIs(),
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{RedactSecrets: DefaultLogRedactSecrets},
			Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
		},
	}
	ApplyDefaults(&cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults. Booleans are
// left alone because false is a meaningful setting; use Default to get a
// configuration with boolean defaults applied.
func ApplyDefaults(cfg *Config) {
	if cfg.LogDestination == "" {
		cfg.LogDestination = DefaultLogDestination
	}
	if cfg.EnabledAPIs == nil {
		cfg.EnabledAPIs = DefaultEnabledAPIs()
	}

	applyCloudDefaults(&cfg.Cloud)
	applyLoggingDefaults(&cfg.Telemetry.Logging)
	applyMetricsDefaults(&cfg.Telemetry.Metrics)
}

func applyCloudDefaults(cfg *CloudConfig) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultCloudBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultCloudTimeout
	}
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = DefaultLogLevel
	}
	if cfg.Format == "" {
		cfg.Format = DefaultLogFormat
	}
	if cfg.File.Path != "" {
		if cfg.File.MaxSizeMB == 0 {
			cfg.File.MaxSizeMB = DefaultLogFileMaxSizeMB
		}
		if cfg.File.MaxBackups == 0 {
			cfg.File.MaxBackups = DefaultLogFileBackups
		}
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.CallDurationBuckets) == 0 {
		cfg.CallDurationBuckets = DefaultCallDurationBuckets()
	}
	if len(cfg.IngestDurationBuckets) == 0 {
		cfg.IngestDurationBuckets = DefaultIngestDurationBuckets()
	}
}
