package config

import (
	"fmt"
	"net/url"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "cloud.base_url").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}

// Validate checks the configuration and returns a ValidationError listing
// every failed rule, or nil.
func Validate(cfg *Config) error {
	var errs []FieldError

	switch cfg.LogDestination {
	case DestinationConsole, DestinationCloud, DestinationBoth:
	default:
		errs = append(errs, FieldError{
			Field:   "log_destination",
			Message: fmt.Sprintf("must be one of console, cloud, both (got %q)", cfg.LogDestination),
		})
	}

	for api := range cfg.EnabledAPIs {
		if strings.TrimSpace(api) == "" {
			errs = append(errs, FieldError{Field: "enabled_apis", Message: "family name cannot be empty"})
		}
	}

	errs = append(errs, validateCloud(&cfg.Cloud)...)
	errs = append(errs, validateLogging(&cfg.Telemetry.Logging)...)
	errs = append(errs, validateMetrics(&cfg.Telemetry.Metrics)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateCloud(cfg *CloudConfig) []FieldError {
	var errs []FieldError

	u, err := url.Parse(cfg.BaseURL)
	switch {
	case cfg.BaseURL == "":
		errs = append(errs, FieldError{Field: "cloud.base_url", Message: "cannot be empty"})
	case err != nil:
		errs = append(errs, FieldError{Field: "cloud.base_url", Message: fmt.Sprintf("invalid URL: %v", err)})
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, FieldError{Field: "cloud.base_url", Message: "scheme must be http or https"})
	case u.Host == "":
		errs = append(errs, FieldError{Field: "cloud.base_url", Message: "host cannot be empty"})
	}

	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{Field: "cloud.timeout", Message: "cannot be negative"})
	}
	return errs
}

func validateLogging(cfg *LoggingConfig) []FieldError {
	var errs []FieldError

	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, FieldError{Field: "telemetry.logging.level", Message: fmt.Sprintf("unknown level %q", cfg.Level)})
	}

	switch strings.ToLower(cfg.Format) {
	case "json", "text", "console":
	default:
		errs = append(errs, FieldError{Field: "telemetry.logging.format", Message: fmt.Sprintf("unknown format %q", cfg.Format)})
	}

	if cfg.File.MaxSizeMB < 0 {
		errs = append(errs, FieldError{Field: "telemetry.logging.file.max_size_mb", Message: "cannot be negative"})
	}
	if cfg.File.MaxBackups < 0 {
		errs = append(errs, FieldError{Field: "telemetry.logging.file.max_backups", Message: "cannot be negative"})
	}
	if cfg.File.MaxAgeDays < 0 {
		errs = append(errs, FieldError{Field: "telemetry.logging.file.max_age_days", Message: "cannot be negative"})
	}
	return errs
}

func validateMetrics(cfg *MetricsConfig) []FieldError {
	var errs []FieldError
	if err := ascending(cfg.CallDurationBuckets); err != "" {
		errs = append(errs, FieldError{Field: "telemetry.metrics.call_duration_buckets", Message: err})
	}
	if err := ascending(cfg.IngestDurationBuckets); err != "" {
		errs = append(errs, FieldError{Field: "telemetry.metrics.ingest_duration_buckets", Message: err})
	}
	return errs
}

func ascending(buckets []float64) string {
	for i := 1; i < len(buckets); i++ {
		if buckets[i] <= buckets[i-1] {
			return "buckets must be strictly increasing"
		}
	}
	return ""
}
