package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// Values missing from the file keep their defaults. The result is validated.
// Environment variables are not consulted; use LoadConfigWithEnvOverrides
// for that.
func LoadConfig(path string) (*Config, error) {
	p, err := LoadPartial(path)
	if err != nil {
		return nil, err
	}

	cfg := Default().Apply(*p)
	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention OSMOSIS_SECTION_FIELD (e.g., OSMOSIS_CLOUD_BASE_URL) and always
// take precedence over the file.
//
// The loading sequence is:
// 1. Start from defaults
// 2. Merge the YAML file
// 3. Apply environment variable overrides
// 4. Validate the final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// LoadFromEnv returns the default configuration with environment overrides
// applied, for processes that do not ship a configuration file.
func LoadFromEnv() (*Config, error) {
	cfg := Default()
	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return &cfg, nil
}

// LoadPartial reads a YAML file as a sparse update. Sections absent from the
// file are nil in the result, so applying it leaves them unchanged. Sections
// that are present but incomplete are filled from defaults.
func LoadPartial(path string) (*Partial, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}
	p, err := ParsePartial(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}
	return p, nil
}

// ParsePartial decodes YAML into a Partial.
func ParsePartial(data []byte) (*Partial, error) {
	var present map[string]yaml.Node
	if err := yaml.Unmarshal(data, &present); err != nil {
		return nil, err
	}

	defaults := Default()
	p := Partial{
		Cloud:     &defaults.Cloud,
		Telemetry: &defaults.Telemetry,
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}

	if _, ok := present["cloud"]; !ok {
		p.Cloud = nil
	}
	if _, ok := present["telemetry"]; !ok {
		p.Telemetry = nil
	}
	return &p, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("OSMOSIS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Enabled = b
		}
	}
	if val := os.Getenv("OSMOSIS_LOG_DESTINATION"); val != "" {
		cfg.LogDestination = Destination(strings.ToLower(val))
	}
	if val := os.Getenv("OSMOSIS_CLOUD_API_KEY"); val != "" {
		cfg.CloudAPIKey = val
	}
	if val := os.Getenv("OSMOSIS_ENABLED_APIS"); val != "" {
		for api, on := range parseAPIToggles(val) {
			cfg.EnabledAPIs[api] = on
		}
	}

	// Cloud overrides
	if val := os.Getenv("OSMOSIS_CLOUD_BASE_URL"); val != "" {
		cfg.Cloud.BaseURL = val
	}
	if val := os.Getenv("OSMOSIS_CLOUD_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Cloud.Timeout = d
		}
	}

	// Telemetry overrides
	if val := os.Getenv("OSMOSIS_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("OSMOSIS_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("OSMOSIS_TELEMETRY_LOGGING_FILE_PATH"); val != "" {
		cfg.Telemetry.Logging.File.Path = val
		applyLoggingDefaults(&cfg.Telemetry.Logging)
	}
	if val := os.Getenv("OSMOSIS_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
}

// parseAPIToggles parses "openai=true,anthropic=false". A bare name means true.
func parseAPIToggles(val string) map[string]bool {
	out := make(map[string]bool)
	for _, item := range strings.Split(val, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, flag, found := strings.Cut(item, "=")
		name = strings.ToLower(strings.TrimSpace(name))
		if !found {
			out[name] = true
			continue
		}
		if b, err := strconv.ParseBool(strings.TrimSpace(flag)); err == nil {
			out[name] = b
		}
	}
	return out
}
