// Package config provides configuration management for the Osmosis interceptor.
//
// This package loads, validates and holds the settings that decide which
// wrapped calls are logged and where the records go. It provides a type-safe
// configuration with sensible defaults and a sparse update type for runtime
// changes.
//
// # Configuration Loading
//
// Configuration can be loaded in three ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("osmosis.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("osmosis.yaml")
//
//  3. From defaults and environment variables only:
//     cfg, err := config.LoadFromEnv()
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention OSMOSIS_SECTION_FIELD:
//
//   - OSMOSIS_LOG_DESTINATION overrides log_destination
//   - OSMOSIS_CLOUD_API_KEY overrides cloud_api_key
//   - OSMOSIS_ENABLED_APIS merges per-family toggles ("openai=true,langchain=false")
//   - OSMOSIS_CLOUD_BASE_URL overrides cloud.base_url
//   - OSMOSIS_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Merging
//
// Runtime changes are expressed as a Partial. Applying a Partial overwrites
// each top-level field it sets, except enabled_apis which is merged key by
// key: families not named in the update keep their previous value.
//
//	prev, next, err := handle.Merge(config.Partial{
//	    EnabledAPIs: map[string]bool{"anthropic": false},
//	})
//
// A Handle owns the live configuration. There is no package-level singleton;
// the embedding application decides the handle's lifetime.
//
// # Example Configuration
//
//	enabled: true
//	log_destination: both
//	cloud_api_key: "osm_..."
//	enabled_apis:
//	  openai: true
//	  anthropic: false
//
//	cloud:
//	  base_url: "https://osmosis.gulp.dev"
//	  timeout: 10s
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "text"
//
// # Hot Reload
//
// Watcher re-reads the file on change (debounced) and passes the parsed
// Partial to a callback, typically the dispatcher's Configure.
package config
