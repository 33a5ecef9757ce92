// Package logging provides the interceptor's structured diagnostic logger.
//
// # Overview
//
// The logging package wraps Go's log/slog package to provide:
//   - JSON or text output to stderr, a writer, or a rotating file
//   - Redaction of provider keys, Osmosis keys and bearer tokens
//   - Context fields for the client family and correlation id
//
// Diagnostics are separate from the records the interceptor produces:
// request records go to the console sink and envelopes to the ingest
// endpoint. This logger only reports problems such as failed posts.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:         "info",
//	    Format:        "text",
//	    RedactSecrets: true,
//	})
//
//	logger.Warn("Failed to prepare data for cloud logging",
//	    "api_key", "osm_live_123456", // logged as osm_***
//	    "error", err,
//	)
//
// # File Output
//
// Setting File.Path writes to a lumberjack-rotated file:
//
//	logging.New(logging.Config{File: config.FileConfig{Path: "osmosis.log", MaxSizeMB: 10}})
package logging
