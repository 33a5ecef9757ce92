// Package dispatch connects configuration, client families and sinks.
//
// The Dispatcher answers, for every intercepted call, which sinks want it
// (Route), and forwards request records to the console sink and envelopes to
// the cloud sender. Configuration changes go through Configure, which merges
// a config.Partial and applies its side effects:
//
//   - cloud_api_key starts cloud initialization without waiting for it
//   - log_destination cloud or both enables the cloud sender; console disables it
//   - enabled_apis loads families that became enabled
//
// InitCloud is the explicit path: it waits for the sender, force-enables it
// and upgrades a console destination to both.
//
// Client families are made available by registering a Provider. The
// registry loads each enabled family once; a family whose Load fails is
// marked unavailable and its calls pass through unlogged.
package dispatch
