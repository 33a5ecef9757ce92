// Package envelope defines the records exchanged between the interceptor,
// the sinks and the ingest endpoint.
//
// A Query describes an outbound client call, a Response carries its outcome
// and an Envelope bundles both with the owner hash, send date and Status.
// Envelopes travel as line-delimited JSON:
//
//	{"owner":"1a2b3c4d","date":1718000000,"query":{...},"response":{"data":{...}},"status":200}
//
// Status is numeric for regular calls and a phase string ("started",
// "completed") for the two events of a streaming call, which share a
// correlation id generated by NewCorrelationID.
package envelope
