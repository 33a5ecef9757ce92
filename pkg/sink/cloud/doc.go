// Package cloud implements the transport sink that posts envelopes to the
// Osmosis ingest endpoint.
//
// # Lifecycle
//
//	sender := cloud.NewSender(cloud.Options{BaseURL: cfg.Cloud.BaseURL})
//	<-sender.Init(ctx, cfg.CloudAPIKey) // owner hash computed in the background
//
//	id := sender.Send(query, envelope.Success(data), envelope.StatusOK)
//
//	// On shutdown
//	_ = sender.Flush(ctx)
//
// # Wire Format
//
// Each envelope is POSTed to <base>/ingest as one line of JSON with headers
// Content-Type: application/json, x-api-key and a fresh Idempotency-Key.
//
// # Failure Handling
//
// Nothing is retried and nothing reaches the caller. Serialization and
// network errors are logged as "Failed to prepare data for cloud logging";
// any status other than 200 is logged with the code.
package cloud
