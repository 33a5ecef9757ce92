// Package langchain logs calls made through github.com/tmc/langchaingo
// models and embedders.
//
// WrapModel intercepts GenerateContent and Call; WrapEmbedder intercepts
// EmbedDocuments and EmbedQuery. Both are idempotent.
//
// A call whose options include llms.WithStreamingFunc is recorded as a
// stream: a "started" envelope before the call and a "completed" envelope
// with the concatenated chunks after it. Chunks reach the caller's
// streaming func unchanged, and an error it returns stops generation as
// usual.
package langchain
