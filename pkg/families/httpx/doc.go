// Package httpx logs LLM API calls at the HTTP layer, for SDKs without a
// dedicated wrapper (Anthropic, or any client that accepts an *http.Client).
//
//	client := httpx.WrapClient(ic, &http.Client{})
//
// The family is chosen from the request host (api.openai.com, api.anthropic.com,
// or WithHosts mappings), falling back to WithDefaultAPI. A leading /vN path
// segment becomes the query version, overridden by the anthropic-version
// header, and an X-Osmosis-Correlation-Id header becomes the correlation id.
//
// Non-streaming responses are recorded with the upstream status: the body
// as data for 2xx, as the error otherwise. Transport errors are recorded as
// 500 and returned unchanged. Event streams are passed through as they
// arrive while OpenAI (choices.0.delta.content) and Anthropic (delta.text)
// text deltas are collected for the "completed" envelope.
package httpx
