// Package intercept is the logging core shared by every client family
// wrapper.
//
// A wrapper describes each outbound call with a Resolver and runs it through
// the Interceptor. The request phase prints a console record before the call
// is made; the response phase sends one envelope with the outcome. Logging
// never changes what the caller sees: results and errors are returned as the
// wrapped client produced them, resolver failures only skip logging, and
// envelopes are handed to the transport sink without waiting for delivery.
//
//	resp, err := intercept.Do(ctx, ic, "openai", resolve, func(ctx context.Context) (Resp, error) {
//		return client.Create(ctx, req)
//	})
//
// Streaming calls use BeginStream, which sends a "started" envelope when the
// stream opens and a "completed" envelope with the accumulated text when it
// ends, however it ends.
package intercept
