// Package openai logs calls made through github.com/sashabaranov/go-openai.
//
// Wrap a client once and use the wrapper in its place:
//
//	client := openai.Wrap(ic, goopenai.NewClient(token))
//	resp, err := client.CreateChatCompletion(ctx, req)
//
// Chat completions, legacy completions and embeddings are recorded as
// POST /chat/completions, /completions and /embeddings with version v1 and
// the request as body. Streaming chat completions record a "started"
// envelope when the stream opens and a "completed" envelope carrying the
// concatenated choices[*].delta.content text when it ends.
package openai
