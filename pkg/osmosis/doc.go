// Package osmosis is the entry point for embedding the OSMOSIS-AI
// interceptor in an application.
//
// # Usage
//
//	o, err := osmosis.New(ctx, osmosis.Options{})
//	if err != nil {
//	    return err
//	}
//	defer o.Close(ctx)
//
//	// Mirror calls to the cloud as well as the console.
//	if err := o.InitCloud(ctx, os.Getenv("OSMOSIS_CLOUD_API_KEY")); err != nil {
//	    return err
//	}
//
//	client := o.WrapOpenAI(goopenai.NewClient(token))
//	resp, err := client.CreateChatCompletion(ctx, req)
//
// Wrapped clients return exactly what the underlying client returns. Records
// are printed to the console before the call runs, and envelopes are posted
// to the ingest endpoint in the background after it returns. Logging
// failures are reported as warnings on the diagnostics logger and never
// reach the caller.
//
// # Configuration
//
// Configure merges partial updates at runtime, and WatchConfig applies a
// YAML file as it changes:
//
//	_ = o.Configure(ctx, config.Partial{
//	    EnabledAPIs: map[string]bool{config.APILangChain: false},
//	})
//
// # Families
//
// Built-in wrappers cover github.com/sashabaranov/go-openai (WrapOpenAI),
// github.com/tmc/langchaingo (WrapLangChainModel, WrapLangChainEmbedder) and
// any SDK that accepts an *http.Client (WrapHTTPClient), which is how the
// Anthropic API is logged.
package osmosis
