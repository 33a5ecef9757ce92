package openai

import (
	"context"
	"net/http"

	goopenai "github.com/sashabaranov/go-openai"

	"osmosis-ai/osmosis-go/pkg/config"
	"osmosis-ai/osmosis-go/pkg/dispatch"
	"osmosis-ai/osmosis-go/pkg/envelope"
	"osmosis-ai/osmosis-go/pkg/intercept"
)

// Version is recorded on every OpenAI query.
const Version = "v1"

// Endpoint paths recorded on queries.
const (
	PathChatCompletions = "/chat/completions"
	PathCompletions     = "/completions"
	PathEmbeddings      = "/embeddings"
)

// API is the subset of *goopenai.Client the wrapper intercepts.
type API interface {
	CreateChatCompletion(ctx context.Context, req goopenai.ChatCompletionRequest) (goopenai.ChatCompletionResponse, error)
	CreateChatCompletionStream(ctx context.Context, req goopenai.ChatCompletionRequest) (*goopenai.ChatCompletionStream, error)
	CreateCompletion(ctx context.Context, req goopenai.CompletionRequest) (goopenai.CompletionResponse, error)
	CreateEmbeddings(ctx context.Context, conv goopenai.EmbeddingRequestConverter) (goopenai.EmbeddingResponse, error)
}

// Client is an OpenAI client whose calls are logged. Results and errors are
// those of the wrapped client, unchanged.
type Client struct {
	api API
	ic  *intercept.Interceptor
}

// Wrap returns a logging client around api.
func Wrap(ic *intercept.Interceptor, api API) *Client {
	return &Client{api: api, ic: ic}
}

// NewClient builds a go-openai client for token and baseURL (empty keeps the
// library default) and wraps it.
func NewClient(ic *intercept.Interceptor, token, baseURL string, httpClient *http.Client) *Client {
	cfg := goopenai.DefaultConfig(token)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return Wrap(ic, goopenai.NewClientWithConfig(cfg))
}

// Unwrap returns the wrapped client.
func (c *Client) Unwrap() API {
	return c.api
}

// Provider makes the openai family available to a dispatcher. The library is
// linked into the binary, so loading always succeeds.
func Provider() dispatch.Provider {
	return dispatch.NewProvider(config.APIOpenAI, nil)
}

func query(path string, body any) intercept.Resolver {
	return func() (*envelope.Query, error) {
		return &envelope.Query{
			API:     config.APIOpenAI,
			Version: Version,
			Path:    path,
			Method:  http.MethodPost,
			Body:    body,
		}, nil
	}
}

// CreateChatCompletion calls the chat completions endpoint.
func (c *Client) CreateChatCompletion(ctx context.Context, req goopenai.ChatCompletionRequest) (goopenai.ChatCompletionResponse, error) {
	return intercept.Do(ctx, c.ic, config.APIOpenAI, query(PathChatCompletions, req),
		func(ctx context.Context) (goopenai.ChatCompletionResponse, error) {
			return c.api.CreateChatCompletion(ctx, req)
		})
}

// CreateCompletion calls the legacy completions endpoint.
func (c *Client) CreateCompletion(ctx context.Context, req goopenai.CompletionRequest) (goopenai.CompletionResponse, error) {
	return intercept.Do(ctx, c.ic, config.APIOpenAI, query(PathCompletions, req),
		func(ctx context.Context) (goopenai.CompletionResponse, error) {
			return c.api.CreateCompletion(ctx, req)
		})
}

// CreateEmbeddings calls the embeddings endpoint.
func (c *Client) CreateEmbeddings(ctx context.Context, conv goopenai.EmbeddingRequestConverter) (goopenai.EmbeddingResponse, error) {
	resolve := func() (*envelope.Query, error) {
		return query(PathEmbeddings, conv.Convert())()
	}
	return intercept.Do(ctx, c.ic, config.APIOpenAI, resolve,
		func(ctx context.Context) (goopenai.EmbeddingResponse, error) {
			return c.api.CreateEmbeddings(ctx, conv)
		})
}

// CreateChatCompletionStream opens a streaming chat completion. The returned
// stream yields the wrapped stream's chunks unchanged and records the
// concatenated delta text when it ends.
func (c *Client) CreateChatCompletionStream(ctx context.Context, req goopenai.ChatCompletionRequest) (*ChatCompletionStream, error) {
	logged := req
	logged.Stream = true
	rec := c.ic.BeginStream(ctx, config.APIOpenAI, query(PathChatCompletions, logged))

	inner, err := c.api.CreateChatCompletionStream(ctx, req)
	if err != nil {
		rec.Fail(err)
		return nil, err
	}
	rec.Start()
	return &ChatCompletionStream{inner: inner, rec: rec}, nil
}
