package langchain

import (
	"context"
	"net/http"

	"github.com/tmc/langchaingo/llms"

	"osmosis-ai/osmosis-go/pkg/config"
	"osmosis-ai/osmosis-go/pkg/dispatch"
	"osmosis-ai/osmosis-go/pkg/envelope"
	"osmosis-ai/osmosis-go/pkg/intercept"
)

// Version is recorded on every LangChain query.
const Version = "langchaingo"

// Paths recorded on queries, one per intercepted method.
const (
	PathGenerateContent = "/llms/generate_content"
	PathCall            = "/llms/call"
	PathEmbedDocuments  = "/embeddings/documents"
	PathEmbedQuery      = "/embeddings/query"
)

// Model is an llms.Model whose calls are logged.
type Model struct {
	inner llms.Model
	ic    *intercept.Interceptor
}

var _ llms.Model = (*Model)(nil)

// WrapModel returns a logging model around m. Wrapping a model returned by
// WrapModel returns it unchanged.
func WrapModel(ic *intercept.Interceptor, m llms.Model) llms.Model {
	if w, ok := m.(*Model); ok {
		return w
	}
	return &Model{inner: m, ic: ic}
}

// Unwrap returns the wrapped model.
func (m *Model) Unwrap() llms.Model {
	return m.inner
}

// Provider makes the langchain family available to a dispatcher.
func Provider() dispatch.Provider {
	return dispatch.NewProvider(config.APILangChain, nil)
}

// GenerateContent implements llms.Model. When the options carry a streaming
// func, chunks are accumulated and forwarded unchanged to it, and the call is
// recorded as a started/completed pair.
func (m *Model) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	resolve := func() (*envelope.Query, error) {
		body := requestBody(applyOptions(options))
		body["messages"] = messages
		return newQuery(PathGenerateContent, body), nil
	}

	if streaming(options) {
		return stream(ctx, m.ic, resolve, options, func(ctx context.Context, opts []llms.CallOption) (*llms.ContentResponse, error) {
			return m.inner.GenerateContent(ctx, messages, opts...)
		})
	}
	return intercept.Do(ctx, m.ic, config.APILangChain, resolve, func(ctx context.Context) (*llms.ContentResponse, error) {
		return m.inner.GenerateContent(ctx, messages, options...)
	})
}

// Call implements llms.Model.
func (m *Model) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	resolve := func() (*envelope.Query, error) {
		body := requestBody(applyOptions(options))
		body["prompt"] = prompt
		return newQuery(PathCall, body), nil
	}

	if streaming(options) {
		return stream(ctx, m.ic, resolve, options, func(ctx context.Context, opts []llms.CallOption) (string, error) {
			return m.inner.Call(ctx, prompt, opts...)
		})
	}
	return intercept.Do(ctx, m.ic, config.APILangChain, resolve, func(ctx context.Context) (string, error) {
		return m.inner.Call(ctx, prompt, options...)
	})
}

// stream runs call with a streaming func chained in front of the caller's.
func stream[T any](ctx context.Context, ic *intercept.Interceptor, resolve intercept.Resolver, options []llms.CallOption,
	call func(context.Context, []llms.CallOption) (T, error)) (T, error) {
	userFn := applyOptions(options).StreamingFunc

	rec := ic.BeginStream(ctx, config.APILangChain, resolve)
	rec.Start()

	chained := append(options[:len(options):len(options)], llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
		rec.Append(string(chunk))
		return userFn(ctx, chunk)
	}))

	out, err := call(ctx, chained)
	if err != nil && rec.Content() == "" {
		rec.Fail(err)
		return out, err
	}
	rec.Finish()
	return out, err
}

func applyOptions(options []llms.CallOption) llms.CallOptions {
	var opts llms.CallOptions
	for _, opt := range options {
		if opt != nil {
			opt(&opts)
		}
	}
	return opts
}

func streaming(options []llms.CallOption) bool {
	return applyOptions(options).StreamingFunc != nil
}

// requestBody keeps the serializable call options.
func requestBody(opts llms.CallOptions) map[string]any {
	body := map[string]any{}
	if opts.Model != "" {
		body["model"] = opts.Model
	}
	if opts.MaxTokens > 0 {
		body["max_tokens"] = opts.MaxTokens
	}
	if opts.Temperature != 0 {
		body["temperature"] = opts.Temperature
	}
	if opts.TopP != 0 {
		body["top_p"] = opts.TopP
	}
	if opts.TopK != 0 {
		body["top_k"] = opts.TopK
	}
	if len(opts.StopWords) > 0 {
		body["stop"] = opts.StopWords
	}
	if opts.StreamingFunc != nil {
		body["stream"] = true
	}
	return body
}

func newQuery(path string, body any) *envelope.Query {
	return &envelope.Query{
		API:     config.APILangChain,
		Version: Version,
		Path:    path,
		Method:  http.MethodPost,
		Body:    body,
	}
}
