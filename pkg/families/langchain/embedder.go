package langchain

import (
	"context"

	"github.com/tmc/langchaingo/embeddings"

	"osmosis-ai/osmosis-go/pkg/config"
	"osmosis-ai/osmosis-go/pkg/envelope"
	"osmosis-ai/osmosis-go/pkg/intercept"
)

// Embedder is an embeddings.Embedder whose calls are logged.
type Embedder struct {
	inner embeddings.Embedder
	ic    *intercept.Interceptor
}

var _ embeddings.Embedder = (*Embedder)(nil)

// WrapEmbedder returns a logging embedder around e. Wrapping an embedder
// returned by WrapEmbedder returns it unchanged.
func WrapEmbedder(ic *intercept.Interceptor, e embeddings.Embedder) embeddings.Embedder {
	if w, ok := e.(*Embedder); ok {
		return w
	}
	return &Embedder{inner: e, ic: ic}
}

// Unwrap returns the wrapped embedder.
func (e *Embedder) Unwrap() embeddings.Embedder {
	return e.inner
}

// EmbedDocuments implements embeddings.Embedder.
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	resolve := func() (*envelope.Query, error) {
		return newQuery(PathEmbedDocuments, map[string]any{"texts": texts}), nil
	}
	return intercept.Do(ctx, e.ic, config.APILangChain, resolve, func(ctx context.Context) ([][]float32, error) {
		return e.inner.EmbedDocuments(ctx, texts)
	})
}

// EmbedQuery implements embeddings.Embedder.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	resolve := func() (*envelope.Query, error) {
		return newQuery(PathEmbedQuery, map[string]any{"text": text}), nil
	}
	return intercept.Do(ctx, e.ic, config.APILangChain, resolve, func(ctx context.Context) ([]float32, error) {
		return e.inner.EmbedQuery(ctx, text)
	})
}
