package langchain

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/tmc/langchaingo/llms"

	"osmosis-ai/osmosis-go/internal/testutil"
	"osmosis-ai/osmosis-go/pkg/envelope"
	"osmosis-ai/osmosis-go/pkg/intercept"
)

// fakeModel answers with a fixed text, streaming it in chunks when asked.
type fakeModel struct {
	chunks []string
	err    error
	calls  int
}

func (f *fakeModel) GenerateContent(ctx context.Context, _ []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.calls++
	var opts llms.CallOptions
	for _, opt := range options {
		opt(&opts)
	}
	if opts.StreamingFunc != nil {
		for _, c := range f.chunks {
			if err := opts.StreamingFunc(ctx, []byte(c)); err != nil {
				return nil, err
			}
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: strings.Join(f.chunks, "")}},
	}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	resp, err := f.GenerateContent(ctx, []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)}, options...)
	if err != nil {
		return "", err
	}
	return resp.Choices[0].Content, nil
}

func messages() []llms.MessageContent {
	return []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, "Say hi")}
}

func TestGenerateContent(t *testing.T) {
	ic, rec := testutil.NewInterceptor(intercept.Route{Console: true, Cloud: true})
	inner := &fakeModel{chunks: []string{"hi"}}
	model := WrapModel(ic, inner)

	resp, err := model.GenerateContent(context.Background(), messages(), llms.WithModel("gpt-4o"), llms.WithMaxTokens(64))
	if err != nil {
		t.Fatalf("GenerateContent: %v", err)
	}
	if resp.Choices[0].Content != "hi" {
		t.Errorf("unexpected response %+v", resp)
	}

	console := rec.Console()
	if len(console) != 1 {
		t.Fatalf("expected one console record, got %d", len(console))
	}
	q := console[0]
	if q.API != "langchain" || q.Path != PathGenerateContent || q.Method != http.MethodPost {
		t.Errorf("unexpected query %+v", q)
	}
	body, _ := q.Body.(map[string]any)
	if body["model"] != "gpt-4o" || body["max_tokens"] != 64 || body["messages"] == nil {
		t.Errorf("expected options captured in body, got %v", body)
	}
	if _, ok := body["stream"]; ok {
		t.Error("expected no stream flag for a non-streaming call")
	}

	cloud := rec.Cloud()
	if len(cloud) != 1 || testutil.StatusCode(t, cloud[0].Status) != http.StatusOK {
		t.Fatalf("expected one 200 envelope, got %+v", cloud)
	}
	if cloud[0].Response.Data != resp {
		t.Error("expected the response itself as data")
	}
}

func TestGenerateContent_ErrorReturnedUnchanged(t *testing.T) {
	ic, rec := testutil.NewInterceptor(intercept.Route{Cloud: true})
	boom := errors.New("model overloaded")
	model := WrapModel(ic, &fakeModel{err: boom})

	if _, err := model.GenerateContent(context.Background(), messages()); err != boom {
		t.Fatalf("expected identical error, got %v", err)
	}
	cloud := rec.Cloud()
	if len(cloud) != 1 || cloud[0].Response.Error != "model overloaded" {
		t.Fatalf("expected one failure envelope, got %+v", cloud)
	}
	if code := testutil.StatusCode(t, cloud[0].Status); code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", code)
	}
}

func TestGenerateContent_Streaming(t *testing.T) {
	ic, rec := testutil.NewInterceptor(intercept.Route{Console: true, Cloud: true})
	model := WrapModel(ic, &fakeModel{chunks: []string{"Hello", " world"}})

	var forwarded []string
	_, err := model.GenerateContent(context.Background(), messages(), llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
		forwarded = append(forwarded, string(chunk))
		return nil
	}))
	if err != nil {
		t.Fatalf("GenerateContent: %v", err)
	}

	if strings.Join(forwarded, "|") != "Hello| world" {
		t.Errorf("expected chunks forwarded unchanged, got %q", forwarded)
	}

	cloud := rec.Cloud()
	if len(cloud) != 2 {
		t.Fatalf("expected two envelopes, got %d", len(cloud))
	}
	if cloud[0].Status.Phase() != envelope.PhaseStarted || cloud[1].Status.Phase() != envelope.PhaseCompleted {
		t.Errorf("expected started then completed, got %v, %v", cloud[0].Status, cloud[1].Status)
	}
	if cloud[0].Query.CorrelationID != cloud[1].Query.CorrelationID {
		t.Error("expected shared correlation id")
	}
	data, _ := cloud[1].Response.Data.(map[string]any)
	if data["content"] != "Hello world" {
		t.Errorf("expected accumulated content, got %v", cloud[1].Response.Data)
	}
	body, _ := rec.Console()[0].Body.(map[string]any)
	if body["stream"] != true {
		t.Errorf("expected stream flag in body, got %v", body)
	}
}

func TestCall_StreamingFuncErrorStopsGeneration(t *testing.T) {
	ic, rec := testutil.NewInterceptor(intercept.Route{Cloud: true})
	inner := &fakeModel{chunks: []string{"one", "two", "three"}}
	model := WrapModel(ic, inner)
	stop := errors.New("enough")

	seen := 0
	_, err := model.Call(context.Background(), "count", llms.WithStreamingFunc(func(context.Context, []byte) error {
		seen++
		if seen == 2 {
			return stop
		}
		return nil
	}))
	if err != stop {
		t.Fatalf("expected streaming func error, got %v", err)
	}

	cloud := rec.Cloud()
	if len(cloud) != 2 {
		t.Fatalf("expected started and completed, got %d", len(cloud))
	}
	data, _ := cloud[1].Response.Data.(map[string]any)
	if data["content"] != "onetwo" {
		t.Errorf("expected partial content, got %v", cloud[1].Response.Data)
	}
}

func TestCall(t *testing.T) {
	ic, rec := testutil.NewInterceptor(intercept.Route{Cloud: true})
	model := WrapModel(ic, &fakeModel{chunks: []string{"pong"}})

	out, err := model.Call(context.Background(), "ping")
	if err != nil || out != "pong" {
		t.Fatalf("unexpected result %q, %v", out, err)
	}
	cloud := rec.Cloud()
	if len(cloud) != 1 || cloud[0].Query.Path != PathCall || cloud[0].Response.Data != "pong" {
		t.Fatalf("unexpected envelopes %+v", cloud)
	}
	body, _ := cloud[0].Query.Body.(map[string]any)
	if body["prompt"] != "ping" {
		t.Errorf("expected prompt in body, got %v", body)
	}
}

func TestWrapModel_Idempotent(t *testing.T) {
	ic, rec := testutil.NewInterceptor(intercept.Route{Cloud: true})
	inner := &fakeModel{chunks: []string{"x"}}

	once := WrapModel(ic, inner)
	twice := WrapModel(ic, once)
	if once != twice {
		t.Fatal("expected wrapping a wrapped model to return it unchanged")
	}

	if _, err := twice.Call(context.Background(), "x"); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if len(rec.Cloud()) != 1 || inner.calls != 1 {
		t.Errorf("expected one envelope and one inner call, got %d and %d", len(rec.Cloud()), inner.calls)
	}
	if once.(*Model).Unwrap() != inner {
		t.Error("expected Unwrap to return the original model")
	}
}

func TestInactiveRoute(t *testing.T) {
	ic, rec := testutil.NewInterceptor(intercept.Route{})
	model := WrapModel(ic, &fakeModel{chunks: []string{"a", "b"}})

	var got string
	_, err := model.GenerateContent(context.Background(), messages(), llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
		got += string(chunk)
		return nil
	}))
	if err != nil || got != "ab" {
		t.Fatalf("expected passthrough, got %q, %v", got, err)
	}
	if len(rec.Console())+len(rec.Cloud()) != 0 {
		t.Error("expected no records")
	}
}
