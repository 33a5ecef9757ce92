package openai

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	goopenai "github.com/sashabaranov/go-openai"

	"osmosis-ai/osmosis-go/internal/testutil"
	"osmosis-ai/osmosis-go/pkg/envelope"
	"osmosis-ai/osmosis-go/pkg/intercept"
)

func newTestClient(t *testing.T, route intercept.Route) (*Client, *testutil.Recorder, *testutil.MockServer) {
	t.Helper()
	ms := testutil.NewMockServer()
	t.Cleanup(ms.Close)

	ic, rec := testutil.NewInterceptor(route)
	return NewClient(ic, "sk-test", ms.URL()+"/v1", ms.Client()), rec, ms
}

func chatRequest() goopenai.ChatCompletionRequest {
	return goopenai.ChatCompletionRequest{
		Model: "gpt-4o",
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: "Say hi"},
		},
	}
}

func TestCreateChatCompletion(t *testing.T) {
	client, rec, ms := newTestClient(t, intercept.Route{Console: true, Cloud: true})
	ms.SetResponse("/v1/chat/completions", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       testutil.MockOpenAIResponse("hi", "gpt-4o"),
	})

	resp, err := client.CreateChatCompletion(context.Background(), chatRequest())
	if err != nil {
		t.Fatalf("CreateChatCompletion: %v", err)
	}
	if resp.Choices[0].Message.Content != "hi" {
		t.Errorf("expected upstream response, got %+v", resp)
	}

	console := rec.Console()
	if len(console) != 1 {
		t.Fatalf("expected one console record, got %d", len(console))
	}
	q := console[0]
	if q.API != "openai" || q.Path != PathChatCompletions || q.Method != http.MethodPost || q.Version != Version {
		t.Errorf("unexpected query %+v", q)
	}
	if _, ok := q.Body.(goopenai.ChatCompletionRequest); !ok {
		t.Errorf("expected request as body, got %T", q.Body)
	}

	cloud := rec.Cloud()
	if len(cloud) != 1 {
		t.Fatalf("expected one envelope, got %d", len(cloud))
	}
	if code := testutil.StatusCode(t, cloud[0].Status); code != http.StatusOK {
		t.Errorf("expected 200, got %d", code)
	}
	data, ok := cloud[0].Response.Data.(goopenai.ChatCompletionResponse)
	if !ok || data.ID != "chatcmpl-123" {
		t.Errorf("expected response data, got %#v", cloud[0].Response.Data)
	}
}

func TestCreateChatCompletion_ErrorReturnedUnchanged(t *testing.T) {
	client, rec, ms := newTestClient(t, intercept.Route{Cloud: true})
	ms.SetResponse("/v1/chat/completions", testutil.MockRateLimitError())

	_, err := client.CreateChatCompletion(context.Background(), chatRequest())
	var apiErr *goopenai.APIError
	if !errors.As(err, &apiErr) || apiErr.HTTPStatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected go-openai APIError with 429, got %v", err)
	}

	cloud := rec.Cloud()
	if len(cloud) != 1 {
		t.Fatalf("expected one envelope, got %d", len(cloud))
	}
	if cloud[0].Response.Error != err.Error() {
		t.Errorf("expected error message %q, got %q", err.Error(), cloud[0].Response.Error)
	}
	if code := testutil.StatusCode(t, cloud[0].Status); code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", code)
	}
}

func TestCreateCompletion(t *testing.T) {
	client, rec, ms := newTestClient(t, intercept.Route{Cloud: true})
	ms.SetResponse("/v1/completions", testutil.MockResponse{
		Body: map[string]any{
			"id":      "cmpl-1",
			"object":  "text_completion",
			"model":   "gpt-3.5-turbo-instruct",
			"choices": []map[string]any{{"text": "hi", "index": 0, "finish_reason": "stop"}},
		},
	})

	resp, err := client.CreateCompletion(context.Background(), goopenai.CompletionRequest{
		Model:  "gpt-3.5-turbo-instruct",
		Prompt: "Say hi",
	})
	if err != nil {
		t.Fatalf("CreateCompletion: %v", err)
	}
	if resp.Choices[0].Text != "hi" {
		t.Errorf("unexpected response %+v", resp)
	}

	cloud := rec.Cloud()
	if len(cloud) != 1 || cloud[0].Query.Path != PathCompletions {
		t.Fatalf("expected one /completions envelope, got %+v", cloud)
	}
}

func TestCreateEmbeddings(t *testing.T) {
	client, rec, ms := newTestClient(t, intercept.Route{Cloud: true})
	ms.SetResponse("/v1/embeddings", testutil.MockResponse{
		Body: map[string]any{
			"object": "list",
			"model":  "text-embedding-3-small",
			"data":   []map[string]any{{"object": "embedding", "index": 0, "embedding": []float32{0.1, 0.2}}},
			"usage":  map[string]any{"prompt_tokens": 1, "total_tokens": 1},
		},
	})

	resp, err := client.CreateEmbeddings(context.Background(), goopenai.EmbeddingRequestStrings{
		Input: []string{"hello"},
		Model: goopenai.SmallEmbedding3,
	})
	if err != nil {
		t.Fatalf("CreateEmbeddings: %v", err)
	}
	if len(resp.Data) != 1 || len(resp.Data[0].Embedding) != 2 {
		t.Errorf("unexpected response %+v", resp)
	}

	cloud := rec.Cloud()
	if len(cloud) != 1 || cloud[0].Query.Path != PathEmbeddings {
		t.Fatalf("expected one /embeddings envelope, got %+v", cloud)
	}
	if _, ok := cloud[0].Query.Body.(goopenai.EmbeddingRequest); !ok {
		t.Errorf("expected converted request as body, got %T", cloud[0].Query.Body)
	}
}

func TestInactiveRoutePassesThrough(t *testing.T) {
	client, rec, ms := newTestClient(t, intercept.Route{})
	ms.SetResponse("/v1/chat/completions", testutil.MockResponse{
		Body: testutil.MockOpenAIResponse("hi", "gpt-4o"),
	})

	if _, err := client.CreateChatCompletion(context.Background(), chatRequest()); err != nil {
		t.Fatalf("CreateChatCompletion: %v", err)
	}
	if len(rec.Console())+len(rec.Cloud()) != 0 {
		t.Error("expected no records when logging is inactive")
	}
	if len(ms.Requests()) != 1 {
		t.Errorf("expected the upstream call to happen, got %d requests", len(ms.Requests()))
	}
}

func TestCreateChatCompletionStream(t *testing.T) {
	client, rec, ms := newTestClient(t, intercept.Route{Console: true, Cloud: true})
	ms.SetResponse("/v1/chat/completions", testutil.MockResponse{
		StreamChunks: []string{
			testutil.MockOpenAIStreamChunk("Hello", ""),
			testutil.MockOpenAIStreamChunk(" world", ""),
			testutil.MockOpenAIStreamChunk("", "stop"),
		},
	})

	stream, err := client.CreateChatCompletionStream(context.Background(), chatRequest())
	if err != nil {
		t.Fatalf("CreateChatCompletionStream: %v", err)
	}
	defer stream.Close()

	var got string
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Recv: %v", err)
		}
		got += chunk.Choices[0].Delta.Content
	}
	if got != "Hello world" {
		t.Errorf("expected chunks unchanged, got %q", got)
	}

	cloud := rec.Cloud()
	if len(cloud) != 2 {
		t.Fatalf("expected exactly two envelopes, got %d", len(cloud))
	}
	if cloud[0].Status.Phase() != envelope.PhaseStarted || cloud[1].Status.Phase() != envelope.PhaseCompleted {
		t.Errorf("expected started then completed, got %v, %v", cloud[0].Status, cloud[1].Status)
	}
	if cloud[0].Query.CorrelationID == "" || cloud[0].Query.CorrelationID != cloud[1].Query.CorrelationID {
		t.Errorf("expected shared correlation id, got %q and %q", cloud[0].Query.CorrelationID, cloud[1].Query.CorrelationID)
	}
	if stream.CorrelationID() != cloud[0].Query.CorrelationID {
		t.Errorf("expected stream id %q, got %q", cloud[0].Query.CorrelationID, stream.CorrelationID())
	}
	data, _ := cloud[1].Response.Data.(map[string]any)
	if data["content"] != "Hello world" {
		t.Errorf("expected accumulated content, got %v", cloud[1].Response.Data)
	}

	body, _ := rec.Console()[0].Body.(goopenai.ChatCompletionRequest)
	if !body.Stream {
		t.Error("expected logged request to be marked as streaming")
	}
}

func TestCreateChatCompletionStream_OpenError(t *testing.T) {
	client, rec, ms := newTestClient(t, intercept.Route{Cloud: true})
	ms.SetResponse("/v1/chat/completions", testutil.MockErrorResponse(http.StatusUnauthorized, "Invalid API key"))

	stream, err := client.CreateChatCompletionStream(context.Background(), chatRequest())
	if err == nil || stream != nil {
		t.Fatalf("expected open error, got stream=%v err=%v", stream, err)
	}

	cloud := rec.Cloud()
	if len(cloud) != 1 || cloud[0].Response.Error == "" {
		t.Fatalf("expected one failure envelope, got %+v", cloud)
	}
}
