package openai

import (
	"context"
	"errors"
	"io"
	"testing"

	goopenai "github.com/sashabaranov/go-openai"

	"osmosis-ai/osmosis-go/internal/testutil"
	"osmosis-ai/osmosis-go/pkg/envelope"
	"osmosis-ai/osmosis-go/pkg/intercept"
)

type fakeChunks struct {
	deltas []string
	err    error
	closed bool
}

func (f *fakeChunks) Recv() (goopenai.ChatCompletionStreamResponse, error) {
	if len(f.deltas) == 0 {
		if f.err != nil {
			return goopenai.ChatCompletionStreamResponse{}, f.err
		}
		return goopenai.ChatCompletionStreamResponse{}, io.EOF
	}
	d := f.deltas[0]
	f.deltas = f.deltas[1:]
	return goopenai.ChatCompletionStreamResponse{
		Choices: []goopenai.ChatCompletionStreamChoice{{Delta: goopenai.ChatCompletionStreamChoiceDelta{Content: d}}},
	}, nil
}

func (f *fakeChunks) Close() error {
	f.closed = true
	return nil
}

func openFake(t *testing.T, inner *fakeChunks) (*ChatCompletionStream, *testutil.Recorder) {
	t.Helper()
	ic, rec := testutil.NewInterceptor(intercept.Route{Cloud: true})
	s := ic.BeginStream(context.Background(), "openai", query(PathChatCompletions, chatRequest()))
	s.Start()
	return &ChatCompletionStream{inner: inner, rec: s}, rec
}

func TestStream_EarlyCloseFlushesPartialContent(t *testing.T) {
	inner := &fakeChunks{deltas: []string{"Hel", "lo", " never read"}}
	stream, rec := openFake(t, inner)

	_, _ = stream.Recv()
	_, _ = stream.Recv()
	if err := stream.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if !inner.closed {
		t.Error("expected wrapped stream closed")
	}
	cloud := rec.Cloud()
	if len(cloud) != 2 {
		t.Fatalf("expected started and completed, got %d", len(cloud))
	}
	data, _ := cloud[1].Response.Data.(map[string]any)
	if data["content"] != "Hello" {
		t.Errorf("expected partial content, got %v", cloud[1].Response.Data)
	}
}

func TestStream_ErrorFinishesOnce(t *testing.T) {
	boom := errors.New("connection reset")
	inner := &fakeChunks{deltas: []string{"partial"}, err: boom}
	stream, rec := openFake(t, inner)

	_, _ = stream.Recv()
	if _, err := stream.Recv(); err != boom {
		t.Fatalf("expected wrapped error unchanged, got %v", err)
	}
	_ = stream.Close()

	cloud := rec.Cloud()
	if len(cloud) != 2 || cloud[1].Status.Phase() != envelope.PhaseCompleted {
		t.Fatalf("expected exactly one completed envelope, got %+v", cloud)
	}
}
