package openai

import (
	goopenai "github.com/sashabaranov/go-openai"

	"osmosis-ai/osmosis-go/pkg/intercept"
)

type chunkReader interface {
	Recv() (goopenai.ChatCompletionStreamResponse, error)
	Close() error
}

// ChatCompletionStream wraps a go-openai stream. The stream record is
// finished when Recv returns io.EOF or any other error, or on Close,
// whichever comes first.
type ChatCompletionStream struct {
	inner chunkReader
	rec   *intercept.Stream
}

// Recv returns the next chunk from the wrapped stream.
func (s *ChatCompletionStream) Recv() (goopenai.ChatCompletionStreamResponse, error) {
	chunk, err := s.inner.Recv()
	if err != nil {
		s.rec.Finish()
		return chunk, err
	}
	for _, choice := range chunk.Choices {
		s.rec.Append(choice.Delta.Content)
	}
	return chunk, nil
}

// Close finishes the record and closes the wrapped stream.
func (s *ChatCompletionStream) Close() error {
	s.rec.Finish()
	return s.inner.Close()
}

// CorrelationID returns the id shared by this stream's envelopes, or ""
// when the stream is not sent to the cloud.
func (s *ChatCompletionStream) CorrelationID() string {
	return s.rec.CorrelationID()
}
