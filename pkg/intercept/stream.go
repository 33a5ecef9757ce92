package intercept

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"osmosis-ai/osmosis-go/pkg/envelope"
	"osmosis-ai/osmosis-go/pkg/telemetry/metrics"
)

// Stream records a streaming call as two envelopes sharing one correlation
// id: "started" when the stream opens and "completed" carrying the
// accumulated text when it ends. Chunks are never buffered on their way to
// the caller; only their text deltas are copied.
//
// Typical use:
//
//	s := ic.BeginStream(ctx, "openai", resolve)
//	inner, err := client.OpenStream(ctx, req)
//	if err != nil {
//		s.Fail(err)
//		return nil, err
//	}
//	s.Start()
//	// for each chunk: s.Append(delta)
//	// on EOF, error or close: s.Finish()
type Stream struct {
	call *Call

	mu      sync.Mutex
	id      string
	content strings.Builder
	done    bool
}

// BeginStream starts the request phase of a streaming call.
func (ic *Interceptor) BeginStream(ctx context.Context, api string, resolve Resolver) *Stream {
	return &Stream{call: ic.Begin(ctx, api, resolve)}
}

// Stream turns a call into a stream record, for calls that only learn from
// the response that they stream. It must be used instead of Succeed or Fail.
func (c *Call) Stream() *Stream {
	return &Stream{call: c}
}

// Start sends the "started" envelope and captures its correlation id.
func (s *Stream) Start() {
	c := s.call
	if c.query == nil || !c.route.Cloud {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	id := c.ic.rec.SendCloud(*c.query, envelope.Success(map[string]any{"streaming": true}), envelope.StatusStarted)
	if id != "" {
		s.id = id
		c.query.CorrelationID = id
	}
}

// Append accumulates a text delta.
func (s *Stream) Append(delta string) {
	if delta == "" {
		return
	}
	s.call.ic.metrics.RecordStreamChunk(s.call.api)
	if s.call.query == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.done {
		s.content.WriteString(delta)
	}
}

// Content returns the text accumulated so far.
func (s *Stream) Content() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content.String()
}

// CorrelationID returns the id captured from the "started" envelope.
func (s *Stream) CorrelationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Finish sends the "completed" envelope with the accumulated text. Only the
// first call has an effect, and nothing is sent when no text arrived.
func (s *Stream) Finish() {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	s.done = true
	text := s.content.String()
	c := s.call
	var q envelope.Query
	if c.query != nil {
		q = *c.query
	}
	s.mu.Unlock()

	c.once.Do(func() {
		if !c.route.Active() {
			return
		}
		c.ic.metrics.RecordCall(c.api, metrics.OutcomeSuccess, c.ic.now().Sub(c.start))
		if c.query == nil || !c.route.Cloud || text == "" {
			return
		}
		c.ic.rec.SendCloud(q, envelope.Success(map[string]any{"content": text}), envelope.StatusCompleted)
	})
}

// Fail records a stream that could not be opened as a failed call. Later
// Start, Append and Finish calls are no-ops.
func (s *Stream) Fail(err error) {
	s.mu.Lock()
	s.done = true
	s.mu.Unlock()
	s.call.Fail(err, http.StatusInternalServerError)
}
