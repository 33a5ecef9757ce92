package httpx

import (
	"bytes"
	"io"
	"sync"

	"github.com/tidwall/gjson"

	"osmosis-ai/osmosis-go/pkg/intercept"
)

// Delta paths inspected in SSE data payloads.
const (
	openAIDeltaPath    = "choices.0.delta.content"
	anthropicDeltaPath = "delta.text"
)

// sseBody passes an event stream through unchanged while copying text
// deltas out of its "data:" lines. The record is finished on EOF, on a read
// error or on Close.
type sseBody struct {
	rc  io.ReadCloser
	rec *intercept.Stream

	mu      sync.Mutex
	partial []byte
}

func newSSEBody(rc io.ReadCloser, rec *intercept.Stream) *sseBody {
	return &sseBody{rc: rc, rec: rec}
}

func (b *sseBody) Read(p []byte) (int, error) {
	n, err := b.rc.Read(p)
	if n > 0 {
		b.scan(p[:n])
	}
	if err != nil {
		b.flush()
		b.rec.Finish()
	}
	return n, err
}

func (b *sseBody) Close() error {
	b.rec.Finish()
	return b.rc.Close()
}

func (b *sseBody) scan(chunk []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.partial = append(b.partial, chunk...)
	for {
		i := bytes.IndexByte(b.partial, '\n')
		if i < 0 {
			return
		}
		b.line(b.partial[:i])
		b.partial = b.partial[i+1:]
	}
}

func (b *sseBody) flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.partial) > 0 {
		b.line(b.partial)
		b.partial = nil
	}
}

func (b *sseBody) line(line []byte) {
	line = bytes.TrimRight(line, "\r")
	data, ok := bytes.CutPrefix(line, []byte("data:"))
	if !ok {
		return
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("[DONE]")) || !gjson.ValidBytes(data) {
		return
	}

	if delta := gjson.GetBytes(data, openAIDeltaPath); delta.Exists() {
		b.rec.Append(delta.String())
		return
	}
	if delta := gjson.GetBytes(data, anthropicDeltaPath); delta.Exists() {
		b.rec.Append(delta.String())
	}
}
