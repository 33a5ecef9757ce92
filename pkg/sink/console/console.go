// Package console prints request records in the OSMOSIS-AI console format:
//
//	[OSMOSIS-AI][2024-06-10T06:13:20.000Z] OpenAI Request:
//	  Path: /chat/completions
//	  Method: POST
//	  Body: {
//	    "model": "gpt-4o"
//	  }
//
// Body and Query lines are omitted when empty. When the output is a terminal
// the header is styled with lipgloss.
package console

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"osmosis-ai/osmosis-go/pkg/envelope"
	"osmosis-ai/osmosis-go/pkg/telemetry/metrics"
)

// Prefix starts every console record.
const Prefix = "[OSMOSIS-AI]"

// BodyPlaceholder replaces bodies that cannot be rendered as JSON.
const BodyPlaceholder = "[Unable to stringify body]"

var displayNames = map[string]string{
	"openai":    "OpenAI",
	"anthropic": "Anthropic",
	"langchain": "LangChain",
}

// DisplayName returns the human-readable name of a client family.
func DisplayName(api string) string {
	if name, ok := displayNames[api]; ok {
		return name
	}
	return api
}

// Sink writes request records. It is safe for concurrent use; records from
// concurrent calls never interleave.
type Sink struct {
	mu      sync.Mutex
	w       io.Writer
	styled  bool
	header  lipgloss.Style
	now     func() time.Time
	metrics *metrics.Collector
}

// Option configures a Sink.
type Option func(*Sink)

// WithClock overrides the time source used for records without a timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *Sink) { s.now = now }
}

// WithMetrics counts printed records.
func WithMetrics(m *metrics.Collector) Option {
	return func(s *Sink) { s.metrics = m }
}

// WithStyle forces header styling on or off.
func WithStyle(on bool) Option {
	return func(s *Sink) { s.styled = on }
}

// New creates a console sink writing to w, or os.Stdout when w is nil.
func New(w io.Writer, opts ...Option) *Sink {
	if w == nil {
		w = os.Stdout
	}
	s := &Sink{
		w:      w,
		styled: isTerminal(w),
		header: lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Log prints one request record.
func (s *Sink) Log(q *envelope.Query) {
	if q == nil {
		return
	}

	ts := q.Timestamp
	if ts == "" {
		ts = s.now().UTC().Format(envelope.TimestampLayout)
	}

	header := Header(ts, q.API)
	if s.styled {
		header = s.header.Render(header)
	}
	record := header + "\n" + Details(q)

	s.mu.Lock()
	_, _ = io.WriteString(s.w, record)
	s.mu.Unlock()

	s.metrics.RecordConsoleRecord(q.API)
}

// Header returns the first line of a record without styling.
func Header(timestamp, api string) string {
	return Prefix + "[" + timestamp + "] " + DisplayName(api) + " Request:"
}

// Details returns the indented lines following the header, each
// newline-terminated.
func Details(q *envelope.Query) string {
	var sb strings.Builder
	sb.WriteString("  Path: " + q.Path + "\n")
	sb.WriteString("  Method: " + q.Method + "\n")
	if q.Body != nil {
		sb.WriteString("  Body: " + pretty(q.Body) + "\n")
	}
	if len(q.Query) > 0 {
		sb.WriteString("  Query: " + pretty(q.Query) + "\n")
	}
	return sb.String()
}

func pretty(v any) string {
	if raw, ok := v.(json.RawMessage); ok && !json.Valid(raw) {
		return BodyPlaceholder
	}
	b, err := json.MarshalIndent(v, "  ", "  ")
	if err != nil {
		return BodyPlaceholder
	}
	return string(b)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
