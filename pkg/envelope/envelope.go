package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// TimestampLayout is the ISO 8601 layout used for query timestamps.
// Timestamps are always rendered in UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Query describes an outbound call made through a wrapped client.
type Query struct {
	// API is the client family name (e.g., "openai", "anthropic", "langchain").
	API string `json:"api"`

	// Version is the API version tag reported by the client, if any.
	Version string `json:"version,omitempty"`

	// Path is the endpoint path (e.g., "/chat/completions").
	Path string `json:"path"`

	// Method is the HTTP method used for the call.
	Method string `json:"method"`

	// Body is the request payload. Any JSON-encodable value is accepted.
	Body any `json:"body,omitempty"`

	// Query holds URL query parameters, if any.
	Query map[string]any `json:"query,omitempty"`

	// Timestamp is the time the call was issued, formatted with TimestampLayout.
	Timestamp string `json:"timestamp"`

	// CorrelationID links multi-part exchanges such as stream start and
	// completion events. Empty means one is generated at send time.
	CorrelationID string `json:"correlationId,omitempty"`
}

// Stamp sets Timestamp from t when it is not already set.
func (q *Query) Stamp(t time.Time) {
	if q.Timestamp == "" {
		q.Timestamp = t.UTC().Format(TimestampLayout)
	}
}

// Response is the outcome of a call: either data or an error message.
type Response struct {
	Data  any
	Error string
}

// Success returns a Response carrying data.
func Success(data any) Response {
	return Response{Data: data}
}

// Failure returns a Response carrying the error message of err.
func Failure(err error) Response {
	if err == nil {
		return Response{Error: "unknown error"}
	}
	msg := err.Error()
	if msg == "" {
		msg = "unknown error"
	}
	return Response{Error: msg}
}

// Failed reports whether the response carries an error.
func (r Response) Failed() bool {
	return r.Error != ""
}

// MarshalJSON encodes the response as {"data": ...} or {"error": "..."}.
func (r Response) MarshalJSON() ([]byte, error) {
	if r.Failed() {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{r.Error})
	}
	return json.Marshal(struct {
		Data any `json:"data"`
	}{r.Data})
}

// UnmarshalJSON decodes either response shape.
func (r *Response) UnmarshalJSON(b []byte) error {
	var raw struct {
		Data  json.RawMessage `json:"data"`
		Error *string         `json:"error"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Error != nil {
		r.Data = nil
		r.Error = *raw.Error
		return nil
	}
	r.Error = ""
	r.Data = nil
	if len(raw.Data) > 0 && !bytes.Equal(raw.Data, []byte("null")) {
		var v any
		if err := json.Unmarshal(raw.Data, &v); err != nil {
			return err
		}
		r.Data = v
	}
	return nil
}

// Envelope is the wire record posted to the ingest endpoint.
type Envelope struct {
	// Owner is the owner hash derived from the cloud API key.
	Owner string `json:"owner"`

	// Date is the send time in Unix seconds.
	Date int64 `json:"date"`

	Query    Query    `json:"query"`
	Response Response `json:"response"`
	Status   Status   `json:"status"`
}

// Encode serializes the envelope for line-delimited framing: the JSON body
// has embedded newlines stripped and exactly one trailing newline.
func Encode(e *Envelope) ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode envelope: %w", err)
	}
	b = bytes.ReplaceAll(b, []byte("\r"), nil)
	b = bytes.ReplaceAll(b, []byte("\n"), nil)
	return append(b, '\n'), nil
}

// Decode parses a single line-delimited envelope.
func Decode(line []byte) (*Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(bytes.TrimSpace(line), &e); err != nil {
		return nil, fmt.Errorf("failed to decode envelope: %w", err)
	}
	return &e, nil
}
