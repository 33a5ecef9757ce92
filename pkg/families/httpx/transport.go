package httpx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"osmosis-ai/osmosis-go/pkg/config"
	"osmosis-ai/osmosis-go/pkg/dispatch"
	"osmosis-ai/osmosis-go/pkg/envelope"
	"osmosis-ai/osmosis-go/pkg/intercept"
)

// HeaderCorrelationID lets callers link a request to their own id.
const HeaderCorrelationID = "X-Osmosis-Correlation-Id"

// HeaderAnthropicVersion carries the Anthropic API version.
const HeaderAnthropicVersion = "anthropic-version"

// DefaultHosts maps well-known API hosts to family names.
func DefaultHosts() map[string]string {
	return map[string]string{
		"api.openai.com":    config.APIOpenAI,
		"api.anthropic.com": config.APIAnthropic,
	}
}

var versionSegment = regexp.MustCompile(`^/(v\d+)(/.*)?$`)

// Transport is an http.RoundTripper that logs requests to LLM APIs. Requests
// to hosts that map to no family pass through untouched.
type Transport struct {
	base       http.RoundTripper
	ic         *intercept.Interceptor
	hosts      map[string]string
	defaultAPI string
}

// Option configures a Transport.
type Option func(*Transport)

// WithHosts adds or overrides host to family mappings.
func WithHosts(hosts map[string]string) Option {
	return func(t *Transport) {
		for host, api := range hosts {
			t.hosts[strings.ToLower(host)] = api
		}
	}
}

// WithDefaultAPI sets the family used for hosts with no mapping, such as a
// local gateway.
func WithDefaultAPI(api string) Option {
	return func(t *Transport) { t.defaultAPI = api }
}

// WrapTransport returns a logging transport around rt (http.DefaultTransport
// when nil). Wrapping a Transport returns it unchanged.
func WrapTransport(ic *intercept.Interceptor, rt http.RoundTripper, opts ...Option) http.RoundTripper {
	if t, ok := rt.(*Transport); ok {
		return t
	}
	if rt == nil {
		rt = http.DefaultTransport
	}
	t := &Transport{base: rt, ic: ic, hosts: DefaultHosts()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// WrapClient installs a logging transport on c in place and returns c.
// Installing twice keeps the first transport.
func WrapClient(ic *intercept.Interceptor, c *http.Client, opts ...Option) *http.Client {
	if c == nil {
		c = &http.Client{}
	}
	c.Transport = WrapTransport(ic, c.Transport, opts...)
	return c
}

// Unwrap returns the wrapped transport.
func (t *Transport) Unwrap() http.RoundTripper {
	return t.base
}

// Providers makes the families reachable over raw HTTP available to a
// dispatcher.
func Providers() []dispatch.Provider {
	return []dispatch.Provider{
		dispatch.NewProvider(config.APIOpenAI, nil),
		dispatch.NewProvider(config.APIAnthropic, nil),
	}
}

func (t *Transport) family(req *http.Request) string {
	if api, ok := t.hosts[strings.ToLower(req.URL.Hostname())]; ok {
		return api
	}
	return t.defaultAPI
}

// RoundTrip implements http.RoundTripper. The response and error are those of
// the wrapped transport; bodies that are read for logging are restored.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	api := t.family(req)
	if api == "" {
		return t.base.RoundTrip(req)
	}

	out := req
	streamRequested := false
	call := t.ic.Begin(req.Context(), api, func() (*envelope.Query, error) {
		body, next, err := captureBody(req)
		out = next
		if err != nil {
			return nil, err
		}
		streamRequested = gjson.GetBytes(body, "stream").Bool()
		return buildQuery(api, req, body), nil
	})

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		call.Fail(err, http.StatusInternalServerError)
		return resp, err
	}
	if !call.Logged() {
		return resp, nil
	}

	if isEventStream(resp, streamRequested) {
		s := call.Stream()
		s.Start()
		resp.Body = newSSEBody(resp.Body, s)
		return resp, nil
	}

	raw, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		resp.Body = io.NopCloser(io.MultiReader(bytes.NewReader(raw), errReader{readErr}))
		call.Fail(readErr, http.StatusInternalServerError)
		return resp, nil
	}
	resp.Body = io.NopCloser(bytes.NewReader(raw))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		call.Succeed(decodeBody(raw), resp.StatusCode)
	} else {
		// Failed calls record 500 like the SDK wrappers; the upstream code
		// stays in the message.
		msg := strings.TrimSpace(string(raw))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		call.Fail(fmt.Errorf("upstream status %d: %s", resp.StatusCode, msg), http.StatusInternalServerError)
	}
	return resp, nil
}

// captureBody returns a copy of the request body and the request to send.
// With GetBody the original request is sent untouched; otherwise the body
// is read and a clone carrying a replayable copy is returned.
func captureBody(req *http.Request) ([]byte, *http.Request, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, req, nil
	}

	if req.GetBody != nil {
		rc, err := req.GetBody()
		if err != nil {
			return nil, req, err
		}
		defer rc.Close()
		body, err := io.ReadAll(rc)
		return body, req, err
	}

	body, err := io.ReadAll(req.Body)
	clone := req.Clone(req.Context())
	if err != nil {
		clone.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), req.Body))
		return nil, clone, err
	}
	req.Body.Close()

	clone.Body = io.NopCloser(bytes.NewReader(body))
	clone.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	clone.ContentLength = int64(len(body))
	return body, clone, nil
}

func buildQuery(api string, req *http.Request, body []byte) *envelope.Query {
	q := &envelope.Query{
		API:           api,
		Path:          req.URL.Path,
		Method:        req.Method,
		CorrelationID: req.Header.Get(HeaderCorrelationID),
	}

	if m := versionSegment.FindStringSubmatch(req.URL.Path); m != nil {
		q.Version = m[1]
		q.Path = m[2]
		if q.Path == "" {
			q.Path = "/"
		}
	}
	if v := req.Header.Get(HeaderAnthropicVersion); v != "" {
		q.Version = v
	}

	if len(body) > 0 {
		q.Body = decodeBody(body)
	}

	if values := req.URL.Query(); len(values) > 0 {
		q.Query = make(map[string]any, len(values))
		for k, vs := range values {
			if len(vs) == 1 {
				q.Query[k] = vs[0]
			} else {
				q.Query[k] = vs
			}
		}
	}
	return q
}

// decodeBody keeps JSON as raw JSON and anything else as text.
func decodeBody(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	if json.Valid(b) {
		return json.RawMessage(b)
	}
	return string(b)
}

func isEventStream(resp *http.Response, requested bool) bool {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false
	}
	ct := resp.Header.Get("Content-Type")
	if strings.HasPrefix(strings.ToLower(ct), "text/event-stream") {
		return true
	}
	return requested && ct == ""
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }
