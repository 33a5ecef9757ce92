// Package testutil provides fakes shared by the client family tests: a mock
// upstream LLM API and a recorder that captures what an interceptor logs.
package testutil

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"osmosis-ai/osmosis-go/pkg/envelope"
	"osmosis-ai/osmosis-go/pkg/intercept"
)

// Sent is one envelope handed to the cloud sink.
type Sent struct {
	Query    envelope.Query
	Response envelope.Response
	Status   envelope.Status
}

// Recorder implements intercept.Recorder and captures records in memory.
// Generated correlation ids are "req_<n>_abcde".
type Recorder struct {
	mu      sync.Mutex
	route   intercept.Route
	routes  map[string]intercept.Route
	console []envelope.Query
	cloud   []Sent
	next    int
}

// NewRecorder returns a recorder routing every family to route.
func NewRecorder(route intercept.Route) *Recorder {
	return &Recorder{route: route, routes: map[string]intercept.Route{}}
}

// SetRoute overrides the route of one family.
func (r *Recorder) SetRoute(api string, route intercept.Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[api] = route
}

// Route implements intercept.Recorder.
func (r *Recorder) Route(api string) intercept.Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	if route, ok := r.routes[api]; ok {
		return route
	}
	return r.route
}

// LogConsole implements intercept.Recorder.
func (r *Recorder) LogConsole(q *envelope.Query) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.console = append(r.console, *q)
}

// SendCloud implements intercept.Recorder.
func (r *Recorder) SendCloud(q envelope.Query, resp envelope.Response, status envelope.Status) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if q.CorrelationID == "" {
		r.next++
		q.CorrelationID = fmt.Sprintf("req_%d_abcde", r.next)
	}
	r.cloud = append(r.cloud, Sent{Query: q, Response: resp, Status: status})
	return q.CorrelationID
}

// Console returns the request records printed so far.
func (r *Recorder) Console() []envelope.Query {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]envelope.Query(nil), r.console...)
}

// Cloud returns the envelopes sent so far.
func (r *Recorder) Cloud() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Sent(nil), r.cloud...)
}

// NewInterceptor returns an interceptor over a fresh recorder.
func NewInterceptor(route intercept.Route, opts ...intercept.Option) (*intercept.Interceptor, *Recorder) {
	rec := NewRecorder(route)
	return intercept.New(rec, opts...), rec
}

// StatusCode returns the numeric status of s, failing the test when s is a
// phase.
func StatusCode(t *testing.T, s envelope.Status) int {
	t.Helper()
	code, ok := s.Int()
	if !ok {
		t.Fatalf("expected numeric status, got %v", s)
	}
	return code
}

// WaitForCondition waits for a condition to become true within a timeout.
func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool, message string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		if condition() {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("condition not met within %s: %s", timeout, message)
		}
		<-ticker.C
	}
}
