package intercept

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"osmosis-ai/osmosis-go/pkg/envelope"
	"osmosis-ai/osmosis-go/pkg/telemetry/logging"
	"osmosis-ai/osmosis-go/pkg/telemetry/metrics"
)

// MsgResolveFailed is logged when call arguments cannot be captured.
const MsgResolveFailed = "Failed to capture request for logging, call proceeds unlogged"

// Route tells the interceptor which sinks want a call.
type Route struct {
	Console bool
	Cloud   bool
}

// Active reports whether any sink wants the call.
func (r Route) Active() bool {
	return r.Console || r.Cloud
}

// Recorder routes records to sinks. The dispatcher implements it.
type Recorder interface {
	// Route returns the sinks interested in calls of the given family.
	Route(api string) Route

	// LogConsole prints a request record.
	LogConsole(q *envelope.Query)

	// SendCloud hands an envelope to the transport sink and returns its
	// correlation id, or "" when nothing was sent.
	SendCloud(q envelope.Query, resp envelope.Response, status envelope.Status) string
}

// Resolver captures the request description of a call. It runs before the
// wrapped call; an error or panic only disables logging for that call.
type Resolver func() (*envelope.Query, error)

// Interceptor wraps client calls with request and response logging.
type Interceptor struct {
	rec     Recorder
	logger  *logging.Logger
	metrics *metrics.Collector
	now     func() time.Time
}

// Option configures an Interceptor.
type Option func(*Interceptor)

// WithLogger sets the diagnostics logger.
func WithLogger(l *logging.Logger) Option {
	return func(ic *Interceptor) { ic.logger = l }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(ic *Interceptor) { ic.metrics = m }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(ic *Interceptor) { ic.now = now }
}

// New creates an Interceptor that routes through rec.
func New(rec Recorder, opts ...Option) *Interceptor {
	ic := &Interceptor{
		rec:    rec,
		logger: logging.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(ic)
	}
	ic.logger = ic.logger.With("component", "intercept")
	return ic
}

// Call tracks one intercepted call between its request and response phases.
// The response phase is recorded at most once.
type Call struct {
	ic    *Interceptor
	api   string
	route Route
	query *envelope.Query
	start time.Time
	once  sync.Once
}

// Begin starts the request phase of a call: it resolves the query and, when
// console logging is active, prints it immediately. The returned Call is
// never nil; when logging is inactive or resolution fails its methods only
// record metrics.
func (ic *Interceptor) Begin(ctx context.Context, api string, resolve Resolver) *Call {
	c := &Call{ic: ic, api: api, start: ic.now()}

	c.route = ic.rec.Route(api)
	if !c.route.Active() {
		return c
	}

	q, err := safeResolve(resolve)
	if err != nil {
		ic.logger.WarnContext(logging.WithAPI(ctx, api), MsgResolveFailed, "error", err)
		ic.metrics.RecordResolveFailure(api)
		return c
	}

	if q.API == "" {
		q.API = api
	}
	q.Stamp(c.start)
	c.query = q

	if c.route.Console {
		ic.rec.LogConsole(q)
	}
	return c
}

// Query returns the captured request, or nil when the call is not logged.
func (c *Call) Query() *envelope.Query {
	return c.query
}

// Logged reports whether the call's request was captured.
func (c *Call) Logged() bool {
	return c.query != nil
}

// Succeed records a successful outcome with the given status code.
func (c *Call) Succeed(data any, status int) {
	c.finish(metrics.OutcomeSuccess, envelope.Success(data), envelope.Code(status))
}

// Fail records a failed outcome with the given status code.
func (c *Call) Fail(err error, status int) {
	c.finish(metrics.OutcomeError, envelope.Failure(err), envelope.Code(status))
}

func (c *Call) finish(outcome string, resp envelope.Response, status envelope.Status) {
	c.once.Do(func() {
		if !c.route.Active() {
			return
		}
		c.ic.metrics.RecordCall(c.api, outcome, c.ic.now().Sub(c.start))
		if c.query == nil || !c.route.Cloud {
			return
		}
		c.ic.rec.SendCloud(*c.query, resp, status)
	})
}

// Do runs call with request and response logging. Its result and error are
// returned exactly as call produced them; on error a 500 envelope is
// recorded.
func Do[T any](ctx context.Context, ic *Interceptor, api string, resolve Resolver, call func(context.Context) (T, error)) (T, error) {
	c := ic.Begin(ctx, api, resolve)

	out, err := call(ctx)
	if err != nil {
		c.Fail(err, http.StatusInternalServerError)
		return out, err
	}
	c.Succeed(out, http.StatusOK)
	return out, nil
}

func safeResolve(resolve Resolver) (q *envelope.Query, err error) {
	defer func() {
		if r := recover(); r != nil {
			q, err = nil, fmt.Errorf("resolver panicked: %v", r)
		}
	}()
	if resolve == nil {
		return nil, fmt.Errorf("no resolver")
	}
	q, err = resolve()
	if err == nil && q == nil {
		err = fmt.Errorf("resolver returned no query")
	}
	return q, err
}
