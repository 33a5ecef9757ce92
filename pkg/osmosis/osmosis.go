package osmosis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"

	"osmosis-ai/osmosis-go/pkg/config"
	"osmosis-ai/osmosis-go/pkg/dispatch"
	"osmosis-ai/osmosis-go/pkg/families/httpx"
	"osmosis-ai/osmosis-go/pkg/families/langchain"
	"osmosis-ai/osmosis-go/pkg/families/openai"
	"osmosis-ai/osmosis-go/pkg/identity"
	"osmosis-ai/osmosis-go/pkg/intercept"
	"osmosis-ai/osmosis-go/pkg/sink/cloud"
	"osmosis-ai/osmosis-go/pkg/sink/console"
	"osmosis-ai/osmosis-go/pkg/telemetry/health"
	"osmosis-ai/osmosis-go/pkg/telemetry/logging"
	"osmosis-ai/osmosis-go/pkg/telemetry/metrics"
)

// Options configures New. Every field is optional.
type Options struct {
	// Config is the initial configuration. Default: config.Default()
	Config *config.Config

	// Logger receives diagnostics. Default: built from Config.Telemetry.Logging.
	Logger *logging.Logger

	// Registry receives the interceptor's metrics. Default: a private registry.
	Registry *prometheus.Registry

	// HTTPClient posts envelopes. Default: a client with Config.Cloud.Timeout.
	HTTPClient *http.Client

	// ConsoleWriter receives request records. Default: os.Stdout
	ConsoleWriter io.Writer

	// Hasher derives owner hashes. Default: a new hasher warmed on first use.
	Hasher *identity.Hasher

	// Providers are registered after the built-in openai, anthropic and
	// langchain families. A provider named like a built-in one is ignored.
	Providers []dispatch.Provider
}

// Osmosis owns one interceptor: its configuration, sinks and telemetry.
// All methods are safe for concurrent use.
type Osmosis struct {
	handle     *config.Handle
	logger     *logging.Logger
	ownLogger  bool
	metrics    *metrics.Collector
	sender     *cloud.Sender
	dispatcher *dispatch.Dispatcher
	ic         *intercept.Interceptor
	health     *health.Checker
	ready      <-chan struct{}
}

// New validates the configuration, builds the sinks and registers the
// client families. When a cloud API key is configured, cloud initialization
// starts in the background; Ready is closed when it completes.
func New(ctx context.Context, opts Options) (*Osmosis, error) {
	cfg := config.Default()
	if opts.Config != nil {
		cfg = opts.Config.Clone()
	}
	config.ApplyDefaults(&cfg)
	if err := config.Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	o := &Osmosis{
		handle: config.NewHandle(cfg),
		logger: opts.Logger,
	}
	if o.logger == nil {
		logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging))
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		o.logger, o.ownLogger = logger, true
	}

	metricsCfg := cfg.Telemetry.Metrics
	o.metrics = metrics.NewCollector(&metricsCfg, opts.Registry)

	o.sender = cloud.NewSender(cloud.Options{
		BaseURL:    cfg.Cloud.BaseURL,
		Timeout:    cfg.Cloud.Timeout,
		HTTPClient: opts.HTTPClient,
		Hasher:     opts.Hasher,
		Logger:     o.logger,
		Metrics:    o.metrics,
	})
	sink := console.New(opts.ConsoleWriter, console.WithMetrics(o.metrics))

	registry := dispatch.NewRegistry(o.logger)
	registry.Register(openai.Provider())
	registry.Register(langchain.Provider())
	for _, p := range httpx.Providers() {
		registry.Register(p)
	}
	for _, p := range opts.Providers {
		if !registry.Register(p) {
			o.logger.Debug("Provider ignored, family already registered", "api", p.Name())
		}
	}

	o.dispatcher = dispatch.New(o.handle, o.sender, sink, registry, o.logger)
	o.ic = intercept.New(o.dispatcher,
		intercept.WithLogger(o.logger),
		intercept.WithMetrics(o.metrics),
	)
	o.health = o.newHealthChecker(registry)
	o.ready = o.dispatcher.Start(ctx)

	return o, nil
}

// Ready is closed once cloud initialization started by New has finished.
func (o *Osmosis) Ready() <-chan struct{} {
	return o.ready
}

// Configure merges p into the configuration. Only the fields set in p
// change. An invalid result is logged and rejected. Telemetry settings
// are stored but apply only to the next Osmosis built from them.
func (o *Osmosis) Configure(ctx context.Context, p config.Partial) error {
	return o.dispatcher.Configure(ctx, p)
}

// InitCloud enables cloud logging with apiKey and waits until envelopes can
// be sent. A console-only destination becomes both.
func (o *Osmosis) InitCloud(ctx context.Context, apiKey string) error {
	return o.dispatcher.InitCloud(ctx, apiKey)
}

// Register makes another client family available.
func (o *Osmosis) Register(ctx context.Context, p dispatch.Provider) {
	o.dispatcher.Register(ctx, p)
}

// Config returns a snapshot of the current configuration.
func (o *Osmosis) Config() config.Config {
	return o.handle.Snapshot()
}

// Interceptor returns the interceptor, for wrapping clients of families
// without a built-in wrapper.
func (o *Osmosis) Interceptor() *intercept.Interceptor {
	return o.ic
}

// WrapOpenAI returns a logging wrapper around a go-openai client.
func (o *Osmosis) WrapOpenAI(api openai.API) *openai.Client {
	return openai.Wrap(o.ic, api)
}

// WrapLangChainModel returns a logging wrapper around a langchaingo model.
func (o *Osmosis) WrapLangChainModel(m llms.Model) llms.Model {
	return langchain.WrapModel(o.ic, m)
}

// WrapLangChainEmbedder returns a logging wrapper around a langchaingo embedder.
func (o *Osmosis) WrapLangChainEmbedder(e embeddings.Embedder) embeddings.Embedder {
	return langchain.WrapEmbedder(o.ic, e)
}

// WrapHTTPClient installs a logging transport on c in place.
func (o *Osmosis) WrapHTTPClient(c *http.Client, opts ...httpx.Option) *http.Client {
	return httpx.WrapClient(o.ic, c, opts...)
}

// WrapTransport returns a logging transport around rt.
func (o *Osmosis) WrapTransport(rt http.RoundTripper, opts ...httpx.Option) http.RoundTripper {
	return httpx.WrapTransport(o.ic, rt, opts...)
}

// Flush waits for envelopes still being posted.
func (o *Osmosis) Flush(ctx context.Context) error {
	return o.sender.Flush(ctx)
}

// MetricsHandler serves the interceptor's Prometheus metrics.
func (o *Osmosis) MetricsHandler() http.Handler {
	return o.metrics.Handler()
}

// Health runs the readiness checks.
func (o *Osmosis) Health(ctx context.Context) health.Report {
	return o.health.Check(ctx)
}

// HealthHandler serves the readiness report.
func (o *Osmosis) HealthHandler() http.Handler {
	return o.health.Handler()
}

// WatchConfig applies changes to the YAML file at path as partial updates
// until ctx is cancelled. It blocks; run it in its own goroutine.
func (o *Osmosis) WatchConfig(ctx context.Context, path string) error {
	w, err := config.NewWatcher(path, 0, o.logger.Slog())
	if err != nil {
		return err
	}
	defer w.Stop()

	return w.Watch(ctx, func(p config.Partial) error {
		return o.Configure(ctx, p)
	})
}

// Close flushes pending envelopes and releases the logger if New created it.
func (o *Osmosis) Close(ctx context.Context) error {
	err := o.Flush(ctx)
	if o.ownLogger {
		if cerr := o.logger.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func (o *Osmosis) newHealthChecker(registry *dispatch.Registry) *health.Checker {
	checker := health.New(0)

	checker.Register("cloud", func(context.Context) error {
		cfg := o.handle.Snapshot()
		switch {
		case !cfg.LogDestination.Cloud():
			return nil
		case cfg.CloudAPIKey == "":
			return errors.New("cloud destination configured without an API key")
		case !o.sender.Enabled():
			return errors.New("cloud sender disabled")
		case !o.sender.Initialized():
			return errors.New("cloud sender not initialized")
		}
		return nil
	})

	checker.Register("families", func(context.Context) error {
		cfg := o.handle.Snapshot()
		var failed []string
		for _, name := range registry.Names() {
			if !cfg.APIEnabled(name) {
				continue
			}
			if state, err := registry.State(name); state == dispatch.StateUnavailable {
				failed = append(failed, fmt.Sprintf("%s: %v", name, err))
			}
		}
		if len(failed) > 0 {
			return fmt.Errorf("unavailable families: %s", strings.Join(failed, "; "))
		}
		return nil
	})

	return checker
}
