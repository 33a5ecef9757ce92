package dispatch

import (
	"context"
	"errors"
	"fmt"

	"osmosis-ai/osmosis-go/pkg/config"
	"osmosis-ai/osmosis-go/pkg/envelope"
	"osmosis-ai/osmosis-go/pkg/intercept"
	"osmosis-ai/osmosis-go/pkg/sink/cloud"
	"osmosis-ai/osmosis-go/pkg/sink/console"
	"osmosis-ai/osmosis-go/pkg/telemetry/logging"
)

// ErrMissingAPIKey is returned by InitCloud when no key is given.
var ErrMissingAPIKey = errors.New("cloud API key is required")

var errSuperseded = errors.New("superseded by a later key change")

// Dispatcher decides per call which sinks receive records and applies
// configuration changes to the sinks. It implements intercept.Recorder.
type Dispatcher struct {
	handle   *config.Handle
	cloud    *cloud.Sender
	console  *console.Sink
	registry *Registry
	logger   *logging.Logger
}

// New creates a dispatcher over the given configuration handle and sinks.
func New(handle *config.Handle, sender *cloud.Sender, sink *console.Sink, registry *Registry, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Nop()
	}
	if registry == nil {
		registry = NewRegistry(logger)
	}
	return &Dispatcher{
		handle:   handle,
		cloud:    sender,
		console:  sink,
		registry: registry,
		logger:   logger.With("component", "dispatch"),
	}
}

// Start applies the current configuration to the sinks: it initializes the
// cloud sender when a key is configured, sets the sender's flag from the
// destination and loads the enabled families. The returned channel is
// closed when cloud initialization finishes (immediately without a key).
func (d *Dispatcher) Start(ctx context.Context) <-chan struct{} {
	cfg := d.handle.Snapshot()

	d.applyCloud(cfg.Cloud)
	d.applyDestination(cfg.LogDestination)
	d.registry.Ensure(ctx, cfg.EnabledAPIs)

	if cfg.CloudAPIKey == "" {
		done := make(chan struct{})
		close(done)
		return done
	}
	return d.cloud.Init(context.WithoutCancel(ctx), cfg.CloudAPIKey)
}

// Configure merges p into the configuration. Invalid updates are logged
// and rejected without changing anything.
//
// Side effects follow the fields present in p: a cloud API key starts
// (without awaiting) cloud initialization and an empty one drops the
// sender's key, a destination of cloud or both enables the cloud sender and
// console disables it, cloud settings apply to later posts, and changed
// family toggles load newly enabled families. Telemetry settings are stored
// but only take effect when the interceptor is next created.
func (d *Dispatcher) Configure(ctx context.Context, p config.Partial) error {
	_, next, err := d.handle.Merge(p)
	if err != nil {
		d.logger.Warn("Ignoring invalid configuration", "error", err)
		return err
	}

	if p.CloudAPIKey != nil {
		if *p.CloudAPIKey == "" {
			d.cloud.Reset()
		} else {
			d.cloud.Init(context.WithoutCancel(ctx), *p.CloudAPIKey)
		}
	}
	if p.LogDestination != nil {
		d.applyDestination(*p.LogDestination)
	}
	if p.Cloud != nil {
		d.applyCloud(next.Cloud)
	}
	if p.Telemetry != nil {
		d.logger.Warn("Telemetry settings take effect on restart")
	}
	if len(p.EnabledAPIs) > 0 {
		d.registry.Ensure(ctx, next.EnabledAPIs)
	}
	return nil
}

func (d *Dispatcher) applyCloud(c config.CloudConfig) {
	timeout := c.Timeout
	if timeout == 0 {
		timeout = config.DefaultCloudTimeout
	}
	d.cloud.SetBaseURL(c.BaseURL)
	d.cloud.SetTimeout(timeout)
}

func (d *Dispatcher) applyDestination(dest config.Destination) {
	switch dest {
	case config.DestinationCloud, config.DestinationBoth:
		d.cloud.Enable()
	case config.DestinationConsole:
		d.cloud.Disable()
	}
}

// InitCloud sets the cloud API key, waits for the sender to be ready and
// force-enables it. A console-only destination is upgraded to both.
func (d *Dispatcher) InitCloud(ctx context.Context, apiKey string) error {
	if apiKey == "" {
		d.logger.Warn("Cloud logging not initialized", "error", ErrMissingAPIKey)
		return ErrMissingAPIKey
	}

	// Init never activates the key once ctx has ended; wait for it so the
	// config always matches the sender's key.
	<-d.cloud.Init(ctx, apiKey)
	if !d.cloud.Active(apiKey) {
		err := ctx.Err()
		if err == nil {
			err = errSuperseded
		}
		return fmt.Errorf("cloud initialization interrupted: %w", err)
	}

	err := d.handle.Update(func(cfg *config.Config) {
		cfg.CloudAPIKey = apiKey
		if cfg.LogDestination == config.DestinationConsole {
			cfg.LogDestination = config.DestinationBoth
		}
	})
	if err != nil {
		return err
	}

	d.cloud.Enable()
	return nil
}

// Register adds a client family provider and loads it if it is enabled.
func (d *Dispatcher) Register(ctx context.Context, p Provider) {
	if !d.registry.Register(p) {
		d.logger.Debug("Client family already registered", "api", p.Name())
		return
	}
	d.registry.Ensure(ctx, d.handle.Snapshot().EnabledAPIs)
}

// Registry returns the family registry.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Config returns a snapshot of the current configuration.
func (d *Dispatcher) Config() config.Config {
	return d.handle.Snapshot()
}

// Route implements intercept.Recorder. A family is routed only when logging
// is enabled, the family is enabled and its provider loaded.
func (d *Dispatcher) Route(api string) intercept.Route {
	var route intercept.Route
	d.handle.Read(func(cfg *config.Config) {
		if !cfg.Enabled || !cfg.APIEnabled(api) {
			return
		}
		route.Console = cfg.LogDestination.Console()
		route.Cloud = cfg.LogDestination.Cloud()
	})
	if route.Active() && !d.registry.Available(api) {
		return intercept.Route{}
	}
	return route
}

// LogConsole implements intercept.Recorder.
func (d *Dispatcher) LogConsole(q *envelope.Query) {
	d.console.Log(q)
}

// SendCloud implements intercept.Recorder.
func (d *Dispatcher) SendCloud(q envelope.Query, resp envelope.Response, status envelope.Status) string {
	return d.cloud.Send(q, resp, status)
}
