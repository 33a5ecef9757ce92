package dispatch

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"osmosis-ai/osmosis-go/pkg/telemetry/logging"
)

// Provider is a client family adapter the embedding application makes
// available. Load runs once, the first time the family is enabled; a load
// error marks the family unavailable and its wrappers pass calls through.
type Provider interface {
	Name() string
	Load(ctx context.Context) error
}

// providerFunc adapts a name and load function to Provider.
type providerFunc struct {
	name string
	load func(ctx context.Context) error
}

func (p providerFunc) Name() string { return p.name }

func (p providerFunc) Load(ctx context.Context) error {
	if p.load == nil {
		return nil
	}
	return p.load(ctx)
}

// NewProvider returns a Provider named name. A nil load always succeeds.
func NewProvider(name string, load func(ctx context.Context) error) Provider {
	return providerFunc{name: name, load: load}
}

// FamilyState is the load state of a registered family.
type FamilyState int

const (
	// StatePending means the family is registered but not loaded yet.
	StatePending FamilyState = iota
	// StateLoaded means the family loaded and can be logged.
	StateLoaded
	// StateUnavailable means loading failed.
	StateUnavailable
)

func (s FamilyState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateLoaded:
		return "loaded"
	case StateUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("FamilyState(%d)", int(s))
	}
}

type family struct {
	provider Provider
	state    FamilyState
	err      error
}

// Registry tracks the client families registered by the embedding
// application and loads them on demand.
type Registry struct {
	mu       sync.RWMutex
	families map[string]*family
	loads    singleflight.Group
	logger   *logging.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *logging.Logger) *Registry {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Registry{
		families: make(map[string]*family),
		logger:   logger.With("component", "dispatch.registry"),
	}
}

// Register adds p. Registering a name again keeps the first provider.
// It reports whether p was added.
func (r *Registry) Register(p Provider) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.families[p.Name()]; ok {
		return false
	}
	r.families[p.Name()] = &family{provider: p, state: StatePending}
	return true
}

// Ensure loads every registered family that is enabled and still pending.
// Load failures are logged and mark the family unavailable. Concurrent
// calls share one Load per family.
func (r *Registry) Ensure(ctx context.Context, enabled map[string]bool) {
	r.mu.RLock()
	var pending []string
	for name, f := range r.families {
		if enabled[name] && f.state == StatePending {
			pending = append(pending, name)
		}
	}
	r.mu.RUnlock()

	for _, name := range pending {
		_, _, _ = r.loads.Do(name, func() (any, error) {
			r.load(ctx, name)
			return nil, nil
		})
	}
}

func (r *Registry) load(ctx context.Context, name string) {
	r.mu.RLock()
	f := r.families[name]
	stillPending := f != nil && f.state == StatePending
	r.mu.RUnlock()
	if !stillPending {
		return
	}

	err := safeLoad(ctx, f.provider)

	r.mu.Lock()
	if err != nil {
		f.state, f.err = StateUnavailable, err
	} else {
		f.state = StateLoaded
	}
	r.mu.Unlock()

	if err != nil {
		r.logger.Warn("Client family unavailable, calls will not be logged",
			"api", name,
			"error", err,
		)
	}
}

// Available reports whether name is registered and loaded.
func (r *Registry) Available(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.families[name]
	return ok && f.state == StateLoaded
}

// State returns the load state of name and the load error, if any.
// Unknown names report StateUnavailable.
func (r *Registry) State(name string) (FamilyState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.families[name]
	if !ok {
		return StateUnavailable, fmt.Errorf("family %q is not registered", name)
	}
	return f.state, f.err
}

// Names returns the registered family names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.families))
	for name := range r.families {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func safeLoad(ctx context.Context, p Provider) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("provider panicked: %v", rec)
		}
	}()
	return p.Load(ctx)
}
