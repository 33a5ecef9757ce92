package config

import (
	"fmt"
	"sync"
)

// Handle owns a live configuration. It replaces a process-wide singleton:
// the embedding application creates one and hands it to the components that
// read it. All methods are safe for concurrent use.
type Handle struct {
	mu  sync.RWMutex
	cfg Config
}

// NewHandle returns a handle holding a copy of cfg.
func NewHandle(cfg Config) *Handle {
	return &Handle{cfg: cfg.Clone()}
}

// Snapshot returns a deep copy of the current configuration.
func (h *Handle) Snapshot() Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cfg.Clone()
}

// Read calls fn with the current configuration under a read lock.
// fn must not retain or modify cfg.
func (h *Handle) Read(fn func(cfg *Config)) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	fn(&h.cfg)
}

// Merge applies p, validates the result and stores it. On validation
// failure the current configuration is left unchanged. It returns the
// configuration before and after the merge.
func (h *Handle) Merge(p Partial) (prev, next Config, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	candidate := h.cfg.Apply(p)
	ApplyDefaults(&candidate)
	if err := Validate(&candidate); err != nil {
		return h.cfg.Clone(), h.cfg.Clone(), err
	}

	prev = h.cfg
	h.cfg = candidate
	return prev.Clone(), candidate.Clone(), nil
}

// Update mutates the configuration in place under the write lock.
// The result is validated; on failure the change is discarded.
func (h *Handle) Update(fn func(cfg *Config)) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	candidate := h.cfg.Clone()
	fn(&candidate)
	if err := Validate(&candidate); err != nil {
		return fmt.Errorf("rejected configuration update: %w", err)
	}
	h.cfg = candidate
	return nil
}
