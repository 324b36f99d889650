package gen

import (
	"slices"
	"sync"
)

// Registry maps target identifiers to adapters. It is safe for concurrent
// use; targets are usually registered once at startup.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// DefaultRegistry is the process-wide registry used by engines that are
// not given one with WithRegistry.
var DefaultRegistry = NewRegistry()

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds a under its name. Registering a nil adapter, an empty name
// or an already registered name fails.
func (r *Registry) Register(a Adapter) error {
	if a == nil {
		return NewConfigError("Adapter", nil, "adapter cannot be nil")
	}
	name := a.Name()
	if name == "" {
		return NewConfigError("Adapter", nil, "adapter name cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.adapters[name]; ok {
		return NewConfigError("Adapter", name, "target already registered")
	}
	r.adapters[name] = a
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(a Adapter) {
	if err := r.Register(a); err != nil {
		panic(err)
	}
}

// Lookup returns the adapter registered for target, or a *TargetError.
func (r *Registry) Lookup(target string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[target]
	if !ok {
		return nil, NewTargetError(target, "no adapter registered")
	}
	return a, nil
}

// Has reports if target is registered.
func (r *Registry) Has(target string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.adapters[target]
	return ok
}

// Names returns the registered target identifiers in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Register adds a to the DefaultRegistry.
func Register(a Adapter) error { return DefaultRegistry.Register(a) }

// Lookup looks target up in the DefaultRegistry.
func Lookup(target string) (Adapter, error) { return DefaultRegistry.Lookup(target) }

// Targets returns the identifiers registered in the DefaultRegistry.
func Targets() []string { return DefaultRegistry.Names() }
