package models

import (
	"fmt"
	"sort"
	"sync"
)

// Factory builds a new, unsaved instance of a class.
type Factory func() *Instance

// Registry manages the available classes.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a class to the registry.
// If a class with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = fn
}

// Lookup returns the factory registered for name.
func (r *Registry) Lookup(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.factories[name]
	return fn, ok
}

// Has reports whether name is a registered class.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// New looks up a class by name and builds an instance of it.
// Returns ErrUnknownClass if the class is not registered.
func (r *Registry) New(name string) (*Instance, error) {
	fn, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClass, name)
	}
	return fn(), nil
}

// Names returns the registered class names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
