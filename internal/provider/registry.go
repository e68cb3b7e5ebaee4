package provider

import (
	"fmt"
	"sync"

	"github.com/planpilot/planpilot/internal/errors"
)

// Factory constructs a provider adapter from target-specific options
type Factory func(options map[string]string) (Provider, error)

// Registry maps target names to adapter factories. The CLI resolves the
// configured target through it; the engine never touches it.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds an adapter factory under a target name
func (r *Registry) Register(name string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("target %s already registered", name)
	}

	r.factories[name] = factory
	return nil
}

// Open constructs the adapter registered under the target name
func (r *Registry) Open(name string, options map[string]string) (Provider, error) {
	r.mu.RLock()
	factory, exists := r.factories[name]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.New(errors.ErrCodeProviderNotFound,
			fmt.Sprintf("target %s not found (registered: %v)", name, r.List()))
	}

	return factory(options)
}

// List returns all registered target names
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}
