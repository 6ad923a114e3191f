package secret

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// ProviderFactory builds a Provider from its configuration block.
type ProviderFactory func(cfg map[string]any) (Provider, error)

// Registry maps provider names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]ProviderFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]ProviderFactory)}
}

// NewDefaultRegistry creates a registry with the env and file providers.
// The file provider reads its base directory from the "dir" key.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register("env", func(map[string]any) (Provider, error) {
		return EnvProvider{}, nil
	})
	_ = r.Register("file", func(cfg map[string]any) (Provider, error) {
		dir, _ := cfg["dir"].(string)
		return FileProvider{Dir: dir}, nil
	})
	return r
}

// Register adds a factory.
func (r *Registry) Register(name string, factory ProviderFactory) error {
	name = strings.TrimSpace(name)
	if name == "" || factory == nil {
		return ErrInvalidProvider
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateProvider, name)
	}
	r.factories[name] = factory
	return nil
}

// Create builds the named provider.
func (r *Registry) Create(name string, cfg map[string]any) (Provider, error) {
	r.mu.RLock()
	factory, ok := r.factories[strings.TrimSpace(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return factory(cfg)
}

// List returns the registered names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.factories))
}
