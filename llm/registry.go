package llm

import (
	"sort"
	"sync"

	"github.com/BaSui01/omniai/types"
)

// ProviderRegistry is a thread-safe registry of providers keyed by name.
// It also tracks an optional default provider for convenience.
type ProviderRegistry struct {
	providers       map[string]Provider
	defaultProvider string
	mu              sync.RWMutex
}

// NewProviderRegistry creates an empty ProviderRegistry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]Provider),
	}
}

// Register stores p under p.Name().
// If a provider with the same name already exists, it is replaced.
func (r *ProviderRegistry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Resolve returns the provider registered under name, or an
// ErrProviderNotSupported error carrying that name.
func (r *ProviderRegistry) Resolve(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	if !ok {
		return nil, types.NewProviderNotSupportedError(name)
	}
	return p, nil
}

// Text resolves name and checks that it advertises text generation.
func (r *ProviderRegistry) Text(name string) (TextProvider, error) {
	p, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}
	tp, ok := p.(TextProvider)
	if !ok || !p.Capabilities().Text {
		return nil, types.NewCapabilityError(name, string(CapabilityText))
	}
	return tp, nil
}

// Image resolves name and checks that it advertises image generation.
func (r *ProviderRegistry) Image(name string) (ImageProvider, error) {
	p, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}
	ip, ok := p.(ImageProvider)
	if !ok || !p.Capabilities().Image {
		return nil, types.NewCapabilityError(name, string(CapabilityImage))
	}
	return ip, nil
}

// Default returns the default provider.
func (r *ProviderRegistry) Default() (Provider, error) {
	r.mu.RLock()
	name := r.defaultProvider
	r.mu.RUnlock()
	if name == "" {
		return nil, types.NewError(types.ErrProviderNotSupported, "no default provider set")
	}
	return r.Resolve(name)
}

// DefaultName returns the configured default name, possibly empty.
func (r *ProviderRegistry) DefaultName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultProvider
}

// SetDefault designates an existing registered provider as the default.
func (r *ProviderRegistry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[name]; !ok {
		return types.NewProviderNotSupportedError(name)
	}
	r.defaultProvider = name
	return nil
}

// List returns the sorted names of all registered providers.
func (r *ProviderRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Unregister removes a provider and reports whether one was removed.
// If the removed provider was the default, the default is cleared.
func (r *ProviderRegistry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[name]; !ok {
		return false
	}
	delete(r.providers, name)
	if r.defaultProvider == name {
		r.defaultProvider = ""
	}
	return true
}

// Len returns the number of registered providers.
func (r *ProviderRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}
