package agent

import (
	"fmt"
	"slices"
	"sync"
)

// Factory builds a Completer for a provider from the merged Config.
type Factory func(cfg Config) (Completer, error)

var (
	providersMu sync.RWMutex
	providers   = make(map[string]Factory)
)

// RegisterProvider makes a provider available to NewCompleter. Provider
// packages call it from init.
func RegisterProvider(name string, factory Factory) error {
	if name == "" {
		return ErrEmptyProvider
	}
	if factory == nil {
		return fmt.Errorf("agent: nil factory for provider %s", name)
	}

	providersMu.Lock()
	defer providersMu.Unlock()

	if _, exists := providers[name]; exists {
		return fmt.Errorf("%w: %s", ErrProviderExists, name)
	}

	providers[name] = factory
	return nil
}

// Providers lists registered provider names, sorted.
func Providers() []string {
	providersMu.RLock()
	defer providersMu.RUnlock()

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// NewCompleter instantiates the provider named by cfg.Provider.
func NewCompleter(cfg Config) (Completer, error) {
	merged := DefaultConfig()
	merged.Merge(&cfg)

	providersMu.RLock()
	factory, exists := providers[merged.Provider]
	providersMu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, merged.Provider)
	}

	completer, err := factory(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider %q: %w", merged.Provider, err)
	}
	return completer, nil
}

// FromConfig is NewCompleter followed by New.
func FromConfig(cfg Config, opts ...Option) (*Agent, error) {
	completer, err := NewCompleter(cfg)
	if err != nil {
		return nil, err
	}
	return New(completer, cfg, opts...)
}
