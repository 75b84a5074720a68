package ai

import (
	"fmt"
	"strings"
	"sync"

	"gemini_chat/pkg/config"
)

// ProviderType names a completion backend in llm_provider.
type ProviderType string

const (
	ProviderGoogle ProviderType = "google"
	ProviderOpenAI ProviderType = "openai"
)

// ProviderConfig is what a factory receives.
type ProviderConfig struct {
	Type   ProviderType
	Config config.Config
}

// ProviderFactory builds a Provider.
type ProviderFactory func(cfg ProviderConfig) (Provider, error)

// ProviderInfo describes a registered backend.
type ProviderInfo struct {
	Type        ProviderType
	Name        string
	Description string
	RequiresKey bool
}

type registration struct {
	info    ProviderInfo
	factory ProviderFactory
}

// Registry maps provider types to factories. Providers register
// themselves from init functions.
type Registry struct {
	mu      sync.RWMutex
	entries map[ProviderType]registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[ProviderType]registration)}
}

// Register adds or replaces a provider.
func (r *Registry) Register(info ProviderInfo, factory ProviderFactory) {
	r.mu.Lock()
	r.entries[info.Type] = registration{info: info, factory: factory}
	r.mu.Unlock()
}

// Lookup returns the info of a registered provider.
func (r *Registry) Lookup(t ProviderType) (ProviderInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[t]
	return e.info, ok
}

// GetProvider builds the provider named by cfg.Type.
func (r *Registry) GetProvider(cfg ProviderConfig) (Provider, error) {
	r.mu.RLock()
	e, ok := r.entries[cfg.Type]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
	if e.info.RequiresKey && strings.TrimSpace(cfg.Config.ActiveAPIKey()) == "" {
		return nil, fmt.Errorf("%s: %w", cfg.Type, ErrMissingAPIKey)
	}
	return e.factory(cfg)
}

// DefaultRegistry holds the providers compiled into the binary.
var DefaultRegistry = NewRegistry()

// RegisterProvider registers with DefaultRegistry.
func RegisterProvider(info ProviderInfo, factory ProviderFactory) {
	DefaultRegistry.Register(info, factory)
}

// GetProviderFromConfig builds the provider selected by llm_provider.
// Unknown names fall back to Google. A provider that needs a key and has
// none returns ErrMissingAPIKey.
func GetProviderFromConfig(cfg config.Config) (Provider, error) {
	name, ok := config.ValidateProvider(cfg.LLMProvider)
	if !ok {
		name = string(ProviderGoogle)
	}
	cfg.LLMProvider = name
	return DefaultRegistry.GetProvider(ProviderConfig{Type: ProviderType(name), Config: cfg})
}
