package translate

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultProviderName используется, если провайдер не задан.
const DefaultProviderName = "google"

// Registry хранит провайдеров и разрешает провайдера по умолчанию.
type Registry struct {
	providers       map[string]Provider
	defaultProvider string
}

// NewRegistry создаёт пустой реестр.
func NewRegistry(defaultProvider string) *Registry {
	normalizedDefault := normalizeProviderName(defaultProvider)
	if normalizedDefault == "" {
		normalizedDefault = DefaultProviderName
	}
	return &Registry{
		providers:       make(map[string]Provider),
		defaultProvider: normalizedDefault,
	}
}

// Register добавляет провайдера.
func (r *Registry) Register(provider Provider) error {
	if provider == nil {
		return fmt.Errorf("provider is nil")
	}
	name := normalizeProviderName(provider.Name())
	if name == "" {
		return fmt.Errorf("provider name is required")
	}
	r.providers[name] = provider
	return nil
}

// Provider возвращает провайдера по имени; пустое имя означает провайдера по умолчанию.
func (r *Registry) Provider(name string) (Provider, error) {
	if len(r.providers) == 0 {
		return nil, fmt.Errorf("no translation providers are registered")
	}

	resolvedName := normalizeProviderName(name)
	if resolvedName == "" {
		resolvedName = r.defaultProvider
	}
	if provider, ok := r.providers[resolvedName]; ok {
		return provider, nil
	}
	return nil, fmt.Errorf("translation provider %q is not registered (available: %s)", resolvedName, strings.Join(r.ProviderNames(), ", "))
}

// DefaultProvider возвращает имя провайдера по умолчанию.
func (r *Registry) DefaultProvider() string {
	return r.defaultProvider
}

// ProviderNames возвращает отсортированные имена провайдеров.
func (r *Registry) ProviderNames() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizeProviderName(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
