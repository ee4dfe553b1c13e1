package dbinfo

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// ProviderRegistry stores providers by file extension.
type ProviderRegistry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewProviderRegistry creates an empty registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{providers: make(map[string]Provider)}
}

// Register adds a provider for one or more extensions (".db" or "db").
func (r *ProviderRegistry) Register(provider Provider, extensions ...string) error {
	if provider == nil {
		return NewError(KindValidation, "provider is required", nil)
	}
	if len(extensions) == 0 {
		return NewError(KindValidation, "at least one extension is required", nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range extensions {
		key := normalizeExtension(ext)
		if key == "" {
			return NewError(KindValidation, "extension is required", nil)
		}
		if _, exists := r.providers[key]; exists {
			return NewError(KindValidation, fmt.Sprintf("provider for %q already registered", key), nil)
		}
		r.providers[key] = provider
	}
	return nil
}

// Resolve returns the provider registered for the extension of path.
func (r *ProviderRegistry) Resolve(path string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	provider, ok := r.providers[normalizeExtension(filepath.Ext(path))]
	return provider, ok
}

// Open resolves the provider for path and opens it, so a registry can be
// used wherever a Provider is expected.
func (r *ProviderRegistry) Open(ctx context.Context, path string) (Conn, error) {
	provider, ok := r.Resolve(path)
	if !ok {
		return nil, NewError(KindConnection, fmt.Sprintf("no provider for database file %q", filepath.Base(path)), nil)
	}
	return provider.Open(ctx, path)
}

func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
