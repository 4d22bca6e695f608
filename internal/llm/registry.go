package llm

import (
	"fmt"
	"sync"

	"github.com/officedhq/officed/internal/config"
	"github.com/officedhq/officed/internal/logging"
)

// Registry manages provider clients and resolves backend tags to clients.
type Registry struct {
	mu       sync.RWMutex
	clients  map[string]Client // backend tag → client
	fallback string            // default backend tag
	offline  bool
	log      *logging.Logger
}

// NewRegistry creates an empty provider registry.
func NewRegistry(log *logging.Logger) *Registry {
	return &Registry{
		clients: make(map[string]Client),
		log:     log.Sub("llm.registry"),
	}
}

// Register adds a client under the given backend tag.
func (r *Registry) Register(tag string, client Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[tag] = client
	r.log.Info().Str("backend", tag).Msg("registered provider")
}

// SetFallback sets the default backend used when no tag matches.
func (r *Registry) SetFallback(tag string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = tag
}

// Resolve returns the Client for the given backend tag, falling back to
// the default backend when the tag is unknown.
func (r *Registry) Resolve(tag string) (Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.clients[tag]; ok {
		return c, nil
	}
	if r.fallback != "" {
		if c, ok := r.clients[r.fallback]; ok {
			return c, nil
		}
	}
	return nil, fmt.Errorf("no provider for backend %q", tag)
}

// ResolveImage returns an ImageClient for the given backend tag. Tags
// whose provider cannot generate images resolve to the first registered
// image-capable provider.
func (r *Registry) ResolveImage(tag string) (ImageClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.clients[tag]; ok {
		if ic, ok := c.(ImageClient); ok {
			return ic, nil
		}
	}
	for _, c := range r.clients {
		if ic, ok := c.(ImageClient); ok {
			return ic, nil
		}
	}
	return nil, fmt.Errorf("no image-capable provider registered")
}

// List returns all registered backend tags.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]string, 0, len(r.clients))
	for t := range r.clients {
		tags = append(tags, t)
	}
	return tags
}

// Offline reports whether the registry is running in degraded offline
// mode (no credential was available at build time).
func (r *Registry) Offline() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.offline
}

// NewRegistryFromConfig builds a Registry from the configured backends.
// When no backend has a usable credential, the registry degrades to a
// single offline provider with canned outputs — this is a first-class
// mode, not an error.
func NewRegistryFromConfig(cfg config.BackendsConfig, log *logging.Logger) *Registry {
	reg := NewRegistry(log)

	if cfg.Claude.APIKey != "" {
		reg.Register("claude", NewClaudeAPIClient(cfg.Claude.APIKey, cfg.Claude.Model))
		reg.SetFallback("claude")
	}
	if cfg.Gemini.APIKey != "" {
		reg.Register("gemini", NewGeminiAPIClient(cfg.Gemini.APIKey, cfg.Gemini.Model))
		if reg.fallback == "" {
			reg.SetFallback("gemini")
		}
	}
	if cfg.Ollama.Enabled {
		reg.Register("ollama", NewOllamaAPIClient(cfg.Ollama.Endpoint, cfg.Ollama.Model))
		if reg.fallback == "" {
			reg.SetFallback("ollama")
		}
	}

	if len(reg.clients) == 0 {
		reg.Register("offline", NewOfflineClient())
		reg.SetFallback("offline")
		reg.offline = true
		log.Warn().Msg("no backend credentials configured — running in offline mode")
	}

	return reg
}
