// Package dispatch is the policy layer of the generation boundary: it
// resolves an agent's runtime backend configuration, enforces the
// credential boundary, and owns the single automatic retry in the
// system (the web-search fallback).
package dispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/officedhq/officed/internal/domain"
	"github.com/officedhq/officed/internal/llm"
	"github.com/officedhq/officed/internal/logging"
	"github.com/officedhq/officed/internal/roster"
)

// maxImageReferences bounds the inline reference images per request.
const maxImageReferences = 14

var validResolutions = map[string]bool{"": true, "1K": true, "2K": true, "4K": true}

// Options tune a single GenerateText call.
type Options struct {
	Temperature *float64
	MaxTokens   int
	WebSearch   bool
}

// RuntimeConfigs is the mutable per-agent backend override table.
// Defaults fall back to the agent's static roster entry.
type RuntimeConfigs struct {
	mu        sync.RWMutex
	overrides map[string]domain.RuntimeConfig
}

// NewRuntimeConfigs creates an empty override table.
func NewRuntimeConfigs() *RuntimeConfigs {
	return &RuntimeConfigs{overrides: make(map[string]domain.RuntimeConfig)}
}

// Set stores an override for an agent.
func (r *RuntimeConfigs) Set(cfg domain.RuntimeConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overrides[cfg.AgentID] = cfg
}

// Get returns the override for an agent, if any.
func (r *RuntimeConfigs) Get(agentID string) (domain.RuntimeConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.overrides[agentID]
	return cfg, ok
}

// Clear removes an agent's override.
func (r *RuntimeConfigs) Clear(agentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.overrides, agentID)
}

// Dispatcher issues generation calls on behalf of agents.
type Dispatcher struct {
	registry *llm.Registry
	roster   *roster.Roster
	configs  *RuntimeConfigs
	log      *logging.Logger
}

// New creates a Dispatcher.
func New(registry *llm.Registry, ros *roster.Roster, configs *RuntimeConfigs, log *logging.Logger) *Dispatcher {
	if configs == nil {
		configs = NewRuntimeConfigs()
	}
	return &Dispatcher{
		registry: registry,
		roster:   ros,
		configs:  configs,
		log:      log.Sub("dispatch"),
	}
}

// Configs returns the runtime override table.
func (d *Dispatcher) Configs() *RuntimeConfigs {
	return d.configs
}

// Offline reports whether the dispatcher is running against the canned
// offline provider.
func (d *Dispatcher) Offline() bool {
	return d.registry.Offline()
}

// resolve computes the concrete backend, model, and endpoint for an agent.
func (d *Dispatcher) resolve(agentID string) (backend, model, endpoint string, err error) {
	agent, ok := d.roster.Get(agentID)
	if !ok {
		return "", "", "", fmt.Errorf("unknown agent %q", agentID)
	}
	backend, model = agent.Backend, agent.Model
	if override, ok := d.configs.Get(agentID); ok {
		if override.Backend != "" {
			backend = override.Backend
		}
		if override.Model != "" {
			model = override.Model
		}
		endpoint = override.Endpoint
	}
	return backend, model, endpoint, nil
}

// client returns the provider client for the resolved backend. A custom
// endpoint builds a dedicated Ollama client; other backends have fixed
// endpoints.
func (d *Dispatcher) client(backend, model, endpoint string) (llm.Client, error) {
	if endpoint != "" && backend == "ollama" {
		return llm.NewOllamaAPIClient(endpoint, model), nil
	}
	client, err := d.registry.Resolve(backend)
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: backend,
			Code:     401,
			Message:  "no credential configured for backend",
		}
	}
	return client, nil
}

// GenerateText issues one completion on behalf of an agent.
//
// Fallback rule: a call that requested web-search augmentation and
// failed is retried exactly once with the augmentation removed before
// the error surfaces. Non-augmented failures are not retried.
func (d *Dispatcher) GenerateText(ctx context.Context, agentID, instructions, input string, opts Options) (string, error) {
	backend, model, endpoint, err := d.resolve(agentID)
	if err != nil {
		return "", err
	}
	client, err := d.client(backend, model, endpoint)
	if err != nil {
		return "", err
	}

	req := llm.CompletionRequest{
		Model:       model,
		System:      instructions,
		Input:       input,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		WebSearch:   opts.WebSearch,
	}

	resp, err := client.Complete(ctx, req)
	if err != nil && opts.WebSearch {
		d.log.Warn().
			Str("agent", agentID).
			Str("backend", client.Name()).
			Err(err).
			Msg("augmented call failed, retrying without web search")
		req.WebSearch = false
		resp, err = client.Complete(ctx, req)
	}
	if err != nil {
		return "", err
	}
	if resp.Text == "" {
		return "", &llm.ProviderError{
			Provider: client.Name(),
			Message:  "response contained no usable text",
		}
	}

	d.log.Debug().
		Str("agent", agentID).
		Str("backend", client.Name()).
		Str("model", model).
		Dur("duration", resp.Duration).
		Msg("generation complete")

	return resp.Text, nil
}

// GenerateImage issues one image generation call.
func (d *Dispatcher) GenerateImage(ctx context.Context, req llm.ImageRequest) (*llm.ImageResponse, error) {
	if len(req.References) > maxImageReferences {
		return nil, fmt.Errorf("too many reference images: %d (max %d)", len(req.References), maxImageReferences)
	}
	if !validResolutions[req.Resolution] {
		return nil, fmt.Errorf("invalid resolution %q (1K, 2K, 4K)", req.Resolution)
	}

	client, err := d.registry.ResolveImage("gemini")
	if err != nil {
		return nil, err
	}

	resp, err := client.GenerateImage(ctx, req)
	if err != nil && req.WebSearch {
		d.log.Warn().Err(err).Msg("augmented image call failed, retrying without web search")
		req.WebSearch = false
		resp, err = client.GenerateImage(ctx, req)
	}
	return resp, err
}
