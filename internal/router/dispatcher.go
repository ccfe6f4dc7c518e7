// Package router owns the provider dispatch layer: adapter construction,
// per-provider health tracking, and the execution of a selected model.
package router

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/agenticlabs/smartrouter/internal/config"
	"github.com/agenticlabs/smartrouter/internal/router/adapters"
	"github.com/agenticlabs/smartrouter/internal/types"
)

// ErrNoAdapter wraps the one fatal, unrecoverable per-request condition: the
// finally-chosen provider has no configured adapter. This is a deployment
// misconfiguration, reported to the caller rather than retried.
type ErrNoAdapter struct {
	Provider string
}

func (e *ErrNoAdapter) Error() string {
	return fmt.Sprintf("no provider adapter configured for %q", e.Provider)
}

// Registry manages provider adapters.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]adapters.ProviderAdapter
}

func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[string]adapters.ProviderAdapter),
	}
}

func (r *Registry) Register(name string, adapter adapters.ProviderAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[name] = adapter
}

func (r *Registry) Get(name string) (adapters.ProviderAdapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[name]
	return a, ok
}

// ReplaceAll swaps in a whole adapter set under the write lock. Config reload
// uses this while request goroutines keep calling Get on the same registry.
func (r *Registry) ReplaceAll(set map[string]adapters.ProviderAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters = set
}

// BuildAdapters constructs provider adapters from the providers config.
func BuildAdapters(provCfg *config.ProvidersConfig) map[string]adapters.ProviderAdapter {
	set := make(map[string]adapters.ProviderAdapter, len(provCfg.Providers))
	for name, cfg := range provCfg.Providers {
		client := &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        cfg.MaxConcurrent,
				MaxIdleConnsPerHost: cfg.MaxConcurrent,
				IdleConnTimeout:     90 * time.Second,
				ForceAttemptHTTP2:   true,
			},
		}

		switch cfg.Type {
		case "ollama":
			set[name] = adapters.NewOllamaAdapter(name, cfg, client)
		default:
			// OpenAI-compatible is the lingua franca for everything else
			set[name] = adapters.NewOpenAIAdapter(name, cfg, client)
		}
	}
	return set
}

// BuildFromConfig builds a registry holding the configured provider adapters.
func BuildFromConfig(provCfg *config.ProvidersConfig) *Registry {
	registry := NewRegistry()
	registry.ReplaceAll(BuildAdapters(provCfg))
	return registry
}

// Dispatcher executes a selection against the matching provider adapter and
// feeds the outcome into health tracking.
type Dispatcher struct {
	registry *Registry
	health   *HealthTracker
}

func NewDispatcher(registry *Registry, health *HealthTracker) *Dispatcher {
	return &Dispatcher{registry: registry, health: health}
}

// Dispatch runs the prompt on the selected provider and model. The returned
// usage is what the decision core consumes for cost and risk accounting.
func (d *Dispatcher) Dispatch(ctx context.Context, sel types.SelectionResult, prompt string, params adapters.Params) (*adapters.Result, error) {
	adapter, ok := d.registry.Get(sel.Provider)
	if !ok {
		return nil, &ErrNoAdapter{Provider: sel.Provider}
	}

	result, err := adapter.Execute(ctx, sel.Model, prompt, params)
	if err != nil {
		if d.health != nil {
			d.health.RecordFailure(sel.Provider)
		}
		return nil, fmt.Errorf("dispatch to %s: %w", sel.Provider, err)
	}
	if d.health != nil {
		d.health.RecordSuccess(sel.Provider)
	}
	return result, nil
}

// Usage converts an adapter result into the core's usage record.
func Usage(res *adapters.Result) types.Usage {
	return types.Usage{
		PromptTokens:     res.PromptTokens,
		CompletionTokens: res.CompletionTokens,
		LatencyMs:        res.LatencyMs,
		ReportedCostUSD:  res.ReportedCostUSD,
	}
}
