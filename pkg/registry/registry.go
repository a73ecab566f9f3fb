// Package registry caches one engine per funnel definition.
// Adapters that serve several funnels (HTTP, MCP) resolve engines through it.
package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/reachflow/funnel"
	"github.com/reachflow/funnel/pkg/ports"
)

// OptionsFunc returns the engine options for a funnel, e.g. a submitter bound to its ID.
type OptionsFunc func(funnelID string) []funnel.Option

// Registry manages the engines of a loader.
type Registry struct {
	loader  ports.FunnelLoader
	options OptionsFunc

	mu      sync.RWMutex
	engines map[string]*funnel.Engine
}

// New creates an empty registry. options may be nil.
func New(loader ports.FunnelLoader, options OptionsFunc) *Registry {
	return &Registry{
		loader:  loader,
		options: options,
		engines: make(map[string]*funnel.Engine),
	}
}

// Engine returns the engine of funnel id, loading and validating the definition on first use.
func (r *Registry) Engine(ctx context.Context, id string) (*funnel.Engine, error) {
	r.mu.RLock()
	eng, ok := r.engines[id]
	r.mu.RUnlock()
	if ok {
		return eng, nil
	}

	def, err := r.loader.GetFunnel(ctx, id)
	if err != nil {
		return nil, err
	}
	opts := []funnel.Option{funnel.WithFunnel(def)}
	if r.options != nil {
		opts = append(opts, r.options(id)...)
	}
	eng, err = funnel.New("", id, opts...)
	if err != nil {
		return nil, fmt.Errorf("funnel %s: %w", id, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.engines[id]; ok {
		return existing, nil
	}
	r.engines[id] = eng
	return eng, nil
}

// List returns the funnel IDs known to the loader.
func (r *Registry) List(ctx context.Context) ([]string, error) {
	return r.loader.ListFunnels(ctx)
}

// Reset drops every cached engine. Definitions are reloaded on next use.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engines = make(map[string]*funnel.Engine)
}
