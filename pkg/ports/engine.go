package ports

import (
	"context"

	"github.com/reachflow/funnel/pkg/domain"
)

// StatelessEngine defines the interface for funnel cores that do not maintain internal state.
// This is the primary interface used by adapters (e.g., HTTP, MCP) that receive the state per request.
type StatelessEngine interface {
	// Start returns the initial state.
	Start(ctx context.Context) *domain.State

	// Render calculates the view for a given state without changing it.
	Render(ctx context.Context, state *domain.State) (domain.View, error)

	Select(ctx context.Context, state *domain.State, option string) (*domain.State, error)
	SetField(ctx context.Context, state *domain.State, key, value string) (*domain.State, error)
	Advance(ctx context.Context, state *domain.State) (*domain.State, error)
	Retreat(ctx context.Context, state *domain.State) (*domain.State, error)
	Submit(ctx context.Context, state *domain.State) (*domain.State, error)

	// Inspect returns the funnel definition for introspection.
	Inspect() domain.Funnel
}
