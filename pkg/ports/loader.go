package ports

import (
	"context"

	"github.com/reachflow/funnel/pkg/domain"
)

// FunnelLoader defines how the engine retrieves funnel definitions.
// This allows the storage layer (Loam, Memory) to be decoupled.
type FunnelLoader interface {
	// GetFunnel retrieves a funnel definition by ID.
	// Returns domain.ErrFunnelNotFound if the funnel does not exist.
	GetFunnel(ctx context.Context, id string) (domain.Funnel, error)

	// ListFunnels returns the IDs of all available funnels, sorted.
	ListFunnels(ctx context.Context) ([]string, error)
}
