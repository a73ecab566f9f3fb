package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/reachflow/funnel/pkg/domain"
)

// Loader implements ports.FunnelLoader using an in-memory map.
type Loader struct {
	funnels map[string]domain.Funnel
}

// NewLoader creates a loader serving the given funnels.
// It fails when two funnels share an ID or a funnel has none.
func NewLoader(funnels ...domain.Funnel) (*Loader, error) {
	data := make(map[string]domain.Funnel, len(funnels))
	for _, f := range funnels {
		if f.ID == "" {
			return nil, fmt.Errorf("funnel missing ID")
		}
		if _, ok := data[f.ID]; ok {
			return nil, fmt.Errorf("duplicate funnel ID: %s", f.ID)
		}
		data[f.ID] = f
	}
	return &Loader{funnels: data}, nil
}

// GetFunnel returns the funnel registered under id.
func (l *Loader) GetFunnel(ctx context.Context, id string) (domain.Funnel, error) {
	f, ok := l.funnels[id]
	if !ok {
		return domain.Funnel{}, fmt.Errorf("%w: %s", domain.ErrFunnelNotFound, id)
	}
	return f, nil
}

// ListFunnels returns all available funnel IDs.
func (l *Loader) ListFunnels(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(l.funnels))
	for k := range l.funnels {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}
