package ports

import (
	"context"

	"github.com/reachflow/funnel/pkg/domain"
)

// Journal records resolved submission attempts.
type Journal interface {
	// Record appends an entry.
	Record(ctx context.Context, entry domain.JournalEntry) error

	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]domain.JournalEntry, error)
}
