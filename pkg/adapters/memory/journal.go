package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/reachflow/funnel/pkg/domain"
)

// DefaultCapacity is the number of entries kept when no capacity is set.
const DefaultCapacity = 10000

// Journal implements ports.Journal in memory, keeping the newest entries up to its capacity.
// Safe for concurrent use.
type Journal struct {
	entries  []domain.JournalEntry
	capacity int
	mu       sync.RWMutex
}

// JournalOption configures a Journal.
type JournalOption func(*Journal)

// WithCapacity caps the number of entries; the oldest are dropped on write. 0 keeps everything.
func WithCapacity(n int) JournalOption {
	return func(j *Journal) {
		if n >= 0 {
			j.capacity = n
		}
	}
}

// NewJournal creates a new in-memory journal holding at most DefaultCapacity entries.
func NewJournal(opts ...JournalOption) *Journal {
	j := &Journal{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Record appends a copy of the entry.
func (j *Journal) Record(ctx context.Context, entry domain.JournalEntry) error {
	entry.Lead = entry.Lead.Clone()

	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
	if over := len(j.entries) - j.capacity; j.capacity > 0 && over > 0 {
		clear(j.entries[:over])
		j.entries = j.entries[over:]
	}
	return nil
}

// Recent returns up to limit entries, newest first. A limit <= 0 returns everything.
func (j *Journal) Recent(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	j.mu.RLock()
	out := make([]domain.JournalEntry, len(j.entries))
	copy(out, j.entries)
	j.mu.RUnlock()

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].RecordedAt.After(out[b].RecordedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	for i := range out {
		out[i].Lead = out[i].Lead.Clone()
	}
	return out, nil
}
