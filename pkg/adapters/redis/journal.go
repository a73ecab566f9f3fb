package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/reachflow/funnel/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Journal implements ports.Journal on a Redis sorted set scored by recording time.
type Journal struct {
	client     *backend.Client
	key        string
	maxEntries int64
}

// JournalOption configures a Journal.
type JournalOption func(*Journal)

// WithKey sets the sorted set key.
func WithKey(key string) JournalOption {
	return func(j *Journal) {
		j.key = key
	}
}

// WithMaxEntries caps the journal; the oldest entries are trimmed on write. 0 keeps everything.
func WithMaxEntries(n int64) JournalOption {
	return func(j *Journal) {
		j.maxEntries = n
	}
}

// NewJournal creates a journal from an existing client.
func NewJournal(client *backend.Client, opts ...JournalOption) *Journal {
	j := &Journal{
		client: client,
		key:    "funnel:journal",
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Record stores the entry as JSON.
func (j *Journal) Record(ctx context.Context, entry domain.JournalEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal journal entry: %w", err)
	}

	pipe := j.client.TxPipeline()
	pipe.ZAdd(ctx, j.key, backend.Z{
		Score:  float64(entry.RecordedAt.UnixMilli()),
		Member: data,
	})
	if j.maxEntries > 0 {
		// Keep the newest maxEntries (ranks are ascending by score).
		pipe.ZRemRangeByRank(ctx, j.key, 0, -j.maxEntries-1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. A limit <= 0 returns everything.
func (j *Journal) Recent(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	raw, err := j.client.ZRevRange(ctx, j.key, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}

	entries := make([]domain.JournalEntry, 0, len(raw))
	for _, r := range raw {
		var entry domain.JournalEntry
		if err := json.Unmarshal([]byte(r), &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal journal entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
