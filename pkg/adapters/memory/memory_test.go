package memory

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/reachflow/funnel/pkg/domain"
	"github.com/reachflow/funnel/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_Contract(t *testing.T) {
	funnels := map[string]domain.Funnel{
		"qualifier": {
			ID:    "qualifier",
			Steps: []domain.Step{{Kind: domain.StepChoice, Prompt: "Students?", FieldKey: "students", Options: []string{"A", "B"}}},
		},
		"diagnostic": {
			ID:    "diagnostic",
			Steps: []domain.Step{{Kind: domain.StepInput, Prompt: "Name", FieldKey: "name"}},
		},
	}

	loader, err := NewLoader(funnels["qualifier"], funnels["diagnostic"])
	require.NoError(t, err)

	ports.RunFunnelLoaderContract(t, loader, funnels)
}

func TestNewLoader_RejectsDuplicates(t *testing.T) {
	_, err := NewLoader(domain.Funnel{ID: "a"}, domain.Funnel{ID: "a"})
	assert.Error(t, err)

	_, err = NewLoader(domain.Funnel{})
	assert.Error(t, err)
}

func TestJournal_Contract(t *testing.T) {
	ports.RunJournalContract(t, NewJournal())
}

func TestJournal_Isolation(t *testing.T) {
	ctx := context.Background()
	j := NewJournal()

	lead := domain.LeadRecord{"name": "Amina"}
	require.NoError(t, j.Record(ctx, domain.JournalEntry{ID: "1", Lead: lead, RecordedAt: time.Now()}))
	lead["name"] = "changed"

	entries, err := j.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Amina", entries[0].Lead["name"])

	entries[0].Lead["name"] = "mutated"
	again, err := j.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "Amina", again[0].Lead["name"])
}

func TestJournal_CapacityDropsOldest(t *testing.T) {
	ctx := context.Background()
	j := NewJournal(WithCapacity(3))

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		require.NoError(t, j.Record(ctx, domain.JournalEntry{
			ID:         strconv.Itoa(i),
			RecordedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	entries, err := j.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"9", "8", "7"}, []string{entries[0].ID, entries[1].ID, entries[2].ID})
}

func TestJournal_DefaultCapacity(t *testing.T) {
	ctx := context.Background()
	j := NewJournal()

	for i := 0; i < DefaultCapacity+5; i++ {
		require.NoError(t, j.Record(ctx, domain.JournalEntry{ID: strconv.Itoa(i)}))
	}

	entries, err := j.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, DefaultCapacity)
}
