package ports

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/reachflow/funnel/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunJournalContract runs a suite of tests to verify that a Journal implementation
// adheres to the defined interface contract. The journal must be empty.
func RunJournalContract(t *testing.T, journal Journal) {
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)

	t.Run("Record and Recent", func(t *testing.T) {
		entry := domain.JournalEntry{
			ID:       "contract-1",
			FunnelID: "qualifier",
			Lead:     domain.LeadRecord{"students": "Plus de 150 étudiants"},
			Result: domain.SubmissionResult{
				Outcome:    domain.OutcomeSucceeded,
				StatusCode: 200,
				Reason:     domain.ReasonStatusSuccess,
			},
			RecordedAt: base,
		}
		require.NoError(t, journal.Record(ctx, entry), "Record should not return error")

		entries, err := journal.Recent(ctx, 10)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "contract-1", entries[0].ID)
		assert.Equal(t, "qualifier", entries[0].FunnelID)
		assert.Equal(t, "Plus de 150 étudiants", entries[0].Lead["students"])
		assert.Equal(t, domain.OutcomeSucceeded, entries[0].Result.Outcome)
		assert.Equal(t, 200, entries[0].Result.StatusCode)
		assert.True(t, entries[0].RecordedAt.Equal(base))
	})

	t.Run("Newest First With Limit", func(t *testing.T) {
		for i, id := range []string{"contract-2", "contract-3"} {
			err := journal.Record(ctx, domain.JournalEntry{
				ID:         id,
				Lead:       domain.LeadRecord{},
				Result:     domain.SubmissionResult{Outcome: domain.OutcomeFailed, Reason: domain.ReasonTransport},
				RecordedAt: base.Add(time.Duration(i+1) * time.Minute),
			})
			require.NoError(t, err)
		}

		entries, err := journal.Recent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "contract-3", entries[0].ID)
		assert.Equal(t, "contract-2", entries[1].ID)
		assert.Equal(t, domain.OutcomeFailed, entries[0].Result.Outcome)
	})
}

// RunFunnelLoaderContract verifies that a FunnelLoader serves exactly the expected funnels.
func RunFunnelLoaderContract(t *testing.T, loader FunnelLoader, expected map[string]domain.Funnel) {
	t.Helper()
	ctx := context.Background()

	t.Run("GetFunnel_Success", func(t *testing.T) {
		for id, want := range expected {
			got, err := loader.GetFunnel(ctx, id)
			require.NoError(t, err, "unexpected error getting funnel %s", id)
			assert.Equal(t, want, got)
		}
	})

	t.Run("GetFunnel_NotFound", func(t *testing.T) {
		_, err := loader.GetFunnel(ctx, "non-existent-funnel")
		assert.ErrorIs(t, err, domain.ErrFunnelNotFound)
	})

	t.Run("ListFunnels", func(t *testing.T) {
		ids, err := loader.ListFunnels(ctx)
		require.NoError(t, err)

		want := make([]string, 0, len(expected))
		for id := range expected {
			want = append(want, id)
		}
		sort.Strings(want)
		assert.Equal(t, want, ids)
	})
}
