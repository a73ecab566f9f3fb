package persistence_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/reachflow/funnel/pkg/adapters/memory"
	"github.com/reachflow/funnel/pkg/domain"
	"github.com/reachflow/funnel/pkg/persistence"
	"github.com/reachflow/funnel/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingJournal struct{}

func (failingJournal) Record(context.Context, domain.JournalEntry) error {
	return errors.New("disk full")
}
func (failingJournal) Recent(context.Context, int) ([]domain.JournalEntry, error) {
	return nil, nil
}

func returning(result domain.SubmissionResult, err error) ports.Submitter {
	return ports.SubmitterFunc(func(context.Context, domain.LeadRecord) (domain.SubmissionResult, error) {
		return result, err
	})
}

func TestRecorder_RecordsResolvedAttempts(t *testing.T) {
	ctx := context.Background()
	journal := memory.NewJournal()
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ok := domain.SubmissionResult{Outcome: domain.OutcomeSucceeded, StatusCode: 200, Reason: domain.ReasonStatusSuccess}

	rec := persistence.NewRecorder(returning(ok, nil), journal, persistence.WithClock(func() time.Time { return fixed }))

	result, err := rec.Submit(ctx, domain.LeadRecord{"source": "diagnostic", "city": "Rabat"})
	require.NoError(t, err)
	assert.Equal(t, ok, result)

	_, err = rec.ForFunnel("qualifier").Submit(ctx, domain.LeadRecord{"source": "ignored"})
	require.NoError(t, err)

	entries, err := journal.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	funnels := []string{entries[0].FunnelID, entries[1].FunnelID}
	assert.ElementsMatch(t, []string{"diagnostic", "qualifier"}, funnels)
	assert.NotEmpty(t, entries[0].ID)
	assert.NotEqual(t, entries[0].ID, entries[1].ID)
	assert.True(t, entries[0].RecordedAt.Equal(fixed))
}

func TestRecorder_SkipsDuplicates(t *testing.T) {
	ctx := context.Background()
	journal := memory.NewJournal()
	dup := domain.SubmissionResult{Outcome: domain.OutcomeFailed, Reason: domain.ReasonDuplicate}

	rec := persistence.NewRecorder(returning(dup, domain.ErrSubmissionInFlight), journal)
	_, err := rec.Submit(ctx, domain.LeadRecord{})
	assert.ErrorIs(t, err, domain.ErrSubmissionInFlight)

	entries, err := journal.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRecorder_RecordsMisconfiguration(t *testing.T) {
	ctx := context.Background()
	journal := memory.NewJournal()
	bad := domain.SubmissionResult{Outcome: domain.OutcomeFailed, Reason: domain.ReasonMisconfigured}

	rec := persistence.NewRecorder(returning(bad, domain.ErrMisconfigured), journal)
	_, err := rec.Submit(ctx, domain.LeadRecord{})
	assert.ErrorIs(t, err, domain.ErrMisconfigured)

	entries, err := journal.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ReasonMisconfigured, entries[0].Result.Reason)
}

func TestRecorder_JournalFailureIsIgnored(t *testing.T) {
	ok := domain.SubmissionResult{Outcome: domain.OutcomeSucceeded}
	rec := persistence.NewRecorder(returning(ok, nil), failingJournal{})

	result, err := rec.Submit(context.Background(), domain.LeadRecord{})
	require.NoError(t, err)
	assert.True(t, result.Succeeded())
}
