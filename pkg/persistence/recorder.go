// Package persistence records resolved submissions in a ports.Journal.
// Wrappers for the journal itself (masking, encryption) live in the middleware subpackage.
package persistence

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/reachflow/funnel/internal/logging"
	"github.com/reachflow/funnel/pkg/domain"
	"github.com/reachflow/funnel/pkg/ports"
)

// SourceField is the lead key used as funnel ID when the submission is not bound to a funnel.
const SourceField = "source"

// Recorder is a ports.Submitter decorator that journals every resolved attempt.
// Journal failures are logged and never change the submission result.
type Recorder struct {
	next     ports.Submitter
	journal  ports.Journal
	funnelID string
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		r.now = now
	}
}

// NewRecorder wraps next.
func NewRecorder(next ports.Submitter, journal ports.Journal, opts ...Option) *Recorder {
	r := &Recorder{
		next:    next,
		journal: journal,
		logger:  logging.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ForFunnel returns a copy bound to a funnel ID.
func (r *Recorder) ForFunnel(id string) *Recorder {
	bound := *r
	bound.funnelID = id
	return &bound
}

// Submit forwards the lead and records the outcome.
// Duplicate rejections are not attempts and are not recorded.
func (r *Recorder) Submit(ctx context.Context, lead domain.LeadRecord) (domain.SubmissionResult, error) {
	result, err := r.next.Submit(ctx, lead)
	if errors.Is(err, domain.ErrSubmissionInFlight) {
		return result, err
	}

	funnelID := r.funnelID
	if funnelID == "" {
		funnelID = lead[SourceField]
	}
	entry := domain.JournalEntry{
		ID:         uuid.NewString(),
		FunnelID:   funnelID,
		Lead:       lead,
		Result:     result,
		RecordedAt: r.now().UTC(),
	}
	// The request context may already be cancelled by the time the backend answered.
	if jerr := r.journal.Record(context.WithoutCancel(ctx), entry); jerr != nil {
		r.logger.Warn("failed to journal submission", "id", entry.ID, "err", jerr)
	}
	return result, err
}
