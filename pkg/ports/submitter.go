package ports

import (
	"context"

	"github.com/reachflow/funnel/pkg/domain"
)

// Submitter forwards a Lead Record and resolves the backend's answer into a binary outcome.
//
// A resolved failure (including transport errors) is reported through the result, not the error.
// The error is reserved for conditions the caller must treat differently from an ordinary
// failure, such as a missing destination or a duplicate in-flight submission.
type Submitter interface {
	Submit(ctx context.Context, lead domain.LeadRecord) (domain.SubmissionResult, error)
}

// SubmitterFunc adapts a function to the Submitter interface.
type SubmitterFunc func(ctx context.Context, lead domain.LeadRecord) (domain.SubmissionResult, error)

// Submit calls f(ctx, lead).
func (f SubmitterFunc) Submit(ctx context.Context, lead domain.LeadRecord) (domain.SubmissionResult, error) {
	return f(ctx, lead)
}
