package observability

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/reachflow/funnel/pkg/domain"
)

// Hooks builds lifecycle hooks that log every event and, when m is not nil, record metrics.
// Lead values never reach the log, only the field count.
func Hooks(logger *slog.Logger, m *Metrics) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			logger.Debug("step_enter", "funnel", e.FunnelID, "index", e.Index, "kind", e.Kind)
			if m != nil {
				m.StepVisits.WithLabelValues(e.FunnelID, strconv.Itoa(e.Index)).Inc()
			}
		},
		OnStepLeave: func(ctx context.Context, e *domain.StepEvent) {
			logger.Debug("step_leave", "funnel", e.FunnelID, "index", e.Index)
		},
		OnSubmit: func(ctx context.Context, e *domain.SubmissionEvent) {
			logger.Info("submit", "funnel", e.FunnelID, "fields", e.Fields)
		},
		OnResult: func(ctx context.Context, e *domain.SubmissionEvent) {
			attrs := []any{"funnel", e.FunnelID, "outcome", e.Result.Outcome, "reason", e.Result.Reason, "duration", e.Duration}
			if e.Err != nil {
				logger.Error("submission_result", append(attrs, "error", e.Err)...)
			} else {
				logger.Info("submission_result", attrs...)
			}
			if m != nil {
				m.Submissions.WithLabelValues(e.FunnelID, string(e.Result.Outcome), e.Result.Reason).Inc()
			}
		},
	}
}

// Chain merges several hook sets; each callback runs in order.
func Chain(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, s := range sets {
		out.OnStepEnter = chainStep(out.OnStepEnter, s.OnStepEnter)
		out.OnStepLeave = chainStep(out.OnStepLeave, s.OnStepLeave)
		out.OnSubmit = chainSubmission(out.OnSubmit, s.OnSubmit)
		out.OnResult = chainSubmission(out.OnResult, s.OnResult)
	}
	return out
}

func chainStep(a, b func(context.Context, *domain.StepEvent)) func(context.Context, *domain.StepEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *domain.StepEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainSubmission(a, b func(context.Context, *domain.SubmissionEvent)) func(context.Context, *domain.SubmissionEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *domain.SubmissionEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
