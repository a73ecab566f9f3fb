package runtime

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/reachflow/funnel/pkg/domain"
)

var errNoSubmitter = errors.New("no submitter configured")

// Submit sends the Lead Record built from the state and returns the resolved state.
// A failed submission is not an error: the returned state carries StatusFailed and the
// visitor may retry. Errors are returned only when the state does not allow a submission.
func (e *Engine) Submit(ctx context.Context, state *domain.State) (*domain.State, error) {
	pending, lead, err := e.PrepareSubmit(ctx, state)
	if err != nil {
		return nil, err
	}
	result := e.Dispatch(ctx, lead)
	return e.CompleteSubmit(ctx, pending, result), nil
}

// PrepareSubmit validates the submission precondition and returns the in-flight state
// together with the Lead Record to send.
// Callers that hold a lock (Controller) release it between PrepareSubmit and CompleteSubmit.
func (e *Engine) PrepareSubmit(ctx context.Context, state *domain.State) (*domain.State, domain.LeadRecord, error) {
	if err := e.mutable(state); err != nil {
		return nil, nil, err
	}
	if !e.IsFinal(state) {
		return nil, nil, domain.ErrNotFinalStep
	}
	if !e.Ready(state) {
		return nil, nil, domain.ErrNotReady
	}

	next := cloneState(state)
	next.Status = domain.StatusInFlight
	lead := e.BuildLead(next)

	e.emitSubmit(ctx, len(lead))
	return next, lead, nil
}

// Dispatch hands the lead to the submitter and normalizes every failure into a result.
func (e *Engine) Dispatch(ctx context.Context, lead domain.LeadRecord) domain.SubmissionResult {
	start := e.now()

	var (
		result domain.SubmissionResult
		err    error
	)
	if e.submitter == nil {
		err = errNoSubmitter
	} else {
		result, err = e.submitter.Submit(ctx, lead)
	}

	if err != nil {
		result = domain.SubmissionResult{Outcome: domain.OutcomeFailed, Reason: failureReason(err)}
		e.logger.Error("submission not delivered", "reason", result.Reason, "error", err)
	} else {
		e.logger.Info("submission resolved", "outcome", result.Outcome, "reason", result.Reason, "weak", result.Weak)
	}

	e.emitResult(ctx, len(lead), result, e.now().Sub(start), err)
	return result
}

// CompleteSubmit applies a resolved result to an in-flight state.
// On success the last answer is committed and the redirect is set exactly once.
func (e *Engine) CompleteSubmit(ctx context.Context, state *domain.State, result domain.SubmissionResult) *domain.State {
	next := cloneState(state)
	if !result.Succeeded() {
		next.Status = domain.StatusFailed
		return next
	}

	if e.funnel.Steps[next.CurrentIndex].Kind == domain.StepChoice && next.PendingChoice != nil {
		next.ChoiceAnswers = append(next.ChoiceAnswers, *next.PendingChoice)
		next.PendingChoice = nil
	}
	next.Status = domain.StatusSucceeded
	next.Redirect = e.funnel.Destination

	e.emitStepLeave(ctx, next.CurrentIndex)
	return next
}

// BuildLead flattens a state into a Lead Record.
// Static fields come first so that visitor answers win on a key clash.
// The pending choice of the current step is included without being committed.
func (e *Engine) BuildLead(state *domain.State) domain.LeadRecord {
	lead := make(domain.LeadRecord, len(e.funnel.Static)+len(e.funnel.Steps))
	for k, v := range e.funnel.Static {
		lead[k] = v
	}

	ordinal := 0
	for i, step := range e.funnel.Steps {
		switch step.Kind {
		case domain.StepChoice:
			if ordinal < len(state.ChoiceAnswers) {
				lead[choiceKey(step, ordinal)] = state.ChoiceAnswers[ordinal]
			} else if i == state.CurrentIndex && state.PendingChoice != nil {
				lead[choiceKey(step, ordinal)] = *state.PendingChoice
			}
			ordinal++
		case domain.StepInput:
			if v, ok := state.InputAnswers[step.FieldKey]; ok {
				lead[step.FieldKey] = strings.TrimSpace(v)
			}
		}
	}
	return lead
}

// choiceKey names the Lead Record slot of a choice answer.
// Choice steps without a field key fall back to their position among choices.
func choiceKey(step domain.Step, ordinal int) string {
	if step.FieldKey != "" {
		return step.FieldKey
	}
	return "choice_" + strconv.Itoa(ordinal+1)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrSubmissionInFlight):
		return domain.ReasonDuplicate
	case errors.Is(err, domain.ErrMisconfigured), errors.Is(err, errNoSubmitter):
		return domain.ReasonMisconfigured
	}
	return domain.ReasonTransport
}
