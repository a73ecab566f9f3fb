package runtime

import (
	"context"

	"github.com/reachflow/funnel/pkg/domain"
)

// Select records the option picked on the current choice step. It does not advance.
func (e *Engine) Select(ctx context.Context, state *domain.State, option string) (*domain.State, error) {
	if err := e.mutable(state); err != nil {
		return nil, err
	}
	step := e.funnel.Steps[state.CurrentIndex]
	if step.Kind != domain.StepChoice {
		return nil, domain.ErrWrongStepKind
	}
	if !step.HasOption(option) {
		return nil, domain.ErrUnknownOption
	}

	next := cloneState(state)
	next.PendingChoice = &option
	return next, nil
}

// SetField writes the value of the current input step immediately, so it survives backward navigation.
func (e *Engine) SetField(ctx context.Context, state *domain.State, key, value string) (*domain.State, error) {
	if err := e.mutable(state); err != nil {
		return nil, err
	}
	step := e.funnel.Steps[state.CurrentIndex]
	if step.Kind != domain.StepInput {
		return nil, domain.ErrWrongStepKind
	}
	if key != step.FieldKey {
		return nil, domain.ErrUnknownField
	}

	next := cloneState(state)
	next.InputAnswers[key] = value
	return next, nil
}

// Advance commits the current answer and moves to the next step.
// On the last step it submits instead.
// Returns domain.ErrNotReady when the current step has no answer.
func (e *Engine) Advance(ctx context.Context, state *domain.State) (*domain.State, error) {
	if err := e.mutable(state); err != nil {
		return nil, err
	}
	if !e.Ready(state) {
		return nil, domain.ErrNotReady
	}
	if e.IsFinal(state) {
		return e.Submit(ctx, state)
	}

	next := cloneState(state)
	if e.funnel.Steps[next.CurrentIndex].Kind == domain.StepChoice {
		next.ChoiceAnswers = append(next.ChoiceAnswers, *next.PendingChoice)
		next.PendingChoice = nil
	}
	// A failed attempt does not follow the visitor once they navigate away.
	next.Status = domain.StatusIdle

	e.emitStepLeave(ctx, next.CurrentIndex)
	next.CurrentIndex++
	e.emitStepEnter(ctx, next.CurrentIndex)

	e.logger.Debug("advanced", "index", next.CurrentIndex)
	return next, nil
}

// Retreat moves back one step. At the first step it is a no-op.
// When the step returned to is a choice step, its committed answer is popped back into
// PendingChoice so it is pre-selected. Input answers are kept.
func (e *Engine) Retreat(ctx context.Context, state *domain.State) (*domain.State, error) {
	if err := e.mutable(state); err != nil {
		return nil, err
	}
	if state.CurrentIndex == 0 {
		return cloneState(state), nil
	}

	next := cloneState(state)
	next.Status = domain.StatusIdle
	next.PendingChoice = nil

	e.emitStepLeave(ctx, next.CurrentIndex)
	next.CurrentIndex--
	if e.funnel.Steps[next.CurrentIndex].Kind == domain.StepChoice {
		if n := len(next.ChoiceAnswers); n > 0 {
			last := next.ChoiceAnswers[n-1]
			next.ChoiceAnswers = next.ChoiceAnswers[:n-1]
			next.PendingChoice = &last
		}
	}
	e.emitStepEnter(ctx, next.CurrentIndex)

	e.logger.Debug("retreated", "index", next.CurrentIndex)
	return next, nil
}
