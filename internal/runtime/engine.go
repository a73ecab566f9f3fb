package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/reachflow/funnel/internal/logging"
	"github.com/reachflow/funnel/pkg/domain"
	"github.com/reachflow/funnel/pkg/ports"
)

// Engine is the core funnel state machine.
// It is stateless: every transition receives a State and returns a new one, leaving the input untouched.
type Engine struct {
	funnel    domain.Funnel
	submitter ports.Submitter
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	now       func() time.Time
}

// EngineOption defines a functional option for configuring the Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides the time source used for events.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an engine for a single funnel definition.
// The submitter receives the Lead Record when the last step is completed.
func NewEngine(funnel domain.Funnel, submitter ports.Submitter, opts ...EngineOption) *Engine {
	e := &Engine{
		funnel:    funnel,
		submitter: submitter,
		logger:    logging.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("funnel", funnel.ID)
	return e
}

// Inspect returns the funnel definition.
func (e *Engine) Inspect() domain.Funnel {
	return e.funnel
}

// Start creates the initial state and triggers the enter hook of the first step.
func (e *Engine) Start(ctx context.Context) *domain.State {
	state := domain.NewState(e.funnel.ID)
	e.emitStepEnter(ctx, 0)
	return state
}

// Render builds the view of a state without transitioning.
func (e *Engine) Render(ctx context.Context, state *domain.State) (domain.View, error) {
	if err := e.Check(state); err != nil {
		return domain.View{}, err
	}

	step := e.funnel.Steps[state.CurrentIndex]
	total := e.funnel.Total()
	editable := state.Status != domain.StatusInFlight && !state.Terminal()

	view := domain.View{
		FunnelID:   e.funnel.ID,
		Index:      state.CurrentIndex,
		Total:      total,
		Progress:   float64(state.CurrentIndex+1) / float64(total),
		Step:       step,
		IsFinal:    e.IsFinal(state),
		CanAdvance: editable && e.Ready(state),
		CanRetreat: editable && state.CurrentIndex > 0,
		Status:     state.Status,
	}
	if state.Terminal() {
		view.Redirect = e.funnel.Destination
	}

	switch step.Kind {
	case domain.StepChoice:
		if state.PendingChoice != nil {
			view.Selected = *state.PendingChoice
		}
	case domain.StepInput:
		view.Value = state.InputAnswers[step.FieldKey]
	}

	return view, nil
}

// IsFinal reports whether the state is on the last step.
func (e *Engine) IsFinal(state *domain.State) bool {
	return state.CurrentIndex == e.funnel.Total()-1
}

// Ready reports whether the precondition for leaving the current step holds.
func (e *Engine) Ready(state *domain.State) bool {
	step := e.funnel.Steps[state.CurrentIndex]
	switch step.Kind {
	case domain.StepChoice:
		return state.PendingChoice != nil
	case domain.StepInput:
		return strings.TrimSpace(state.InputAnswers[step.FieldKey]) != ""
	}
	return false
}

// Check verifies that a state is consistent with the funnel.
// States coming from outside the process (HTTP, MCP) must pass it before any transition.
func (e *Engine) Check(state *domain.State) error {
	if state == nil {
		return fmt.Errorf("%w: nil state", domain.ErrInvalidState)
	}
	if state.FunnelID != e.funnel.ID {
		return fmt.Errorf("%w: state belongs to funnel %q, engine serves %q", domain.ErrInvalidState, state.FunnelID, e.funnel.ID)
	}
	total := e.funnel.Total()
	if state.CurrentIndex < 0 || state.CurrentIndex >= total {
		return fmt.Errorf("%w: index %d outside [0, %d)", domain.ErrInvalidState, state.CurrentIndex, total)
	}

	switch state.Status {
	case domain.StatusIdle, domain.StatusInFlight, domain.StatusSucceeded, domain.StatusFailed:
	default:
		return fmt.Errorf("%w: unknown status %q", domain.ErrInvalidState, state.Status)
	}
	// Only the funnel decides where a finished visitor goes.
	if state.Redirect != "" && (!state.Terminal() || state.Redirect != e.funnel.Destination) {
		return fmt.Errorf("%w: redirect %q does not match funnel %q", domain.ErrInvalidState, state.Redirect, e.funnel.ID)
	}

	step := e.funnel.Steps[state.CurrentIndex]
	expected := e.funnel.ChoicesBefore(state.CurrentIndex)
	// A final choice step is committed only once the lead was accepted.
	if state.Terminal() && step.Kind == domain.StepChoice && e.IsFinal(state) {
		expected++
	}
	if len(state.ChoiceAnswers) != expected {
		return fmt.Errorf("%w: %d choice answers recorded, %d expected at step %d",
			domain.ErrInvalidState, len(state.ChoiceAnswers), expected, state.CurrentIndex)
	}

	if state.PendingChoice != nil {
		if step.Kind != domain.StepChoice {
			return fmt.Errorf("%w: pending choice on input step %d", domain.ErrInvalidState, state.CurrentIndex)
		}
		if !step.HasOption(*state.PendingChoice) {
			return fmt.Errorf("%w: pending choice %q is not offered by step %d", domain.ErrInvalidState, *state.PendingChoice, state.CurrentIndex)
		}
	}
	return nil
}

// mutable returns an error when the state does not accept transitions.
func (e *Engine) mutable(state *domain.State) error {
	if err := e.Check(state); err != nil {
		return err
	}
	switch state.Status {
	case domain.StatusSucceeded:
		return domain.ErrCompleted
	case domain.StatusInFlight:
		return domain.ErrSubmissionInFlight
	}
	return nil
}

// cloneState creates a deep copy whose collections are never nil.
func cloneState(src *domain.State) *domain.State {
	next := src.Snapshot()
	if next.InputAnswers == nil {
		next.InputAnswers = make(map[string]string)
	}
	if next.ChoiceAnswers == nil {
		next.ChoiceAnswers = []string{}
	}
	return next
}
