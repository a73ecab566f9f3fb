package runtime

import (
	"context"
	"time"

	"github.com/reachflow/funnel/pkg/domain"
)

func (e *Engine) base(t domain.EventType) domain.EventBase {
	return domain.EventBase{
		Timestamp: e.now(),
		Type:      t,
		FunnelID:  e.funnel.ID,
	}
}

func (e *Engine) stepEvent(t domain.EventType, index int) *domain.StepEvent {
	step := e.funnel.Steps[index]
	return &domain.StepEvent{
		EventBase: e.base(t),
		Index:     index,
		Kind:      step.Kind,
		FieldKey:  step.FieldKey,
	}
}

func (e *Engine) emitStepEnter(ctx context.Context, index int) {
	if e.hooks.OnStepEnter == nil {
		return
	}
	e.hooks.OnStepEnter(ctx, e.stepEvent(domain.EventStepEnter, index))
}

func (e *Engine) emitStepLeave(ctx context.Context, index int) {
	if e.hooks.OnStepLeave == nil {
		return
	}
	e.hooks.OnStepLeave(ctx, e.stepEvent(domain.EventStepLeave, index))
}

func (e *Engine) emitSubmit(ctx context.Context, fields int) {
	if e.hooks.OnSubmit == nil {
		return
	}
	e.hooks.OnSubmit(ctx, &domain.SubmissionEvent{
		EventBase: e.base(domain.EventSubmit),
		Fields:    fields,
	})
}

func (e *Engine) emitResult(ctx context.Context, fields int, result domain.SubmissionResult, took time.Duration, err error) {
	if e.hooks.OnResult == nil {
		return
	}
	e.hooks.OnResult(ctx, &domain.SubmissionEvent{
		EventBase: e.base(domain.EventResult),
		Fields:    fields,
		Result:    &result,
		Duration:  took,
		Err:       err,
	})
}
