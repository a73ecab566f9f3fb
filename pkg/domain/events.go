package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepEnter EventType = "step_enter"
	EventStepLeave EventType = "step_leave"
	EventSubmit    EventType = "submit"
	EventResult    EventType = "result"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	FunnelID  string    `json:"funnel_id"`
}

// StepEvent represents entry into or exit from a step.
type StepEvent struct {
	EventBase
	Index    int      `json:"index"`
	Kind     StepKind `json:"kind"`
	FieldKey string   `json:"field_key,omitempty"`
}

// SubmissionEvent represents a submission attempt and, for EventResult, its outcome.
type SubmissionEvent struct {
	EventBase
	Fields   int               `json:"fields"`
	Result   *SubmissionResult `json:"result,omitempty"`
	Duration time.Duration     `json:"duration,omitempty"`
	Err      error             `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnStepEnter func(context.Context, *StepEvent)
	OnStepLeave func(context.Context, *StepEvent)
	OnSubmit    func(context.Context, *SubmissionEvent)
	OnResult    func(context.Context, *SubmissionEvent)
}
