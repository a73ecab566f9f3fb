package funnel

import (
	"context"
	"errors"
	"fmt"

	"github.com/reachflow/funnel/pkg/domain"
)

// Action types understood by Apply.
const (
	ActionSelect   = "select"
	ActionSetField = "set_field"
	ActionAdvance  = "advance"
	ActionRetreat  = "retreat"
	ActionSubmit   = "submit"
)

// ErrUnknownAction is returned by Apply for an unsupported action type.
var ErrUnknownAction = errors.New("unknown action")

// Action is one serialized transition, as sent by remote clients.
type Action struct {
	Type   string `json:"type"`
	Option string `json:"option,omitempty"`
	Key    string `json:"key,omitempty"`
	Value  string `json:"value,omitempty"`
}

// Apply dispatches a serialized action to the matching transition.
func (e *Engine) Apply(ctx context.Context, state *domain.State, a Action) (*domain.State, error) {
	switch a.Type {
	case ActionSelect:
		return e.Select(ctx, state, a.Option)
	case ActionSetField:
		return e.SetField(ctx, state, a.Key, a.Value)
	case ActionAdvance:
		return e.Advance(ctx, state)
	case ActionRetreat:
		return e.Retreat(ctx, state)
	case ActionSubmit:
		return e.Submit(ctx, state)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
	}
}
