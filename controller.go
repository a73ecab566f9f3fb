package funnel

import (
	"context"
	"sync"

	"github.com/reachflow/funnel/internal/runtime"
	"github.com/reachflow/funnel/pkg/domain"
)

// Controller owns the state of a single visitor.
// Transitions are serialized; the lock is released while the lead is being submitted,
// so the view stays observable, and every mutation during that time is refused.
type Controller struct {
	mu       sync.Mutex
	engine   *runtime.Engine
	state    *domain.State
	navigate func(destination string)
}

// State returns a copy of the current state.
func (c *Controller) State() *domain.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Snapshot()
}

// View renders the current state.
func (c *Controller) View(ctx context.Context) (domain.View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Render(ctx, c.state)
}

// Select records a choice on the current step.
func (c *Controller) Select(ctx context.Context, option string) error {
	return c.apply(func(s *domain.State) (*domain.State, error) {
		return c.engine.Select(ctx, s, option)
	})
}

// SetField writes the value of the current input step.
func (c *Controller) SetField(ctx context.Context, key, value string) error {
	return c.apply(func(s *domain.State) (*domain.State, error) {
		return c.engine.SetField(ctx, s, key, value)
	})
}

// Retreat moves back one step.
func (c *Controller) Retreat(ctx context.Context) error {
	return c.apply(func(s *domain.State) (*domain.State, error) {
		return c.engine.Retreat(ctx, s)
	})
}

// Advance commits the current answer. On the last step it submits the lead.
func (c *Controller) Advance(ctx context.Context) error {
	c.mu.Lock()
	if err := c.checkReady(); err != nil {
		c.mu.Unlock()
		return err
	}
	if !c.engine.IsFinal(c.state) {
		defer c.mu.Unlock()
		next, err := c.engine.Advance(ctx, c.state)
		if err != nil {
			return err
		}
		c.state = next
		return nil
	}
	return c.submitLocked(ctx)
}

// Submit sends the lead from the last step.
// A failed submission is reported through the state, not the error.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	return c.submitLocked(ctx)
}

// submitLocked is entered with c.mu held and returns with it released.
func (c *Controller) submitLocked(ctx context.Context) error {
	pending, lead, err := c.engine.PrepareSubmit(ctx, c.state)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.state = pending
	c.mu.Unlock()

	result := c.engine.Dispatch(ctx, lead)

	c.mu.Lock()
	c.state = c.engine.CompleteSubmit(ctx, c.state, result)
	redirect := ""
	if c.state.Status == domain.StatusSucceeded {
		redirect = c.state.Redirect
	}
	c.mu.Unlock()

	if redirect != "" && c.navigate != nil {
		c.navigate(redirect)
	}
	return nil
}

func (c *Controller) checkReady() error {
	if err := c.engine.Check(c.state); err != nil {
		return err
	}
	switch c.state.Status {
	case domain.StatusSucceeded:
		return domain.ErrCompleted
	case domain.StatusInFlight:
		return domain.ErrSubmissionInFlight
	}
	if !c.engine.Ready(c.state) {
		return domain.ErrNotReady
	}
	return nil
}

func (c *Controller) apply(fn func(*domain.State) (*domain.State, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fn(c.state)
	if err != nil {
		return err
	}
	c.state = next
	return nil
}
