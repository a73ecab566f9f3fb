package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/reachflow/funnel"
	"github.com/reachflow/funnel/internal/logging"
	"github.com/reachflow/funnel/pkg/domain"
)

// Runner handles the interaction loop of one visitor using the provided IO.
// It uses an IOHandler strategy to abstract the interaction mode (Text vs JSON).
type Runner struct {
	// Handler is the strategy for IO. If nil, a TextHandler over Input/Output is used.
	Handler IOHandler

	// Logger is used for internal debug logging.
	Logger *slog.Logger

	Input    io.Reader
	Output   io.Writer
	Renderer ContentRenderer
}

// NewRunner creates a new Runner with default Stdin/Stdout.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Input:  os.Stdin,
		Output: os.Stdout,
		Logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run loops until the lead is accepted, the input ends or ctx is cancelled.
// Leaving before the end is not an error: nothing is submitted.
func (r *Runner) Run(ctx context.Context, ctrl *funnel.Controller) error {
	handler := r.resolveHandler()

	for {
		view, err := ctrl.View(ctx)
		if err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		if view.Status == domain.StatusSucceeded {
			return handler.SystemOutput(ctx, "Thank you, your answers were received.")
		}

		if err := handler.Output(ctx, view); err != nil {
			return fmt.Errorf("output error: %w", err)
		}

		line, err := handler.Input(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				r.Logger.Debug("input closed before completion", "index", view.Index)
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		cmd, err := ParseCommand(view, line)
		if err == nil && cmd.Kind == CommandQuit {
			return nil
		}
		if err == nil {
			err = r.apply(ctx, ctrl, cmd)
		}
		if err != nil {
			r.Logger.Debug("transition refused", "index", view.Index, "err", err)
			if oerr := handler.SystemOutput(ctx, "Error: "+err.Error()); oerr != nil {
				return oerr
			}
		}
	}
}

func (r *Runner) apply(ctx context.Context, ctrl *funnel.Controller, cmd Command) error {
	switch cmd.Kind {
	case CommandBack:
		return ctrl.Retreat(ctx)
	case CommandSelect:
		if err := ctrl.Select(ctx, cmd.Option); err != nil {
			return err
		}
	case CommandAnswer:
		if err := ctrl.SetField(ctx, cmd.Key, cmd.Value); err != nil {
			return err
		}
	}
	return ctrl.Advance(ctx)
}

// resolveHandler ensures a valid IOHandler is set.
func (r *Runner) resolveHandler() IOHandler {
	if r.Handler != nil {
		return r.Handler
	}
	r.Handler = NewTextHandler(r.Input, r.Output, WithTextHandlerRenderer(r.Renderer))
	return r.Handler
}
