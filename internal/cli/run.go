package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/reachflow/funnel/internal/presentation/tui"
	"github.com/reachflow/funnel/pkg/domain"
	"github.com/reachflow/funnel/pkg/runner"
)

// RunOptions configures an interactive session.
type RunOptions struct {
	FunnelID string
	JSON     bool
	NoBanner bool
	Input    io.Reader
	Output   io.Writer
}

// RunSession walks one visitor through a funnel on the terminal (or as JSON lines)
// and prints the destination once the lead is accepted.
func RunSession(ctx context.Context, app *App, opts RunOptions) error {
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	var handler runner.IOHandler
	if opts.JSON {
		handler = runner.NewJSONHandler(opts.Input, opts.Output)
	} else {
		var renderOpts []runner.TextHandlerOption
		if f, ok := opts.Output.(*os.File); ok && tui.IsTerminal(f) {
			renderOpts = append(renderOpts, runner.WithTextHandlerRenderer(tui.NewRenderer()))
			if !opts.NoBanner {
				tui.PrintBanner(opts.Output)
			}
		}
		handler = runner.NewTextHandler(opts.Input, opts.Output, renderOpts...)
	}

	sending := domain.LifecycleHooks{
		OnSubmit: func(ctx context.Context, _ *domain.SubmissionEvent) {
			_ = handler.SystemOutput(ctx, "Sending your answers...")
		},
	}
	eng, err := app.Engine(opts.FunnelID, sending)
	if err != nil {
		return err
	}

	navigate := func(destination string) {
		_ = handler.SystemOutput(ctx, fmt.Sprintf("Continue at %s", destination))
	}
	ctrl := eng.NewController(ctx, navigate)

	r := runner.NewRunner(
		runner.WithLogger(app.Logger),
		runner.WithInputHandler(handler),
	)
	return r.Run(ctx, ctrl)
}
