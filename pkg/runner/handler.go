package runner

import (
	"context"

	"github.com/reachflow/funnel/pkg/domain"
)

// IOHandler defines the strategy for interacting with the visitor.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Output presents the current step.
	Output(ctx context.Context, view domain.View) error

	// Input reads one line from the visitor.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message (errors, submission status).
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms markdown before it is written (e.g. glamour to ANSI).
type ContentRenderer func(string) (string, error)
