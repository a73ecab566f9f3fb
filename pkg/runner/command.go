package runner

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/reachflow/funnel/pkg/domain"
)

// CommandKind is the kind of a parsed line.
type CommandKind int

const (
	CommandAdvance CommandKind = iota
	CommandBack
	CommandQuit
	CommandSelect
	CommandAnswer
)

// Command is a line of input resolved against the current step.
type Command struct {
	Kind   CommandKind
	Option string // CommandSelect
	Key    string // CommandAnswer
	Value  string // CommandAnswer
}

// ParseCommand interprets a line for the given view.
func ParseCommand(view domain.View, line string) (Command, error) {
	line = strings.TrimSpace(line)
	switch strings.ToLower(line) {
	case "":
		return Command{Kind: CommandAdvance}, nil
	case ":back", ":b":
		return Command{Kind: CommandBack}, nil
	case ":quit", ":q":
		return Command{Kind: CommandQuit}, nil
	}

	// Bare words are answers on input steps; "Exit" is a valid name.
	step := view.Step
	if step.Kind == domain.StepInput {
		return Command{Kind: CommandAnswer, Key: step.FieldKey, Value: line}, nil
	}
	if l := strings.ToLower(line); l == "exit" || l == "quit" {
		return Command{Kind: CommandQuit}, nil
	}

	if n, err := strconv.Atoi(line); err == nil {
		if n < 1 || n > len(step.Options) {
			return Command{}, fmt.Errorf("%w: choose between 1 and %d", domain.ErrUnknownOption, len(step.Options))
		}
		return Command{Kind: CommandSelect, Option: step.Options[n-1]}, nil
	}
	for _, opt := range step.Options {
		if strings.EqualFold(opt, line) {
			return Command{Kind: CommandSelect, Option: opt}, nil
		}
	}
	return Command{}, fmt.Errorf("%w: %q", domain.ErrUnknownOption, line)
}
