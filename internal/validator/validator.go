package validator

import (
	"context"
	"fmt"
	"strings"

	"github.com/reachflow/funnel/pkg/domain"
	"github.com/reachflow/funnel/pkg/ports"
)

// Error lists every problem found in one funnel definition.
type Error struct {
	FunnelID string
	Problems []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("funnel %q: found %d errors:\n- %s", e.FunnelID, len(e.Problems), strings.Join(e.Problems, "\n- "))
}

// Validate checks that a funnel definition can be driven by the engine.
// It returns nil or an *Error.
func Validate(f domain.Funnel) error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(f.ID) == "" {
		add("missing id")
	}
	if len(f.Steps) == 0 {
		add("funnel has no steps")
	}

	keys := make(map[string]int)
	for i, step := range f.Steps {
		if strings.TrimSpace(step.Prompt) == "" {
			add("step %d: empty prompt", i)
		}

		switch step.Kind {
		case domain.StepChoice:
			if len(step.Options) == 0 {
				add("step %d: choice step without options", i)
			}
			seen := make(map[string]bool, len(step.Options))
			for _, opt := range step.Options {
				if strings.TrimSpace(opt) == "" {
					add("step %d: empty option", i)
				}
				if seen[opt] {
					add("step %d: duplicate option %q", i, opt)
				}
				seen[opt] = true
			}
		case domain.StepInput:
			if step.FieldKey == "" {
				add("step %d: input step without field key", i)
			}
			if step.InputHint != "" && !knownHint(step.InputHint) {
				add("step %d: unknown input hint %q", i, step.InputHint)
			}
		default:
			add("step %d: unknown kind %q", i, step.Kind)
		}

		if step.FieldKey == "" {
			continue
		}
		if prev, ok := keys[step.FieldKey]; ok {
			add("step %d: field key %q already used by step %d", i, step.FieldKey, prev)
			continue
		}
		keys[step.FieldKey] = i
	}

	for k := range f.Static {
		if i, ok := keys[k]; ok {
			add("static field %q shadows the answer of step %d", k, i)
		}
	}

	if len(problems) > 0 {
		return &Error{FunnelID: f.ID, Problems: problems}
	}
	return nil
}

// ValidateLoader validates every funnel a loader serves and returns the first failure.
func ValidateLoader(ctx context.Context, loader ports.FunnelLoader) error {
	ids, err := loader.ListFunnels(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		f, err := loader.GetFunnel(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load funnel %s: %w", id, err)
		}
		if err := Validate(f); err != nil {
			return err
		}
	}
	return nil
}

func knownHint(h domain.InputHint) bool {
	for _, k := range domain.KnownHints {
		if k == h {
			return true
		}
	}
	return false
}
