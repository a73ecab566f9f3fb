package runner

import (
	"fmt"
	"strings"

	"github.com/reachflow/funnel/pkg/domain"
)

// FormatView renders a view as markdown.
func FormatView(v domain.View) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### Step %d of %d\n\n", v.Index+1, v.Total)
	fmt.Fprintf(&b, "**%s**\n\n", v.Step.Prompt)

	switch v.Step.Kind {
	case domain.StepChoice:
		for i, opt := range v.Step.Options {
			mark := ""
			if opt == v.Selected {
				mark = " (selected)"
			}
			fmt.Fprintf(&b, "%d. %s%s\n", i+1, opt, mark)
		}
	case domain.StepInput:
		if v.Value != "" {
			fmt.Fprintf(&b, "Current answer: `%s`\n", v.Value)
		} else if v.Step.Placeholder != "" {
			fmt.Fprintf(&b, "_%s_\n", v.Step.Placeholder)
		}
	}

	if v.Status == domain.StatusFailed {
		b.WriteString("\n> The submission failed. Press Enter to try again.\n")
	}
	if v.CanRetreat {
		b.WriteString("\nType `:back` to go back.\n")
	}
	return b.String()
}
