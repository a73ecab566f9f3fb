package graph

import (
	"fmt"
	"strings"

	"github.com/reachflow/funnel/pkg/domain"
)

// GraphOverlay contains visitor state to visualize on the graph.
type GraphOverlay struct {
	// Current is the index of the displayed step; -1 means none.
	Current int
	// Visited is the number of steps already left behind (0..Current).
	Visited int
	// Submitted marks the submission node as reached.
	Submitted bool
}

// OverlayFromState derives the overlay of a visitor state.
func OverlayFromState(s *domain.State) *GraphOverlay {
	if s == nil {
		return nil
	}
	if s.Status == domain.StatusSucceeded {
		return &GraphOverlay{Current: -1, Visited: s.CurrentIndex + 1, Submitted: true}
	}
	return &GraphOverlay{Current: s.CurrentIndex, Visited: s.CurrentIndex}
}

// GenerateMermaid produces a Mermaid flowchart of a funnel.
// Steps form a single chain:
// - Choice: {Rhombus}, the edge carries the option count
// - Input: [/Parallelogram/]
// - Submission: ((Circle)), then the destination as [[Subroutine]]
// It also applies overlay styles (Visited/Current) if provided.
func GenerateMermaid(f domain.Funnel, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for i, step := range f.Steps {
		id := stepID(i)
		switch step.Kind {
		case domain.StepChoice:
			fmt.Fprintf(&sb, "    %s{\"%s\"}\n", id, label(step.Prompt))
		default:
			fmt.Fprintf(&sb, "    %s[/\"%s <br/> %s\"/]\n", id, label(step.Prompt), label(step.FieldKey))
		}
	}
	sb.WriteString("    submit((\"submit\"))\n")
	if f.Destination != "" {
		fmt.Fprintf(&sb, "    destination[[\"%s\"]]\n", label(f.Destination))
	}

	for i, step := range f.Steps {
		to := "submit"
		if i+1 < len(f.Steps) {
			to = stepID(i + 1)
		}
		if step.Kind == domain.StepChoice {
			fmt.Fprintf(&sb, "    %s -- \"%d options\" --> %s\n", stepID(i), len(step.Options), to)
			continue
		}
		fmt.Fprintf(&sb, "    %s --> %s\n", stepID(i), to)
	}
	if f.Destination != "" {
		sb.WriteString("    submit -. \"success\" .-> destination\n")
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		for i := 0; i < overlay.Visited && i < len(f.Steps); i++ {
			fmt.Fprintf(&sb, "    class %s visited;\n", stepID(i))
		}
		if overlay.Submitted {
			sb.WriteString("    class submit current;\n")
		} else if overlay.Current >= 0 && overlay.Current < len(f.Steps) {
			fmt.Fprintf(&sb, "    class %s current;\n", stepID(overlay.Current))
		}
	}

	return sb.String()
}

func stepID(i int) string {
	return fmt.Sprintf("step%d", i)
}

// label makes text safe inside a quoted Mermaid label.
func label(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.ReplaceAll(s, "\n", " ")
}
