package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the funnel banner, colored for the terminal profile.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{` ___________________ `, "#34d399"},
		{` \                 / `, "#2dd4bf"},
		{`  \   f u n n e l /  `, "#22d3ee"},
		{`   \_____________/   `, "#38bdf8"},
		{`        |   |        `, "#60a5fa"},
		{`        |___|        `, "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
