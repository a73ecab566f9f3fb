package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/reachflow/funnel/pkg/domain"
)

// TextHandler prints views as markdown (optionally rendered) and reads one answer per line.
type TextHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer ContentRenderer

	lines chan line
	once  sync.Once
}

type line struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// NewTextHandler reads from r and writes to w (stdin and stdout when nil).
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{Reader: bufio.NewReader(r), Writer: w}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// readLines runs in its own goroutine so that Input can give up on cancellation
// while a read is blocked. The channel is closed at EOF.
func (h *TextHandler) readLines() {
	defer close(h.lines)
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" {
			h.lines <- line{text: text}
		}
		switch {
		case err == io.EOF:
			return
		case err != nil:
			h.lines <- line{err: err}
			return
		}
	}
}

func (h *TextHandler) Output(ctx context.Context, view domain.View) error {
	doc := FormatView(view)
	if h.Renderer != nil {
		if rendered, err := h.Renderer(doc); err == nil {
			doc = rendered
		}
	}
	_, err := fmt.Fprintln(h.Writer, strings.TrimSpace(doc))
	return err
}

// Input prompts until a line passes SanitizeInput. Rejected lines are reported and asked again.
func (h *TextHandler) Input(ctx context.Context) (string, error) {
	h.once.Do(func() {
		h.lines = make(chan line)
		go h.readLines()
	})

	for ctx.Err() == nil {
		fmt.Fprint(h.Writer, "> ")

		var l line
		var ok bool
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case l, ok = <-h.lines:
		}
		if !ok {
			return "", io.EOF
		}
		if l.err != nil {
			return "", l.err
		}

		clean, err := SanitizeInput(strings.TrimSpace(l.text))
		if err != nil {
			fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
			continue
		}
		return clean, nil
	}
	return "", ctx.Err()
}

func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	_, err := fmt.Fprintf(h.Writer, "\n[System] %s\n", msg)
	return err
}
