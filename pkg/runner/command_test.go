package runner

import (
	"io"
	"testing"

	"github.com/reachflow/funnel/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	choice := domain.View{Step: domain.Step{Kind: domain.StepChoice, FieldKey: "size", Options: []string{"Small", "Large"}}}
	input := domain.View{Step: domain.Step{Kind: domain.StepInput, FieldKey: "name"}}

	tests := []struct {
		name string
		view domain.View
		line string
		want Command
	}{
		{"Empty Advances", choice, "  ", Command{Kind: CommandAdvance}},
		{"Back", input, ":back", Command{Kind: CommandBack}},
		{"Quit", choice, "EXIT", Command{Kind: CommandQuit}},
		{"Colon Quit On Input", input, ":q", Command{Kind: CommandQuit}},
		{"Exit Is An Answer", input, "Exit", Command{Kind: CommandAnswer, Key: "name", Value: "Exit"}},
		{"Quit Is An Answer", input, "quit", Command{Kind: CommandAnswer, Key: "name", Value: "quit"}},
		{"Number", choice, "2", Command{Kind: CommandSelect, Option: "Large"}},
		{"Option Text", choice, "small", Command{Kind: CommandSelect, Option: "Small"}},
		{"Answer", input, " Ana Benali ", Command{Kind: CommandAnswer, Key: "name", Value: "Ana Benali"}},
		{"Numeric Answer", input, "42", Command{Kind: CommandAnswer, Key: "name", Value: "42"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCommand(tt.view, tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseCommand(choice, "3")
	assert.ErrorIs(t, err, domain.ErrUnknownOption)
	_, err = ParseCommand(choice, "Medium")
	assert.ErrorIs(t, err, domain.ErrUnknownOption)
}

func TestFormatView(t *testing.T) {
	v := domain.View{
		Index: 1, Total: 3,
		Step:       domain.Step{Kind: domain.StepChoice, Prompt: "Size?", Options: []string{"Small", "Large"}},
		Selected:   "Large",
		CanRetreat: true,
		Status:     domain.StatusFailed,
	}
	out := FormatView(v)
	assert.Contains(t, out, "### Step 2 of 3")
	assert.Contains(t, out, "**Size?**")
	assert.Contains(t, out, "1. Small\n2. Large (selected)\n")
	assert.Contains(t, out, "The submission failed")
	assert.Contains(t, out, ":back")

	in := domain.View{Index: 0, Total: 1, Step: domain.Step{Kind: domain.StepInput, Prompt: "Email", Placeholder: "you@example.com"}}
	assert.Contains(t, FormatView(in), "_you@example.com_")
	assert.NotContains(t, FormatView(in), ":back")
}

func TestTextHandler_RetriesInvalidInput(t *testing.T) {
	pr, pw := io.Pipe()
	go func() {
		pw.Write([]byte("\xff\n"))
		pw.Write([]byte("ok\n"))
		pw.Close()
	}()
	var out safeBuffer
	h := NewTextHandler(pr, &out)

	got, err := h.Input(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Contains(t, out.String(), "invalid UTF-8")

	_, err = h.Input(t.Context())
	assert.ErrorIs(t, err, io.EOF)
}
