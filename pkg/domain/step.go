package domain

// StepKind defines how a step collects its answer.
type StepKind string

const (
	// StepChoice asks the visitor to pick exactly one of a fixed set of options.
	StepChoice StepKind = "choice"
	// StepInput asks the visitor to type a free-text value bound to a field key.
	StepInput StepKind = "input"
)

// InputHint tells the rendering layer which kind of field to show.
// It is presentation-only and never validated by the engine.
type InputHint string

const (
	HintText  InputHint = "text"
	HintName  InputHint = "name"
	HintTel   InputHint = "tel"
	HintEmail InputHint = "email"
)

// KnownHints lists the hints a definition may use.
var KnownHints = []InputHint{HintText, HintName, HintTel, HintEmail}

// Step describes one question of the funnel.
type Step struct {
	Kind   StepKind `json:"kind" yaml:"kind"`
	Prompt string   `json:"prompt" yaml:"prompt"`

	// FieldKey is the Lead Record key the answer is stored under.
	// For input steps it also identifies the slot in State.InputAnswers.
	FieldKey string `json:"field_key" yaml:"field_key"`

	// Choice configuration
	Options []string `json:"options,omitempty" yaml:"options,omitempty"`

	// Input configuration (presentation-only)
	Placeholder string    `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	InputHint   InputHint `json:"input_hint,omitempty" yaml:"input_hint,omitempty"`
}

// HasOption reports whether option is one of the step's options.
func (s Step) HasOption(option string) bool {
	for _, o := range s.Options {
		if o == option {
			return true
		}
	}
	return false
}

// Funnel is an ordered, unbranching sequence of steps.
type Funnel struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
	Steps []Step `json:"steps" yaml:"steps"`

	// Destination is where the host sends the visitor once the lead is accepted
	// (typically the booking page).
	Destination string `json:"destination,omitempty" yaml:"destination,omitempty"`

	// Static holds fixed fields merged into every Lead Record (e.g. "source").
	Static map[string]string `json:"static,omitempty" yaml:"static,omitempty"`
}

// Total returns the number of steps.
func (f Funnel) Total() int {
	return len(f.Steps)
}

// ChoicesBefore counts the choice steps whose index is strictly lower than index.
func (f Funnel) ChoicesBefore(index int) int {
	n := 0
	for i := 0; i < index && i < len(f.Steps); i++ {
		if f.Steps[i].Kind == StepChoice {
			n++
		}
	}
	return n
}
