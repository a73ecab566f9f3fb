package domain

// SubmissionStatus tracks the lifecycle of the final submission.
type SubmissionStatus string

const (
	StatusIdle      SubmissionStatus = "idle"      // No submission attempted (or editable again)
	StatusInFlight  SubmissionStatus = "in_flight" // Waiting for the gateway
	StatusSucceeded SubmissionStatus = "succeeded" // Terminal: lead accepted
	StatusFailed    SubmissionStatus = "failed"    // Last attempt failed, visitor may retry
)

// State is the snapshot of one visitor's traversal of a funnel.
// It is a plain value: the engine never mutates a State it receives, it returns a new one.
type State struct {
	// FunnelID identifies the funnel this state belongs to.
	FunnelID string `json:"funnel_id"`

	// CurrentIndex is the zero-based index of the displayed step.
	CurrentIndex int `json:"current_index"`

	// ChoiceAnswers holds one committed answer per completed choice step, in step order.
	ChoiceAnswers []string `json:"choice_answers"`

	// InputAnswers maps field keys to typed values. Entries survive backward navigation.
	InputAnswers map[string]string `json:"input_answers"`

	// PendingChoice is the option selected on the current step, not yet committed.
	PendingChoice *string `json:"pending_choice,omitempty"`

	// Status is the submission status.
	Status SubmissionStatus `json:"status"`

	// Redirect is set once the submission succeeds.
	Redirect string `json:"redirect,omitempty"`
}

// NewState creates the initial state for a funnel.
func NewState(funnelID string) *State {
	return &State{
		FunnelID:      funnelID,
		ChoiceAnswers: []string{},
		InputAnswers:  make(map[string]string),
		Status:        StatusIdle,
	}
}

// Snapshot returns a deep copy of the state.
func (s *State) Snapshot() *State {
	if s == nil {
		return nil
	}
	out := *s
	out.ChoiceAnswers = append([]string{}, s.ChoiceAnswers...)
	out.InputAnswers = make(map[string]string, len(s.InputAnswers))
	for k, v := range s.InputAnswers {
		out.InputAnswers[k] = v
	}
	if s.PendingChoice != nil {
		p := *s.PendingChoice
		out.PendingChoice = &p
	}
	return &out
}

// Terminal reports whether the state has reached its sink (lead accepted).
func (s *State) Terminal() bool {
	return s.Status == StatusSucceeded
}
