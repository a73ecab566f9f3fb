package domain

// View is the read model of a State: everything a rendering layer needs, nothing it can change.
type View struct {
	FunnelID   string  `json:"funnel_id"`
	Index      int     `json:"index"`
	Total      int     `json:"total"`
	Progress   float64 `json:"progress"`
	Step       Step    `json:"step"`
	IsFinal    bool    `json:"is_final"`
	CanAdvance bool    `json:"can_advance"`
	CanRetreat bool    `json:"can_retreat"`

	// Selected is the pre-selected option of a choice step, if any.
	Selected string `json:"selected,omitempty"`
	// Value is the current value of an input step's field.
	Value string `json:"value,omitempty"`

	Status   SubmissionStatus `json:"status"`
	Redirect string           `json:"redirect,omitempty"`
}
