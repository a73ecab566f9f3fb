package domain

import "time"

// LeadRecord is the flat payload forwarded to the record-keeping backend.
type LeadRecord map[string]string

// Clone returns a copy of the record.
func (l LeadRecord) Clone() LeadRecord {
	out := make(LeadRecord, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

// Outcome is the binary result of a submission.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// Resolution reasons, used for logging, metrics and the journal.
const (
	ReasonStatusSuccess     = "status_success"
	ReasonStatusMismatch    = "status_mismatch"
	ReasonUnstructured2xx   = "unstructured_2xx"
	ReasonUnstructuredNon2x = "unstructured_non_2xx"
	ReasonTransport         = "transport"
	ReasonMisconfigured     = "misconfigured"
	ReasonDuplicate         = "duplicate"
)

// SubmissionResult is the normalized answer of the gateway.
type SubmissionResult struct {
	Outcome Outcome `json:"outcome"`

	// Weak is true when success was inferred from the transport status only.
	Weak bool `json:"weak,omitempty"`

	StatusCode int    `json:"status_code,omitempty"`
	Reason     string `json:"reason"`
}

// Succeeded reports whether the lead was accepted.
func (r SubmissionResult) Succeeded() bool {
	return r.Outcome == OutcomeSucceeded
}

// JournalEntry records one submission attempt after resolution.
type JournalEntry struct {
	ID         string           `json:"id"`
	FunnelID   string           `json:"funnel_id,omitempty"`
	Lead       LeadRecord       `json:"lead"`
	Result     SubmissionResult `json:"result"`
	RecordedAt time.Time        `json:"recorded_at"`
}
