// Package booking recognizes the scheduler's "appointment booked" message and tells the host
// where to send the visitor next.
package booking

import (
	"encoding/json"
	"log/slog"

	"github.com/reachflow/funnel/internal/logging"
)

// EventScheduled is the cross-frame event the embedded scheduler posts after a booking.
const EventScheduled = "calendly.event_scheduled"

// DefaultThankYou is the destination used when none is configured.
const DefaultThankYou = "/ar/thank-you"

// Message is the data of a cross-frame message. Unknown fields are ignored.
type Message struct {
	Event   string         `json:"event"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Listener is a passive collaborator: it never touches funnel state.
type Listener struct {
	thankYou string
	logger   *slog.Logger
}

// Option configures a Listener.
type Option func(*Listener)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Listener) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewListener creates a listener routing to thankYou (DefaultThankYou when empty).
func NewListener(thankYou string, opts ...Option) *Listener {
	if thankYou == "" {
		thankYou = DefaultThankYou
	}
	l := &Listener{thankYou: thankYou, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ThankYou returns the configured destination.
func (l *Listener) ThankYou() string {
	return l.thankYou
}

// Handle returns the thank-you destination and true for a scheduled event; anything else is ignored.
func (l *Listener) Handle(msg Message) (string, bool) {
	if msg.Event != EventScheduled {
		return "", false
	}
	l.logger.Info("appointment scheduled", "redirect", l.thankYou)
	return l.thankYou, true
}

// HandleRaw decodes a raw message. Frames post all kinds of data; undecodable data is ignored.
func (l *Listener) HandleRaw(data []byte) (string, bool) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return "", false
	}
	return l.Handle(msg)
}
