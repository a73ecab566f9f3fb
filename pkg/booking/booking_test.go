package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListener_Handle(t *testing.T) {
	l := NewListener("")
	assert.Equal(t, DefaultThankYou, l.ThankYou())

	dest, ok := l.Handle(Message{Event: EventScheduled})
	assert.True(t, ok)
	assert.Equal(t, "/ar/thank-you", dest)

	_, ok = l.Handle(Message{Event: "calendly.profile_page_viewed"})
	assert.False(t, ok)
}

func TestListener_HandleRaw(t *testing.T) {
	l := NewListener("/fr/merci")

	dest, ok := l.HandleRaw([]byte(`{"event":"calendly.event_scheduled","payload":{"invitee":{"uri":"x"}}}`))
	assert.True(t, ok)
	assert.Equal(t, "/fr/merci", dest)

	for _, raw := range []string{`"calendly.event_scheduled"`, `not json`, `{}`, `[]`} {
		_, ok := l.HandleRaw([]byte(raw))
		assert.False(t, ok, raw)
	}
}
