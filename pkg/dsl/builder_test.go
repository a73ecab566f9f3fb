package dsl

import (
	"context"
	"testing"

	"github.com/reachflow/funnel/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_SimpleFunnel(t *testing.T) {
	b := New("qualifier").
		Title("Qualification").
		Destination("/ar/booking").
		Static("source", "landing")

	b.Choice("students", "How many?", "few", "many").
		Then().
		Input("email", "Email?").Hint(domain.HintEmail).Placeholder("you@example.com")

	f, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, domain.Funnel{
		ID:          "qualifier",
		Title:       "Qualification",
		Destination: "/ar/booking",
		Static:      map[string]string{"source": "landing"},
		Steps: []domain.Step{
			{Kind: domain.StepChoice, Prompt: "How many?", FieldKey: "students", Options: []string{"few", "many"}},
			{Kind: domain.StepInput, Prompt: "Email?", FieldKey: "email", InputHint: domain.HintEmail, Placeholder: "you@example.com"},
		},
	}, f)
}

func TestBuilder_ValidatesOnBuild(t *testing.T) {
	b := New("broken")
	b.Choice("students", "How many?")

	_, err := b.Build()
	assert.Error(t, err)
}

func TestLoader(t *testing.T) {
	a := New("a")
	a.Input("name", "Name?")
	b := New("b")
	b.Input("phone", "Phone?").Hint(domain.HintTel)

	loader, err := Loader(a, b)
	require.NoError(t, err)

	ids, err := loader.ListFunnels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	_, err = Loader(a, New("a"))
	assert.Error(t, err)
}
