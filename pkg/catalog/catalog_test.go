package catalog

import (
	"context"
	"testing"

	"github.com/reachflow/funnel/internal/runtime"
	"github.com/reachflow/funnel/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_ServesBuiltins(t *testing.T) {
	loader, err := Loader()
	require.NoError(t, err)

	ids, err := loader.ListFunnels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{Diagnostic, Qualifier}, ids)
}

func TestQualifier_Shape(t *testing.T) {
	f, err := QualifierFunnel().Build()
	require.NoError(t, err)

	require.Len(t, f.Steps, 5)
	assert.Equal(t, 2, f.ChoicesBefore(len(f.Steps)))
	assert.Equal(t, domain.StepInput, f.Steps[2].Kind)
	assert.Equal(t, BookingPath, f.Destination)
}

func TestDiagnostic_FullTraversal(t *testing.T) {
	f, err := DiagnosticFunnel().Build()
	require.NoError(t, err)

	e := runtime.NewEngine(f, nil)
	ctx := context.Background()
	s := e.Start(ctx)

	answers := map[string]string{"name": "Amina", "agency": "Study Go", "city": "Rabat", "whatsapp": "+212600"}
	for i := 0; i < len(f.Steps)-1; i++ {
		step := f.Steps[i]
		if step.Kind == domain.StepChoice {
			s, err = e.Select(ctx, s, step.Options[0])
		} else {
			s, err = e.SetField(ctx, s, step.FieldKey, answers[step.FieldKey])
		}
		require.NoError(t, err)
		s, err = e.Advance(ctx, s)
		require.NoError(t, err)
	}
	s, err = e.SetField(ctx, s, "whatsapp", answers["whatsapp"])
	require.NoError(t, err)

	lead := e.BuildLead(s)
	assert.Equal(t, "France", lead["destination"])
	assert.Equal(t, "J'ai besoin de Volume (plus de leads)", lead["situation"])
	assert.Equal(t, "Rabat", lead["city"])
	assert.Equal(t, Diagnostic, lead["source"])
	assert.Len(t, lead, 7)
}
