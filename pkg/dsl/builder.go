package dsl

import (
	"fmt"

	"github.com/reachflow/funnel/internal/validator"
	"github.com/reachflow/funnel/pkg/adapters/memory"
	"github.com/reachflow/funnel/pkg/domain"
)

// Builder manages the funnel construction.
type Builder struct {
	funnel domain.Funnel
	steps  []*StepBuilder
}

// New creates a new funnel builder.
func New(id string) *Builder {
	return &Builder{funnel: domain.Funnel{ID: id}}
}

// Title sets the human-readable title.
func (b *Builder) Title(title string) *Builder {
	b.funnel.Title = title
	return b
}

// Destination sets where the visitor goes once the lead is accepted.
func (b *Builder) Destination(dest string) *Builder {
	b.funnel.Destination = dest
	return b
}

// Static adds a fixed field to every Lead Record.
func (b *Builder) Static(key, value string) *Builder {
	if b.funnel.Static == nil {
		b.funnel.Static = make(map[string]string)
	}
	b.funnel.Static[key] = value
	return b
}

// Choice appends a choice step whose answer is stored under key.
func (b *Builder) Choice(key, prompt string, options ...string) *StepBuilder {
	return b.add(domain.Step{
		Kind:     domain.StepChoice,
		Prompt:   prompt,
		FieldKey: key,
		Options:  options,
	})
}

// Input appends a free-text step bound to key.
func (b *Builder) Input(key, prompt string) *StepBuilder {
	return b.add(domain.Step{
		Kind:      domain.StepInput,
		Prompt:    prompt,
		FieldKey:  key,
		InputHint: domain.HintText,
	})
}

func (b *Builder) add(step domain.Step) *StepBuilder {
	sb := &StepBuilder{step: step, builder: b}
	b.steps = append(b.steps, sb)
	return sb
}

// Build assembles and validates the funnel.
func (b *Builder) Build() (domain.Funnel, error) {
	f := b.funnel
	f.Steps = make([]domain.Step, len(b.steps))
	for i, sb := range b.steps {
		f.Steps[i] = sb.step
	}
	if err := validator.Validate(f); err != nil {
		return domain.Funnel{}, err
	}
	return f, nil
}

// Loader builds every funnel and serves them from memory.
func Loader(builders ...*Builder) (*memory.Loader, error) {
	funnels := make([]domain.Funnel, 0, len(builders))
	for _, b := range builders {
		f, err := b.Build()
		if err != nil {
			return nil, err
		}
		funnels = append(funnels, f)
	}

	loader, err := memory.NewLoader(funnels...)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}
	return loader, nil
}

// StepBuilder provides a fluent API for configuring a step.
type StepBuilder struct {
	step    domain.Step
	builder *Builder
}

// Placeholder sets the example text shown in an empty input.
func (s *StepBuilder) Placeholder(text string) *StepBuilder {
	s.step.Placeholder = text
	return s
}

// Hint sets the kind of field the rendering layer should show.
func (s *StepBuilder) Hint(hint domain.InputHint) *StepBuilder {
	s.step.InputHint = hint
	return s
}

// Then returns the funnel builder, to keep chaining steps.
func (s *StepBuilder) Then() *Builder {
	return s.builder
}
