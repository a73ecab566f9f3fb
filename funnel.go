package funnel

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/loam"
	"github.com/reachflow/funnel/internal/runtime"
	"github.com/reachflow/funnel/internal/validator"
	loamAdapter "github.com/reachflow/funnel/pkg/adapters/loam"
	"github.com/reachflow/funnel/pkg/domain"
	"github.com/reachflow/funnel/pkg/ports"
)

// Engine is the high-level entry point of the library.
// It wraps the internal runtime for one funnel definition and is safe for concurrent use:
// it holds no visitor state.
type Engine struct {
	runtime   *runtime.Engine
	loader    ports.FunnelLoader
	funnel    *domain.Funnel
	submitter ports.Submitter
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	Name      string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLoader injects a custom FunnelLoader, bypassing the default Loam initialization.
func WithLoader(l ports.FunnelLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithFunnel uses an already built definition; no loader is consulted.
func WithFunnel(f domain.Funnel) Option {
	return func(e *Engine) {
		e.funnel = &f
	}
}

// WithSubmitter sets the backend that receives Lead Records (usually a *gateway.Gateway).
func WithSubmitter(s ports.Submitter) Option {
	return func(e *Engine) {
		e.submitter = s
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New initializes an Engine for the funnel funnelID.
// By default, definitions are read from a Loam repository at repoPath.
// With WithLoader or WithFunnel, repoPath can be empty and Loam is skipped.
// The definition is validated before the engine is returned.
func New(repoPath, funnelID string, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	var def domain.Funnel
	if eng.funnel != nil {
		def = *eng.funnel
	} else {
		if eng.loader == nil {
			loader, err := OpenRepository(repoPath)
			if err != nil {
				return nil, err
			}
			eng.loader = loader
		}

		var err error
		def, err = eng.loader.GetFunnel(context.Background(), funnelID)
		if err != nil {
			return nil, err
		}
	}

	if err := validator.Validate(def); err != nil {
		return nil, err
	}
	eng.Name = def.ID

	// Ensure logger is initialized (so we don't pass nil to runtime)
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	eng.runtime = runtime.NewEngine(def, eng.submitter,
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
	)
	return eng, nil
}

// OpenRepository opens a read-only Loam repository of funnel documents.
func OpenRepository(repoPath string) (*loamAdapter.Loader, error) {
	if repoPath == "" {
		return nil, fmt.Errorf("repoPath is required when no custom loader is provided")
	}
	absPath, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Strict mode keeps numeric frontmatter consistent (json.Number) across formats.
	// The engine never writes definitions, so the repository is opened read-only.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return loamAdapter.New(loam.NewTypedRepository[loamAdapter.FunnelMetadata](repo)), nil
}

// Start creates the initial state for a new visitor and triggers lifecycle hooks.
func (e *Engine) Start(ctx context.Context) *domain.State {
	return e.runtime.Start(ctx)
}

// Render builds the view of a state without transitioning.
func (e *Engine) Render(ctx context.Context, state *domain.State) (domain.View, error) {
	return e.runtime.Render(ctx, state)
}

// Select records a choice on the current step.
func (e *Engine) Select(ctx context.Context, state *domain.State, option string) (*domain.State, error) {
	return e.runtime.Select(ctx, state, option)
}

// SetField writes the value of the current input step.
func (e *Engine) SetField(ctx context.Context, state *domain.State, key, value string) (*domain.State, error) {
	return e.runtime.SetField(ctx, state, key, value)
}

// Advance commits the current answer and moves forward, submitting on the last step.
func (e *Engine) Advance(ctx context.Context, state *domain.State) (*domain.State, error) {
	return e.runtime.Advance(ctx, state)
}

// Retreat moves back one step.
func (e *Engine) Retreat(ctx context.Context, state *domain.State) (*domain.State, error) {
	return e.runtime.Retreat(ctx, state)
}

// Submit sends the Lead Record from the last step.
func (e *Engine) Submit(ctx context.Context, state *domain.State) (*domain.State, error) {
	return e.runtime.Submit(ctx, state)
}

// Inspect returns the funnel definition for visualization or introspection tools.
func (e *Engine) Inspect() domain.Funnel {
	return e.runtime.Inspect()
}

// Loader returns the FunnelLoader used by the engine, or nil when built WithFunnel.
func (e *Engine) Loader() ports.FunnelLoader {
	return e.loader
}

// NewController binds a fresh visitor state to the engine.
// navigate is called exactly once, with the funnel destination, when the lead is accepted.
func (e *Engine) NewController(ctx context.Context, navigate func(destination string)) *Controller {
	return &Controller{
		engine:   e.runtime,
		state:    e.runtime.Start(ctx),
		navigate: navigate,
	}
}
