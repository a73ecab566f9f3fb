package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/mitchellh/mapstructure"
	"github.com/reachflow/funnel/pkg/domain"
)

// Loader adapts the Loam library to the FunnelLoader port.
// Each document of the repository defines one funnel in its frontmatter.
type Loader struct {
	Repo *loam.TypedRepository[FunnelMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[FunnelMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// GetFunnel retrieves a funnel by ID.
// The direct lookup covers documents named after their ID; a scan covers explicit `id:` overrides.
func (l *Loader) GetFunnel(ctx context.Context, id string) (domain.Funnel, error) {
	doc, err := l.Repo.Get(ctx, id)
	if err == nil && documentID(doc.ID, doc.Data) == id {
		return toFunnel(id, doc.Data, doc.Content)
	}

	docs, err := l.Repo.List(ctx)
	if err != nil {
		return domain.Funnel{}, fmt.Errorf("loam list failed: %w", err)
	}
	for _, doc := range docs {
		if documentID(doc.ID, doc.Data) == id {
			return toFunnel(id, doc.Data, doc.Content)
		}
	}
	return domain.Funnel{}, fmt.Errorf("%w: %s", domain.ErrFunnelNotFound, id)
}

// ListFunnels lists all funnels in the repository.
func (l *Loader) ListFunnels(ctx context.Context) ([]string, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		id := documentID(doc.ID, doc.Data)

		// Collision Detection
		if existingPath, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existingPath, doc.ID)
		}
		seen[id] = doc.ID
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func toFunnel(id string, meta FunnelMetadata, content string) (domain.Funnel, error) {
	static, err := normalizeStatic(meta.Static)
	if err != nil {
		return domain.Funnel{}, fmt.Errorf("funnel %s: %w", id, err)
	}

	f := domain.Funnel{
		ID:          id,
		Title:       meta.Title,
		Destination: meta.Destination,
		Static:      static,
		Steps:       make([]domain.Step, 0, len(meta.Steps)),
	}
	if f.Title == "" {
		f.Title = heading(content)
	}

	for i, sm := range meta.Steps {
		kind := domain.StepKind(strings.ToLower(strings.TrimSpace(sm.Kind)))
		if kind == "" {
			// Options imply a choice.
			kind = domain.StepInput
			if len(sm.Options) > 0 {
				kind = domain.StepChoice
			}
		}
		if kind != domain.StepChoice && kind != domain.StepInput {
			return domain.Funnel{}, fmt.Errorf("funnel %s: step %d: unknown kind %q", id, i, sm.Kind)
		}

		key := sm.FieldKey
		if key == "" {
			key = sm.Key
		}
		f.Steps = append(f.Steps, domain.Step{
			Kind:        kind,
			Prompt:      sm.Prompt,
			FieldKey:    key,
			Options:     sm.Options,
			Placeholder: sm.Placeholder,
			InputHint:   domain.InputHint(sm.InputHint),
		})
	}
	return f, nil
}

// normalizeStatic stringifies scalar frontmatter values (numbers arrive as json.Number in strict mode).
func normalizeStatic(raw map[string]any) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(raw))
	if err := mapstructure.WeakDecode(raw, &out); err != nil {
		return nil, fmt.Errorf("static: %w", err)
	}
	return out, nil
}

// heading returns the first markdown heading of the body, if any.
func heading(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			return strings.TrimSpace(strings.TrimLeft(line, "#"))
		}
	}
	return ""
}

func documentID(docID string, meta FunnelMetadata) string {
	raw := meta.ID
	if raw == "" {
		raw = docID
	}
	return trimExtension(raw)
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
