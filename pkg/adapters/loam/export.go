package loam

import (
	"bytes"
	"fmt"

	"github.com/reachflow/funnel/pkg/domain"
	"gopkg.in/yaml.v3"
)

// FromFunnel converts a definition back to document metadata.
func FromFunnel(f domain.Funnel) FunnelMetadata {
	meta := FunnelMetadata{
		ID:          f.ID,
		Title:       f.Title,
		Destination: f.Destination,
		Steps:       make([]StepMetadata, 0, len(f.Steps)),
	}
	if len(f.Static) > 0 {
		meta.Static = make(map[string]any, len(f.Static))
		for k, v := range f.Static {
			meta.Static[k] = v
		}
	}
	for _, s := range f.Steps {
		meta.Steps = append(meta.Steps, StepMetadata{
			Kind:        string(s.Kind),
			Prompt:      s.Prompt,
			FieldKey:    s.FieldKey,
			Options:     s.Options,
			Placeholder: s.Placeholder,
			InputHint:   string(s.InputHint),
		})
	}
	return meta
}

// Document renders a definition as a markdown document with YAML frontmatter,
// ready to be dropped in a funnels directory.
func Document(f domain.Funnel) ([]byte, error) {
	front, err := yaml.Marshal(FromFunnel(f))
	if err != nil {
		return nil, fmt.Errorf("funnel %s: %w", f.ID, err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(front)
	buf.WriteString("---\n")
	if f.Title != "" {
		fmt.Fprintf(&buf, "# %s\n", f.Title)
	}
	return buf.Bytes(), nil
}
