package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	loamAdapter "github.com/reachflow/funnel/pkg/adapters/loam"
	"github.com/reachflow/funnel/pkg/domain"
	"github.com/reachflow/funnel/pkg/ports"
	"gopkg.in/yaml.v3"
)

// Export formats.
const (
	FormatMarkdown = "md"
	FormatYAML     = "yaml"
	FormatJSON     = "json"
)

// Encode renders one definition in the given format.
func Encode(f domain.Funnel, format string) ([]byte, error) {
	switch format {
	case FormatMarkdown:
		return loamAdapter.Document(f)
	case FormatYAML:
		return yaml.Marshal(f)
	case FormatJSON:
		data, err := json.MarshalIndent(f, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unknown format %q (want md, yaml or json)", format)
	}
}

// Export writes the funnels ids (every funnel when empty) to w, or one file per
// funnel under dir when dir is set. Markdown output can be loaded back with --dir.
func Export(ctx context.Context, loader ports.FunnelLoader, ids []string, format, dir string, w io.Writer) error {
	if len(ids) == 0 {
		var err error
		if ids, err = loader.ListFunnels(ctx); err != nil {
			return err
		}
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	for i, id := range ids {
		f, err := loader.GetFunnel(ctx, id)
		if err != nil {
			return err
		}
		data, err := Encode(f, format)
		if err != nil {
			return err
		}

		if dir != "" {
			path := filepath.Join(dir, id+"."+format)
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			continue
		}
		if i > 0 && format == FormatYAML {
			fmt.Fprintln(w, "---")
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
	}
	return nil
}
