package cli

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/reachflow/funnel/internal/config"
)

// PrintJournal writes the newest limit entries as JSON lines. Entries are read back
// through the journal middlewares, so sealed leads are opened with the active or a fallback key.
func PrintJournal(ctx context.Context, app *App, limit int, w io.Writer) error {
	switch {
	case app.Journal == nil:
		return errors.New("the journal is disabled")
	case app.Config.Journal == config.JournalMemory:
		return errors.New("the memory journal only lives inside the serving process; use the sqlite or redis journal")
	}

	entries, err := app.Journal.Recent(ctx, limit)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return err
		}
	}
	return nil
}
