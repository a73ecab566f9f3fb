package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/reachflow/funnel/internal/config"
	"github.com/reachflow/funnel/internal/logging"
	"github.com/reachflow/funnel/pkg/catalog"
	"github.com/reachflow/funnel/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, mutate func(*config.Config)) *App {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	app, err := NewApp(cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func TestNewApp_Journals(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		journal bool
	}{
		{"none", func(c *config.Config) { c.Journal = config.JournalNone }, false},
		{"memory", nil, true},
		{"sqlite", func(c *config.Config) {
			c.Journal = config.JournalSQLite
			c.JournalDSN = filepath.Join(t.TempDir(), "journal.db")
		}, true},
		{"redis", func(c *config.Config) {
			c.Journal = config.JournalRedis
			c.RedisAddr = mr.Addr()
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, tt.mutate)
			assert.Equal(t, tt.journal, app.Journal != nil)
			assert.NotNil(t, app.Submitter)
			assert.NotNil(t, app.MetricsHandler)

			if app.Journal != nil {
				ctx := context.Background()
				require.NoError(t, app.Journal.Record(ctx, domain.JournalEntry{
					ID:         "e1",
					FunnelID:   "qualifier",
					Lead:       domain.LeadRecord{"name": "Ana", "students": "1"},
					Result:     domain.SubmissionResult{Outcome: domain.OutcomeSucceeded},
					RecordedAt: time.Now().UTC(),
				}))
				got, err := app.Journal.Recent(ctx, 10)
				require.NoError(t, err)
				require.Len(t, got, 1)
				assert.Equal(t, "***", got[0].Lead["name"])
				assert.Equal(t, "1", got[0].Lead["students"])
			}
		})
	}
}

func TestNewApp_RedisJournalNeedsAddress(t *testing.T) {
	cfg := config.Default()
	cfg.Journal = config.JournalRedis

	_, err := NewApp(cfg, logging.NewNop())
	require.Error(t, err)
}

func TestNewApp_EncryptedJournal(t *testing.T) {
	key := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))
	app := newTestApp(t, func(c *config.Config) { c.JournalKey = key })

	ctx := context.Background()
	require.NoError(t, app.Journal.Record(ctx, domain.JournalEntry{
		ID:         "e1",
		FunnelID:   "diagnostic",
		Lead:       domain.LeadRecord{"city": "Rabat"},
		Result:     domain.SubmissionResult{Outcome: domain.OutcomeFailed},
		RecordedAt: time.Now().UTC(),
	}))
	got, err := app.Journal.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Rabat", got[0].Lead["city"])
}

func TestOpenLoader_DefaultsToCatalog(t *testing.T) {
	loader, err := OpenLoader("")
	require.NoError(t, err)

	ids, err := loader.ListFunnels(context.Background())
	require.NoError(t, err)
	assert.Contains(t, ids, "qualifier")
	assert.Contains(t, ids, "diagnostic")
}

func TestRunSession_SubmitsThroughGateway(t *testing.T) {
	var hits atomic.Int32
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `{"status":"success"}`)
	}))
	defer backend.Close()

	app := newTestApp(t, func(c *config.Config) { c.GatewayURL = backend.URL })

	var out bytes.Buffer
	err := RunSession(context.Background(), app, RunOptions{
		FunnelID: "qualifier",
		Input:    strings.NewReader("1\n1\nAna\n0600\nana@example.com\n"),
		Output:   &out,
	})
	require.NoError(t, err)

	assert.Equal(t, int32(1), hits.Load())
	assert.Contains(t, out.String(), "Sending your answers...")
	assert.Contains(t, out.String(), "Continue at "+catalog.BookingPath)
	assert.Contains(t, out.String(), "your answers were received")

	entries, err := app.Journal.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "qualifier", entries[0].FunnelID)
	assert.Equal(t, domain.OutcomeSucceeded, entries[0].Result.Outcome)
}

func TestRunSession_UnknownFunnel(t *testing.T) {
	app := newTestApp(t, nil)

	err := RunSession(context.Background(), app, RunOptions{FunnelID: "nope", Output: &bytes.Buffer{}})
	require.ErrorIs(t, err, domain.ErrFunnelNotFound)
}

func TestServe_StopsOnCancel(t *testing.T) {
	app := newTestApp(t, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, app, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(ShutdownTimeout + time.Second):
		t.Fatal("server did not stop")
	}
}

func TestExport_MarkdownLoadsBack(t *testing.T) {
	ctx := context.Background()
	src, err := OpenLoader("")
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, Export(ctx, src, nil, FormatMarkdown, dir, nil))

	exported, err := OpenLoader(dir)
	require.NoError(t, err)
	for _, id := range []string{"qualifier", "diagnostic"} {
		want, err := src.GetFunnel(ctx, id)
		require.NoError(t, err)
		got, err := exported.GetFunnel(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestExport_Stdout(t *testing.T) {
	loader, err := OpenLoader("")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, Export(context.Background(), loader, []string{"diagnostic"}, FormatJSON, "", &out))
	assert.Contains(t, out.String(), `"id": "diagnostic"`)

	err = Export(context.Background(), loader, []string{"diagnostic"}, "toml", "", &out)
	require.Error(t, err)
}

func TestPrintJournal_OpensRotatedKeys(t *testing.T) {
	oldKey := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{1}, 32))
	newKey := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{2}, 32))
	dsn := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	before := newTestApp(t, func(c *config.Config) {
		c.Journal = config.JournalSQLite
		c.JournalDSN = dsn
		c.JournalKey = oldKey
	})
	require.NoError(t, before.Journal.Record(ctx, domain.JournalEntry{
		ID:         "e1",
		FunnelID:   "diagnostic",
		Lead:       domain.LeadRecord{"city": "Tanger"},
		Result:     domain.SubmissionResult{Outcome: domain.OutcomeSucceeded},
		RecordedAt: time.Now().UTC(),
	}))

	after := newTestApp(t, func(c *config.Config) {
		c.Journal = config.JournalSQLite
		c.JournalDSN = dsn
		c.JournalKey = newKey
		c.JournalFallbackKeys = []string{oldKey}
	})

	var out bytes.Buffer
	require.NoError(t, PrintJournal(ctx, after, 10, &out))
	assert.Contains(t, out.String(), `"city":"Tanger"`)
	assert.Contains(t, out.String(), `"funnel_id":"diagnostic"`)
}

func TestPrintJournal_RejectsProcessLocalJournals(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, PrintJournal(context.Background(), newTestApp(t, nil), 10, &out))

	none := newTestApp(t, func(c *config.Config) { c.Journal = config.JournalNone })
	assert.Error(t, PrintJournal(context.Background(), none, 10, &out))
}

func TestNewApp_MemoryJournalIsCapped(t *testing.T) {
	app := newTestApp(t, func(c *config.Config) { c.JournalMaxEntries = 2 })

	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, app.Journal.Record(ctx, domain.JournalEntry{ID: id, RecordedAt: time.Now().UTC()}))
	}
	entries, err := app.Journal.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
