package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/reachflow/funnel"
	"github.com/reachflow/funnel/internal/adapters/sqlite"
	"github.com/reachflow/funnel/internal/config"
	"github.com/reachflow/funnel/pkg/adapters/memory"
	"github.com/reachflow/funnel/pkg/adapters/redis"
	"github.com/reachflow/funnel/pkg/catalog"
	"github.com/reachflow/funnel/pkg/domain"
	"github.com/reachflow/funnel/pkg/gateway"
	"github.com/reachflow/funnel/pkg/guard"
	"github.com/reachflow/funnel/pkg/observability"
	"github.com/reachflow/funnel/pkg/persistence"
	"github.com/reachflow/funnel/pkg/persistence/middleware"
	"github.com/reachflow/funnel/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// App holds the collaborators shared by every command.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Loader    ports.FunnelLoader
	Submitter ports.Submitter
	Journal   ports.Journal
	Hooks     domain.LifecycleHooks

	// MetricsHandler serves the private Prometheus registry.
	MetricsHandler http.Handler

	recorder *persistence.Recorder

	closers []func() error
}

// NewApp builds the loader, the guarded gateway, the journal and the metrics from cfg.
// Close must be called to release the connections it opened.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{Config: cfg, Logger: logger}

	loader, err := OpenLoader(cfg.FunnelsDir)
	if err != nil {
		return nil, err
	}
	app.Loader = loader

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	app.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	app.Hooks = observability.Hooks(logger, metrics)

	var client *backend.Client
	if cfg.RedisAddr != "" {
		client = backend.NewClient(&backend.Options{Addr: cfg.RedisAddr})
		app.closers = append(app.closers, client.Close)
	}

	gw := gateway.New(cfg.GatewayURL,
		gateway.WithTimeout(cfg.GatewayTimeout),
		gateway.WithLogger(logger),
		gateway.WithObserver(metrics),
	)
	guardOpts := []guard.Option{guard.WithLogger(logger)}
	if client != nil {
		guardOpts = append(guardOpts, guard.WithLocker(redis.NewLocker(client, "funnel:lead:")))
	}
	app.Submitter = guard.New(gw, guardOpts...)

	if err := app.openJournal(client); err != nil {
		_ = app.Close()
		return nil, err
	}
	if app.Journal != nil {
		app.recorder = persistence.NewRecorder(app.Submitter, app.Journal, persistence.WithLogger(logger))
	}
	return app, nil
}

// OpenLoader reads funnels from dir, or serves the built-in catalog when dir is empty.
func OpenLoader(dir string) (ports.FunnelLoader, error) {
	if dir == "" {
		loader, err := catalog.Loader()
		if err != nil {
			return nil, err
		}
		return loader, nil
	}
	loader, err := funnel.OpenRepository(dir)
	if err != nil {
		return nil, err
	}
	return loader, nil
}

func (a *App) openJournal(client *backend.Client) error {
	var j ports.Journal
	switch a.Config.Journal {
	case config.JournalNone:
		return nil
	case config.JournalMemory:
		j = memory.NewJournal(memory.WithCapacity(a.Config.JournalMaxEntries))
	case config.JournalSQLite:
		db, err := sqlite.Open(a.Config.JournalDSN)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		j = db
	case config.JournalRedis:
		if client == nil {
			return errors.New("redis journal requires a redis address")
		}
		j = redis.NewJournal(client, redis.WithMaxEntries(int64(a.Config.JournalMaxEntries)))
	default:
		return fmt.Errorf("unknown journal %q", a.Config.Journal)
	}

	mws := []middleware.Middleware{middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns)}
	if a.Config.JournalKey != "" {
		key, err := a.Config.JournalKeyBytes()
		if err != nil {
			return err
		}
		fallback, err := a.Config.JournalFallbackKeyBytes()
		if err != nil {
			return err
		}
		seal, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key, FallbackKeys: fallback})
		if err != nil {
			return err
		}
		mws = append(mws, seal)
	}
	a.Journal = middleware.Chain(j, mws...)
	return nil
}

// LeadSubmitter returns the submitter, recording every attempt of funnelID when a journal is open.
func (a *App) LeadSubmitter(funnelID string) ports.Submitter {
	if a.recorder == nil {
		return a.Submitter
	}
	return a.recorder.ForFunnel(funnelID)
}

// Engine builds the engine of one funnel with the app's submitter and logger.
// extra hooks run after the app's logging and metrics hooks.
func (a *App) Engine(funnelID string, extra ...domain.LifecycleHooks) (*funnel.Engine, error) {
	return funnel.New("", funnelID,
		funnel.WithLoader(a.Loader),
		funnel.WithSubmitter(a.LeadSubmitter(funnelID)),
		funnel.WithLifecycleHooks(observability.Chain(append([]domain.LifecycleHooks{a.Hooks}, extra...)...)),
		funnel.WithLogger(a.Logger),
	)
}

// Close releases the journal database and the redis client.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
