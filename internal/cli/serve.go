package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	httpAdapter "github.com/reachflow/funnel/pkg/adapters/http"
	"github.com/reachflow/funnel/pkg/booking"
	"golang.org/x/sync/errgroup"
)

// ShutdownTimeout bounds how long in-flight requests may run after a stop signal.
const ShutdownTimeout = 5 * time.Second

// NewHTTPServer builds the HTTP API of the app.
func NewHTTPServer(app *App) *http.Server {
	listener := booking.NewListener(app.Config.ThankYouPath, booking.WithLogger(app.Logger))

	opts := []httpAdapter.Option{
		httpAdapter.WithBooking(listener),
		httpAdapter.WithLifecycleHooks(app.Hooks),
		httpAdapter.WithMetricsHandler(app.MetricsHandler),
		httpAdapter.WithAllowedOrigins(app.Config.AllowedOrigins...),
		httpAdapter.WithLogger(app.Logger),
	}
	if app.Journal != nil {
		opts = append(opts, httpAdapter.WithJournal(app.Journal))
	}

	return &http.Server{
		Addr:              app.Config.Addr(),
		Handler:           httpAdapter.NewHandler(app.Loader, app.Submitter, opts...),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Serve listens on ln until ctx is cancelled, then drains in-flight requests.
func Serve(ctx context.Context, app *App, ln net.Listener) error {
	srv := NewHTTPServer(app)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		app.Logger.Info("server listening", "addr", ln.Addr().String(), "funnels_dir", app.Config.FunnelsDir)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		app.Logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.Logger.Warn("graceful shutdown did not complete", "timeout", ShutdownTimeout, "err", err)
			return srv.Close()
		}
		return nil
	})
	return g.Wait()
}
