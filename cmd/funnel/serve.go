package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/reachflow/funnel/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the lead endpoint (/api/submit), the wizard API (/funnels),
booking events, health, info and Prometheus metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ln, err := net.Listen("tcp", app.Config.Addr())
		if err != nil {
			return err
		}
		return cli.Serve(ctx, app, ln)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	f := serveCmd.Flags()
	f.IntP("port", "p", 8080, "Port to listen on")
	f.String("gateway-url", "", "Record-keeping backend URL")
	f.Duration("gateway-timeout", 0, "Per-request timeout of the backend call")
	f.String("redis", "", "Redis address for cross-replica duplicate suppression")
	f.String("journal", "", "Submission journal: none, memory, sqlite or redis")
	f.String("journal-dsn", "", "SQLite journal path")
	f.Int("journal-max-entries", 0, "Entries kept by the memory and redis journals (0 keeps everything)")
	f.StringSlice("allowed-origins", nil, "CORS origins allowed to call the API")
}
