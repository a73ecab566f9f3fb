package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/reachflow/funnel/internal/cli"
	"github.com/reachflow/funnel/pkg/catalog"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [funnel-id]",
	Short: "Walk through a funnel in the terminal",
	Long: `Runs a funnel interactively. Type the number or the text of an option,
press Enter to continue, :back to return to the previous step and :quit to leave.
With --json, views are written as JSON lines for other programs to drive.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := catalog.Qualifier
		if len(args) > 0 {
			id = args[0]
		}
		jsonMode, _ := cmd.Flags().GetBool("json")
		noBanner, _ := cmd.Flags().GetBool("no-banner")

		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return cli.RunSession(ctx, app, cli.RunOptions{
			FunnelID: id,
			JSON:     jsonMode,
			NoBanner: noBanner,
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("json", false, "Exchange JSON lines instead of text")
	runCmd.Flags().Bool("no-banner", false, "Do not print the banner")
	runCmd.Flags().String("gateway-url", "", "Record-keeping backend URL")
	runCmd.Flags().String("journal", "", "Submission journal: none, memory, sqlite or redis")
}
