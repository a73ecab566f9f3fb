package main

import (
	"github.com/reachflow/funnel/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the funnels to AI agents over stdio: list_funnels, describe_funnel,
start, navigate and submit_lead, plus the funnel://catalog resource.
Logs go to stderr so they never corrupt the JSON-RPC stream.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		opts := []mcp.Option{mcp.WithLogger(app.Logger)}
		if app.Journal != nil {
			opts = append(opts, mcp.WithJournal(app.Journal))
		}
		srv := mcp.NewServer(app.Loader, app.Submitter, opts...)
		app.Logger.Info("starting MCP server (stdio)")
		return srv.ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("gateway-url", "", "Record-keeping backend URL")
}
