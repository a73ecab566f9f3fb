package main

import (
	"fmt"

	"github.com/reachflow/funnel/internal/cli"
	"github.com/reachflow/funnel/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <funnel-id>",
	Short: "Export the funnel as a Mermaid diagram",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		loader, err := cli.OpenLoader(dir)
		if err != nil {
			return err
		}
		f, err := loader.GetFunnel(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(f, nil))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
