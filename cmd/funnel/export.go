package main

import (
	"github.com/reachflow/funnel/internal/cli"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [funnel-id...]",
	Short: "Write funnel definitions as documents",
	Long: `Writes funnel definitions as markdown documents (md), YAML or JSON.
Exporting the built-in catalog as md gives a starting point for a --dir repository.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")

		loader, err := cli.OpenLoader(dir)
		if err != nil {
			return err
		}
		return cli.Export(cmd.Context(), loader, args, format, out, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("format", cli.FormatMarkdown, "Output format: md, yaml or json")
	exportCmd.Flags().String("out", "", "Directory receiving one file per funnel (stdout when empty)")
}
