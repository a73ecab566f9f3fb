package main

import (
	"fmt"

	"github.com/reachflow/funnel/internal/cli"
	"github.com/reachflow/funnel/internal/validator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check every funnel definition",
	Long:  `Loads every funnel of --dir (or the built-in catalog) and reports the first invalid definition.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		loader, err := cli.OpenLoader(dir)
		if err != nil {
			return err
		}
		if err := validator.ValidateLoader(cmd.Context(), loader); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "All funnels are valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
