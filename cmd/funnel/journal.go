package main

import (
	"github.com/reachflow/funnel/internal/cli"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Print the latest submission attempts",
	Long: `Reads the sqlite or redis journal and prints the newest entries as JSON lines.
Contact fields are masked; sealed entries are opened with FUNNEL_JOURNAL_KEY or one of
FUNNEL_JOURNAL_FALLBACK_KEYS.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		return cli.PrintJournal(cmd.Context(), app, limit, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(journalCmd)

	f := journalCmd.Flags()
	f.IntP("limit", "n", 20, "Number of entries to print (0 prints everything)")
	f.String("journal", "", "Submission journal: sqlite or redis")
	f.String("journal-dsn", "", "SQLite journal path")
	f.String("redis", "", "Redis address")
}
