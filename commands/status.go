package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/hquan/babytrack/internal/presentation"
)

var statusLimit int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print a one-shot status report",
	Long:  "Prints the last entry, the next feeding estimate and the weekly feeding histogram.",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusLimit, "limit", 10,
		"Number of recent entries to show (0 = none)")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	app, err := setupApp()
	if err != nil {
		return err
	}

	summary := app.Aggregator().Summarize()
	entries := app.Store().Recent(statusLimit)
	presentation.RenderStatus(os.Stdout, summary, entries, app.Now())
	return nil
}
