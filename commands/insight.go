package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var insightCmd = &cobra.Command{
	Use:   "insight",
	Short: "Fetch a fresh insight for the recent history",
	RunE:  runInsight,
}

func init() {
	rootCmd.AddCommand(insightCmd)
}

func runInsight(cmd *cobra.Command, args []string) error {
	app, err := setupApp()
	if err != nil {
		return err
	}

	result := app.RequestInsight(context.Background())
	fmt.Printf("Summary:    %s\n", result.Summary)
	fmt.Printf("Prediction: %s\n", result.Prediction)
	fmt.Printf("Tip:        %s\n", result.Tip)
	return nil
}
