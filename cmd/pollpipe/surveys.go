package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var surveysCmd = &cobra.Command{
	Use:   "surveys",
	Short: "List all surveys from Polly with active status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := newPipeline().ListSurveys(cmd.Context())
		if err != nil {
			return fmt.Errorf("fetch surveys: %w", err)
		}
		if len(items) == 0 {
			fmt.Println("No surveys found.")
			return nil
		}

		fmt.Println("Surveys:")
		fmt.Println()
		for _, s := range items {
			status := "⚪ Closed"
			if s.Active {
				status = "🟢 Active"
			}
			configured := ""
			if s.Configured {
				configured = " ✓ configured"
			}
			fmt.Printf("  %s\n", s.Title)
			fmt.Printf("    ID: %s  %s%s\n", s.ID, status, configured)
			fmt.Println()
		}
		return nil
	},
}
