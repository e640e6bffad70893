package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate <survey_id>",
	Short: "Full pipeline: ingest, analyze, synthesize, render",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := newPipeline().Generate(cmd.Context(), args[0], func(msg string) {
			fmt.Println(msg)
		})
		if err != nil {
			return fmt.Errorf("generate: %w", err)
		}

		if err := os.MkdirAll(flagDrafts, 0o755); err != nil {
			return err
		}
		dashboardPath := filepath.Join(flagDrafts, result.Config.Slug+".html")
		if err := os.WriteFile(dashboardPath, []byte(result.DashboardHTML), 0o644); err != nil {
			return err
		}
		fmt.Printf("  Dashboard: %s\n", dashboardPath)

		socialPath := filepath.Join(flagDrafts, result.Config.Slug+"-social.html")
		if err := os.WriteFile(socialPath, []byte(result.SocialHTML), 0o644); err != nil {
			return err
		}
		fmt.Printf("  Social cards: %s\n", socialPath)

		fmt.Println()
		fmt.Println("Done! Review the drafts:")
		fmt.Printf("  open %s\n", dashboardPath)
		fmt.Printf("  open %s\n", socialPath)
		fmt.Println()
		fmt.Printf("When ready, publish with: pollpipe publish %s\n", result.Config.Slug)
		return nil
	},
}
