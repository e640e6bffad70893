package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noamseg/pollpipe/internal/slack"
)

var peekCmd = &cobra.Command{
	Use:   "peek <survey_id>",
	Short: "Early peek at all results, with optional Slack post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := newPipeline().Peek(cmd.Context(), args[0], func(msg string) {
			fmt.Println(msg)
		})
		if err != nil {
			return fmt.Errorf("peek: %w", err)
		}

		fmt.Println()
		fmt.Printf("🔍 %s — Early Peek\n", result.Title)
		fmt.Printf("%d responded, %d completed · %s%s\n", result.Started, result.Completed, result.DateRange, result.CloseLabel)

		for _, qd := range result.Dists {
			fmt.Println()
			multi := ""
			if qd.IsMultiselect {
				multi = " (select all)"
			}
			fmt.Printf("📊 %s%s\n", qd.Question, multi)
			if qd.IsRating {
				var parts []string
				for _, c := range qd.Choices {
					emoji, ok := ratingEmojis[c.Rating]
					if !ok {
						emoji = "⬜"
					}
					parts = append(parts, fmt.Sprintf("%s %s %.0f%%", emoji, c.Label, c.Pct))
				}
				fmt.Printf("  %s\n", strings.Join(parts, " · "))
			} else {
				for _, c := range qd.Choices {
					fmt.Printf("  %s: %.0f%% (%d)\n", c.Label, c.Pct, c.Count)
				}
			}
		}

		if result.Analysis != nil {
			fmt.Println()
			fmt.Printf("💡 %s\n", result.Analysis.Headline)
			for _, section := range result.Analysis.Sections {
				fmt.Println()
				fmt.Printf("%s %s\n", section.Emoji, section.Title)
				for i, theme := range section.Themes {
					suffix := ""
					if i == 0 {
						suffix = " mentions"
					}
					fmt.Printf("  %d. %s (%d%s)\n", i+1, theme.Name, theme.Count, suffix)
				}
				for _, q := range section.Quotes {
					fmt.Printf("  💬 %q — %s\n", q.Text, q.Attribution)
				}
			}
		}
		fmt.Println()

		blocks := slack.FormatPeekBlocks(result.Title, result.Started, result.Completed,
			result.DateRange, result.Dists, result.Analysis, result.CloseLabel)
		if confirmSend() {
			fallback := fmt.Sprintf("%s: Early Peek — %d responded, %d completed", result.Title, result.Started, result.Completed)
			slack.NewNotifier(logger).SendBlocks(cmd.Context(), blocks, fallback)
		}
		return nil
	},
}

func confirmSend() bool {
	fmt.Print("Send to Slack? [y/N] ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		fmt.Println()
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
