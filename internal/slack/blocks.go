package slack

import (
	"fmt"
	"strings"

	"github.com/noamseg/pollpipe/internal/core"
	"github.com/noamseg/pollpipe/internal/qual"
	"github.com/noamseg/pollpipe/internal/quant"
)

var ratingEmojis = map[int]string{1: "🟥", 2: "🟧", 3: "🟨", 4: "🟩", 5: "💚"}

// maxClosedShown caps the closed-poll tail of the survey list.
const maxClosedShown = 3

// FormatPeekBlocks formats an early peek as Block Kit blocks: counts, all
// question distributions, then the model's themes and quotes if present.
func FormatPeekBlocks(title string, started, completed int, dateRange string, dists []quant.QuestionDistribution, analysis *qual.PeekAnalysis, closeLabel string) []Block {
	blocks := []Block{
		headerBlock(fmt.Sprintf("🔍 %s — Early Peek", title)),
		sectionBlock(fmt.Sprintf("*%d* responded, *%d* completed · %s%s", started, completed, dateRange, closeLabel)),
		dividerBlock(),
	}

	for _, qd := range dists {
		multi := ""
		if qd.IsMultiselect {
			multi = " _(select all)_"
		}
		lines := []string{fmt.Sprintf("*📊 %s*%s", qd.Question, multi), ""}
		for _, c := range qd.Choices {
			if qd.IsRating {
				emoji, ok := ratingEmojis[c.Rating]
				if !ok {
					emoji = "⬜"
				}
				lines = append(lines, fmt.Sprintf("%s  %s  —  %.0f%%", emoji, c.Label, c.Pct))
			} else {
				lines = append(lines, fmt.Sprintf("  %s: %.0f%% (%d)", c.Label, c.Pct, c.Count))
			}
		}
		blocks = append(blocks, sectionBlock(strings.Join(lines, "\n")))
	}

	if analysis == nil {
		return blocks
	}

	blocks = append(blocks, dividerBlock())
	if analysis.Headline != "" {
		blocks = append(blocks, sectionBlock(fmt.Sprintf("*💡 %s*", SanitizeMrkdwn(analysis.Headline))))
	}

	for _, section := range analysis.Sections {
		emoji := section.Emoji
		if emoji == "" {
			emoji = "📌"
		}
		themeLines := []string{fmt.Sprintf("*%s %s*", emoji, SanitizeMrkdwn(section.Title))}
		for i, t := range section.Themes {
			suffix := ""
			if i == 0 {
				suffix = " mentions"
			}
			themeLines = append(themeLines, fmt.Sprintf("%d. %s (%d%s)", i+1, SanitizeMrkdwn(t.Name), t.Count, suffix))
		}
		blocks = append(blocks, sectionBlock(strings.Join(themeLines, "\n")))

		// One block per quote for breathing room.
		for _, q := range section.Quotes {
			blocks = append(blocks, sectionBlock(fmt.Sprintf("> _%s_\n> — %s", SanitizeMrkdwn(q.Text), SanitizeMrkdwn(q.Attribution))))
		}
	}

	return blocks
}

// FormatSurveysBlocks formats the survey list: active polls first, then the
// most recent closed polls.
func FormatSurveysBlocks(items []core.SurveyListItem) []Block {
	blocks := []Block{headerBlock("📋 Surveys")}

	if len(items) == 0 {
		return append(blocks, sectionBlock("No surveys found."))
	}

	var active, closed []core.SurveyListItem
	for _, s := range items {
		if s.Active {
			active = append(active, s)
		} else {
			closed = append(closed, s)
		}
	}
	shown := active
	if len(closed) > maxClosedShown {
		shown = append(shown, closed[:maxClosedShown]...)
	} else {
		shown = append(shown, closed...)
	}

	for _, s := range shown {
		status := "⚪ Closed"
		if s.Active {
			status = "🟢 Active"
		}
		configured := ""
		if s.Configured {
			configured = "  ✓ configured"
		}
		blocks = append(blocks, sectionBlock(fmt.Sprintf(
			"*%s*  %s%s\nTo peek at early results: /peek %s\nTo generate a full dashboard: /generate %s",
			SanitizeMrkdwn(s.Title), status, configured, s.ID, s.ID)))
	}

	if len(closed) > maxClosedShown {
		blocks = append(blocks, contextBlock(fmt.Sprintf("+ %d older closed polls not shown", len(closed)-maxClosedShown)))
	}

	return blocks
}

// FormatGenerateBlocks formats the dashboard-ready announcement.
func FormatGenerateBlocks(slug, title, previewURL string) []Block {
	socialURL := strings.Replace(previewURL, ".html", "-social.html", 1)
	return []Block{
		headerBlock(fmt.Sprintf("📊 Dashboard Ready: %s", title)),
		sectionBlock(fmt.Sprintf(
			"Draft dashboard for *%s* is live!\n\n<%s|View Dashboard>\n<%s|View Social Cards>",
			SanitizeMrkdwn(title), previewURL, socialURL)),
		contextBlock(fmt.Sprintf("Slug: `%s` · This is a draft preview — publish from CLI when ready.", slug)),
	}
}
