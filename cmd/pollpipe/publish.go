package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noamseg/pollpipe/internal/config"
	"github.com/noamseg/pollpipe/internal/publish"
)

var (
	responseCountRe = regexp.MustCompile(`(\d+) responses`)
	dateRangeRe     = regexp.MustCompile(`responses · ([^·<]+) ·`)
)

// draftMeta pulls the response count and date range back out of a rendered
// draft, so publish does not have to re-run the pipeline.
func draftMeta(draftPath string) (int, string) {
	data, err := os.ReadFile(draftPath)
	if err != nil {
		return 0, ""
	}
	content := string(data)

	count := 0
	if m := responseCountRe.FindStringSubmatch(content); m != nil {
		count, _ = strconv.Atoi(m[1])
	}
	dateRange := ""
	if m := dateRangeRe.FindStringSubmatch(content); m != nil {
		dateRange = strings.TrimSpace(m[1])
	}
	return count, dateRange
}

func titleFromSlug(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

var publishCmd = &cobra.Command{
	Use:   "publish <slug>",
	Short: "Copy reviewed drafts to the site repo and update the index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		slug := args[0]

		title := titleFromSlug(slug)
		if file, err := config.Load(flagConfig); err == nil {
			if cfg := file.FindBySlug(slug); cfg != nil {
				title = cfg.Title
			} else {
				fmt.Printf("Warning: no config found for slug %q — using slug as-is\n", slug)
			}
		}

		draftPath := filepath.Join(flagDrafts, slug+".html")
		if _, err := os.Stat(draftPath); err != nil {
			fmt.Printf("Error: no draft found at %s\n", draftPath)
			fmt.Println("Run 'pollpipe generate <survey_id>' first.")
			return err
		}
		responseCount, dateRange := draftMeta(draftPath)

		fmt.Printf("Publishing: %s\n", title)
		p := &publish.Publisher{
			DraftsDir: flagDrafts,
			SiteDir:   flagSite,
			Progress:  func(msg string) { fmt.Println(msg) },
		}
		if err := p.Publish(slug, title, responseCount, dateRange); err != nil {
			return err
		}

		fmt.Println()
		fmt.Println("  Done! Next steps:")
		fmt.Printf("  1. cd %s\n", flagSite)
		fmt.Println("  2. Review the changes")
		fmt.Printf("  3. git add -A && git commit -m 'Add %s poll'\n", title)
		fmt.Println("  4. git push  (the site host auto-deploys)")
		return nil
	},
}
