// Package publish copies reviewed drafts into the site repo and inserts a
// poll card into the index page.
package publish

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/noamseg/pollpipe/internal/core"
)

// insertMarker is where new poll cards go in index.html.
const insertMarker = "<!-- ADD MORE POLLS HERE -->"

// Publisher moves drafts into a local checkout of the site.
type Publisher struct {
	DraftsDir string
	SiteDir   string
	Progress  func(string)
}

func (p *Publisher) progress(format string, args ...any) {
	if p.Progress != nil {
		p.Progress(fmt.Sprintf(format, args...))
	}
}

// Publish copies the dashboard and social drafts for slug into the site's
// polls/ directory and adds a card to index.html. A missing social draft is
// a warning, a missing dashboard draft is an error.
func (p *Publisher) Publish(slug, title string, responseCount int, dateRange string) error {
	dashboardDraft := filepath.Join(p.DraftsDir, slug+".html")
	socialDraft := filepath.Join(p.DraftsDir, slug+"-social.html")

	if _, err := os.Stat(dashboardDraft); err != nil {
		return core.NewNotFoundError(fmt.Sprintf("dashboard draft not found: %s", dashboardDraft))
	}

	pollsDir := filepath.Join(p.SiteDir, "polls")
	if err := os.MkdirAll(pollsDir, 0o755); err != nil {
		return err
	}

	dashboardDest := filepath.Join(pollsDir, slug+".html")
	if err := copyFile(dashboardDraft, dashboardDest); err != nil {
		return err
	}
	p.progress("  [publish] Copied %s → %s", filepath.Base(dashboardDraft), dashboardDest)

	if _, err := os.Stat(socialDraft); err == nil {
		socialDest := filepath.Join(pollsDir, slug+"-social.html")
		if err := copyFile(socialDraft, socialDest); err != nil {
			return err
		}
		p.progress("  [publish] Copied %s → %s", filepath.Base(socialDraft), socialDest)
	} else {
		p.progress("  [publish] Warning: social cards draft not found: %s", socialDraft)
	}

	return p.updateIndex(slug, title, responseCount, dateRange)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// updateIndex inserts a poll card before the marker. Already-indexed polls
// and a missing marker are skipped with a warning rather than failing the
// publish.
func (p *Publisher) updateIndex(slug, title string, responseCount int, dateRange string) error {
	indexPath := filepath.Join(p.SiteDir, "index.html")
	data, err := os.ReadFile(indexPath)
	if err != nil {
		p.progress("  [publish] Warning: index.html not found at %s", indexPath)
		return nil
	}
	content := string(data)

	if strings.Contains(content, "/polls/"+slug+".html") {
		p.progress("  [publish] Poll %q already in index.html — skipping update", slug)
		return nil
	}
	if !strings.Contains(content, insertMarker) {
		p.progress("  [publish] Warning: insert marker not found in index.html")
		return nil
	}

	existing := strings.Count(content, `class="poll-card`)
	delayClass := "delay-3"
	if existing < 5 {
		delayClass = fmt.Sprintf("delay-%d", existing+1)
	}

	card := fmt.Sprintf(`    <a href="/polls/%s.html" class="poll-card animate-in %s">
      <div class="poll-card-content">
        <div class="poll-card-title">%s</div>
        <div class="poll-card-meta">
          <span>%d responses</span>
          <span>%s</span>
        </div>
      </div>
      <div class="poll-card-arrow">→</div>
    </a>

    `, slug, delayClass, title, responseCount, dateRange)

	content = strings.Replace(content, insertMarker, card+insertMarker, 1)
	if err := os.WriteFile(indexPath, []byte(content), 0o644); err != nil {
		return err
	}
	p.progress("  [publish] Updated index.html with new poll card")
	return nil
}
