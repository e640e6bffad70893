package quant

import (
	"fmt"
	"time"

	"github.com/noamseg/pollpipe/internal/ingest"
	"github.com/noamseg/pollpipe/internal/survey"
)

// Meta summarizes raw participation: how many users answered anything, how
// many answered the last question (the dashboard's completion proxy), and
// the span of response timestamps.
type Meta struct {
	TotalStarted   int
	TotalCompleted int
	DateRange      string
}

// ComputeMeta derives participation counts and the date range from a raw
// survey document.
func ComputeMeta(doc *survey.Document) Meta {
	allUsers := map[string]struct{}{}
	var timestamps []time.Time
	for _, q := range doc.Questions {
		for _, a := range q.LiveAnswers() {
			allUsers[a.UserID] = struct{}{}
			if ts, ok := a.Time(); ok {
				timestamps = append(timestamps, ts)
			}
		}
	}

	started := len(allUsers)
	completed := started
	if n := len(doc.Questions); n > 0 {
		lastUsers := map[string]struct{}{}
		for _, a := range doc.Questions[n-1].LiveAnswers() {
			lastUsers[a.UserID] = struct{}{}
		}
		completed = len(lastUsers)
	}

	return Meta{
		TotalStarted:   started,
		TotalCompleted: completed,
		DateRange:      FormatDateRange(timestamps),
	}
}

// respondentDateRange formats the span of the cohort's rating timestamps.
func respondentDateRange(respondents []ingest.Respondent) string {
	var timestamps []time.Time
	for _, r := range respondents {
		if r.VotedAt != nil {
			timestamps = append(timestamps, *r.VotedAt)
		}
	}
	return FormatDateRange(timestamps)
}

// FormatDateRange renders a timestamp span as "Jan 28, 2026",
// "Jan 28 – Feb 4, 2026", or "Dec 30, 2025 – Jan 2, 2026".
func FormatDateRange(timestamps []time.Time) string {
	if len(timestamps) == 0 {
		return "Date range unavailable"
	}
	earliest, latest := timestamps[0], timestamps[0]
	for _, ts := range timestamps[1:] {
		if ts.Before(earliest) {
			earliest = ts
		}
		if ts.After(latest) {
			latest = ts
		}
	}

	ey, em, ed := earliest.Date()
	ly, lm, ld := latest.Date()
	if ey == ly && em == lm && ed == ld {
		return earliest.Format("Jan 2, 2006")
	}
	if ey == ly {
		return fmt.Sprintf("%s – %s, %d", earliest.Format("Jan 2"), latest.Format("Jan 2"), ly)
	}
	return fmt.Sprintf("%s – %s", earliest.Format("Jan 2, 2006"), latest.Format("Jan 2, 2006"))
}
