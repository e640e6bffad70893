// Package quant computes the deterministic, quantitative side of a survey:
// per-question response distributions, rating breakdowns, demographic
// cross-tabs, and survey-level metadata.
package quant

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/noamseg/pollpipe/internal/ingest"
	"github.com/noamseg/pollpipe/internal/survey"
)

// ChoiceEntry is one answer choice within a question distribution.
type ChoiceEntry struct {
	Label    string  `json:"label"`
	Count    int     `json:"count"`
	Pct      float64 `json:"pct"`
	BarWidth float64 `json:"bar_width"`
	Rating   int     `json:"rating,omitempty"`
}

// QuestionDistribution is the response tally for one multiple-choice
// question. IsMultiselect holds when the question collected more answers
// than distinct respondents.
type QuestionDistribution struct {
	Question      string        `json:"question"`
	IsRating      bool          `json:"is_rating"`
	IsMultiselect bool          `json:"is_multiselect"`
	NRespondents  int           `json:"n_respondents"`
	Choices       []ChoiceEntry `json:"choices"`
}

var (
	leadingIntRe   = regexp.MustCompile(`^(\d+)`)
	shortChoiceRe  = regexp.MustCompile(`^(\d+)\s+-\s+(.+)`)
	ratingPrefixRe = regexp.MustCompile(`^(\d+)\s+[-–—]`)
)

// ShortChoice extracts the short display label from a choice like
// "Option — longer explanation". Rating choices like "4 — Pretty good"
// return the label part; numeric ranges like "11-50" are left alone.
func ShortChoice(text string) string {
	for _, sep := range []string{" — ", " – "} {
		if before, after, ok := strings.Cut(text, sep); ok {
			before = strings.TrimSpace(before)
			if isDigits(before) {
				return strings.TrimSpace(after)
			}
			return before
		}
	}
	if m := shortChoiceRe.FindStringSubmatch(text); m != nil {
		rest := strings.TrimSpace(m[2])
		if !isDigits(strings.ReplaceAll(rest, "+", "")) {
			return rest
		}
	}
	return strings.TrimSpace(text)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ordinalSortKey extracts a leading integer for ordinal sorting
// ("11-50" yields 11, "5001+" yields 5001). Choices without a leading
// integer have no key.
func ordinalSortKey(text string) (int, bool) {
	m := leadingIntRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// isOrdinalChoices detects choice sets with an implicit numeric order, such
// as company-size brackets: at least 3 distinct choices and 60% of them
// starting with an integer.
func isOrdinalChoices(texts []string) bool {
	if len(texts) < 3 {
		return false
	}
	numeric := 0
	for _, t := range texts {
		if _, ok := ordinalSortKey(t); ok {
			numeric++
		}
	}
	return numeric*5 >= len(texts)*3
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// BuildDistributions tallies every multiple-choice question with at least
// one non-deleted answer. Rating questions sort ascending by rating, ordinal
// choice sets ascending by their leading integer, and everything else stays
// in descending-frequency order.
func BuildDistributions(doc *survey.Document) []QuestionDistribution {
	var out []QuestionDistribution
	for _, q := range doc.Questions {
		if q.Type != survey.TypeMultipleChoice {
			continue
		}
		answers := q.LiveAnswers()
		if len(answers) == 0 {
			continue
		}

		users := map[string]struct{}{}
		counts := map[string]int{}
		var order []string // distinct texts in first-seen order
		for _, a := range answers {
			users[a.UserID] = struct{}{}
			if _, seen := counts[a.Text]; !seen {
				order = append(order, a.Text)
			}
			counts[a.Text]++
		}
		uniqueUsers := len(users)
		isRating := ingest.IsRatingQuestion(answers)

		// Descending frequency, first-seen order on ties.
		sort.SliceStable(order, func(i, j int) bool {
			return counts[order[i]] > counts[order[j]]
		})

		type tally struct {
			raw    string
			entry  ChoiceEntry
			rating int
		}
		tallies := make([]tally, 0, len(order))
		for _, raw := range order {
			count := counts[raw]
			pct := 0.0
			if uniqueUsers > 0 {
				pct = round1(float64(count) / float64(uniqueUsers) * 100)
			}
			tl := tally{raw: raw, entry: ChoiceEntry{Label: ShortChoice(raw), Count: count, Pct: pct}}
			if isRating {
				if m := ratingPrefixRe.FindStringSubmatch(raw); m != nil {
					tl.rating, _ = strconv.Atoi(m[1])
				}
				tl.entry.Rating = tl.rating
			}
			tallies = append(tallies, tl)
		}

		if isRating {
			sort.SliceStable(tallies, func(i, j int) bool {
				return tallies[i].rating < tallies[j].rating
			})
		} else {
			raws := make([]string, len(tallies))
			for i, tl := range tallies {
				raws[i] = tl.raw
			}
			if isOrdinalChoices(raws) {
				sort.SliceStable(tallies, func(i, j int) bool {
					ki, _ := ordinalSortKey(tallies[i].raw)
					kj, _ := ordinalSortKey(tallies[j].raw)
					return ki < kj
				})
			}
		}

		maxPct := 0.0
		for _, tl := range tallies {
			if tl.entry.Pct > maxPct {
				maxPct = tl.entry.Pct
			}
		}
		choices := make([]ChoiceEntry, 0, len(tallies))
		for _, tl := range tallies {
			if maxPct > 0 {
				tl.entry.BarWidth = round1(tl.entry.Pct / maxPct * 100)
			}
			choices = append(choices, tl.entry)
		}

		out = append(out, QuestionDistribution{
			Question:      q.Text,
			IsRating:      isRating,
			IsMultiselect: len(answers) > uniqueUsers,
			NRespondents:  uniqueUsers,
			Choices:       choices,
		})
	}
	return out
}
