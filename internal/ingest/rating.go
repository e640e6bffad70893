package ingest

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/noamseg/pollpipe/internal/survey"
)

// Rating choices look like "4 - Pretty good": leading digits, whitespace, a
// dash (hyphen, en or em), whitespace, then a label. The surrounding
// whitespace is what separates them from numeric-range choices like "11-50".
var (
	ratingChoiceRe = regexp.MustCompile(`^\d+\s+[-–—]\s+\S`)
	ratingLeadRe   = regexp.MustCompile(`^(\d+)\s*[-–—]`)
	ratingLabelRe  = regexp.MustCompile(`^\d+\s+[-–—]\s+(.+)`)
)

// IsRatingQuestion reports whether a multiple-choice question's answers use a
// numeric rating scale. At least 80% of answers must match the "N - label"
// shape.
func IsRatingQuestion(answers []survey.Answer) bool {
	if len(answers) == 0 {
		return false
	}
	matches := 0
	for _, a := range answers {
		if ratingChoiceRe.MatchString(strings.TrimSpace(a.Text)) {
			matches++
		}
	}
	return matches*5 >= len(answers)*4
}

// ExtractRating pulls the numeric rating from choice text like
// "4 - Pretty good". A bare integer is accepted as-is. Anything else is
// treated as malformed and reported absent.
func ExtractRating(text string) (int, bool) {
	t := strings.TrimSpace(text)
	if m := ratingLeadRe.FindStringSubmatch(t); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false
		}
		return n, true
	}
	if n, err := strconv.Atoi(t); err == nil && t != "" {
		return n, true
	}
	return 0, false
}

// RatingLabel extracts the label part of a rating choice ("4 - Pretty good"
// yields "Pretty good").
func RatingLabel(text string) (string, bool) {
	m := ratingLabelRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}
