package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/noamseg/pollpipe/internal/ingest"
	"github.com/noamseg/pollpipe/internal/survey"
)

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a title into a URL slug.
func Slugify(title string) string {
	return strings.Trim(slugRe.ReplaceAllString(strings.ToLower(title), "-"), "-")
}

// Detect builds a SurveyConfig from raw survey data: the rating question's
// text becomes the title, its choice texts become the scale labels, and the
// thresholds land on the 2nd-highest and 2nd-lowest scale values.
func Detect(surveyID string, doc *survey.Document) *SurveyConfig {
	title := doc.DisplayTitle()

	scaleLabels := map[int]string{}
	for _, q := range doc.Questions {
		if q.Type != survey.TypeMultipleChoice {
			continue
		}
		answers := q.LiveAnswers()
		if !ingest.IsRatingQuestion(answers) {
			continue
		}
		if q.Text != "" {
			title = q.Text
		}
		for _, a := range answers {
			rating, ok := ingest.ExtractRating(a.Text)
			if !ok {
				continue
			}
			if _, seen := scaleLabels[rating]; seen {
				continue
			}
			if label, ok := ingest.RatingLabel(a.Text); ok {
				scaleLabels[rating] = label
			}
		}
		break
	}

	if len(scaleLabels) == 0 {
		for i := 1; i <= 5; i++ {
			scaleLabels[i] = strconv.Itoa(i)
		}
	}

	cfg := &SurveyConfig{
		ID:               surveyID,
		Title:            title,
		Slug:             Slugify(title),
		ScaleLabels:      scaleLabels,
		Audience:         "respondents",
		SubtitleTemplate: "{n} {audience} shared their perspectives.",
		SurveyTool:       "Polly survey",
	}

	keys := cfg.SortedScaleKeys()
	scaleMin, scaleMax := keys[0], keys[len(keys)-1]
	cfg.ScaleDescription = fmt.Sprintf("%d = %s, %d = %s",
		scaleMin, strings.ToLower(scaleLabels[scaleMin]),
		scaleMax, strings.ToLower(scaleLabels[scaleMax]))

	cfg.PositiveThreshold = scaleMax
	cfg.NegativeThreshold = scaleMin
	if len(keys) >= 2 {
		cfg.PositiveThreshold = keys[len(keys)-2]
		cfg.NegativeThreshold = keys[1]
	}
	return cfg
}

// LoadOrDetect prefers a configured survey and falls back to detection.
// The progress callback mirrors what the CLI prints.
func LoadOrDetect(path, surveyID string, doc *survey.Document, progress func(string)) (*SurveyConfig, error) {
	if progress == nil {
		progress = func(string) {}
	}
	f, err := Load(path)
	if err != nil {
		return nil, err
	}
	if cfg := f.FindByID(surveyID); cfg != nil {
		progress(fmt.Sprintf("Using configured survey: %s", cfg.Title))
		return cfg, nil
	}
	cfg := Detect(surveyID, doc)
	progress(fmt.Sprintf("Auto-detected config for: %s", cfg.Title))
	progress(fmt.Sprintf("  Slug: %s", cfg.Slug))
	progress(fmt.Sprintf("  Scale: %s", cfg.ScaleDescription))
	progress(fmt.Sprintf("  Positive threshold: >= %d, Negative threshold: <= %d",
		cfg.PositiveThreshold, cfg.NegativeThreshold))
	return cfg, nil
}
