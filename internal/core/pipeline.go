// Package core wires the pipeline stages together so the CLI and the Slack
// bot share one implementation of surveys, peek, and generate.
package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/noamseg/pollpipe/internal/config"
	"github.com/noamseg/pollpipe/internal/ingest"
	"github.com/noamseg/pollpipe/internal/qual"
	"github.com/noamseg/pollpipe/internal/quant"
	"github.com/noamseg/pollpipe/internal/render"
	"github.com/noamseg/pollpipe/internal/survey"
)

// ProgressFn receives human-readable step updates.
type ProgressFn func(msg string)

func noopProgress(string) {}

// SurveySummary is one survey as returned by the survey API listing.
type SurveySummary struct {
	ID     string
	Title  string
	Active bool
}

// SurveyAPI fetches survey data from the survey tool.
type SurveyAPI interface {
	GetSurveyInfo(ctx context.Context, surveyID string) (*survey.Document, error)
	ListSurveys(ctx context.Context) ([]SurveySummary, error)
}

// Synthesizer runs the language-model analysis stages.
type Synthesizer interface {
	Synthesize(ctx context.Context, respondents []ingest.Respondent, qr *quant.Results, cfg *config.SurveyConfig, progress func(string)) (*qual.Results, error)
	PeekAnalyze(ctx context.Context, title string, questions []qual.PeekQuestion) (*qual.PeekAnalysis, error)
}

// SurveyListItem is one row of the survey listing, with config status.
type SurveyListItem struct {
	ID         string
	Title      string
	Active     bool
	Configured bool
}

// PeekResult is everything a peek surface needs to render.
type PeekResult struct {
	Title      string
	Started    int
	Completed  int
	DateRange  string
	CloseLabel string
	Dists      []quant.QuestionDistribution
	Analysis   *qual.PeekAnalysis
	Config     *config.SurveyConfig
}

// GenerateResult is the full pipeline output plus rendered HTML.
type GenerateResult struct {
	Config        *config.SurveyConfig
	Quant         *quant.Results
	Qual          *qual.Results
	Questions     []quant.QuestionDistribution
	DashboardHTML string
	SocialHTML    string
}

// Pipeline holds the collaborators for all pipeline operations.
type Pipeline struct {
	API        SurveyAPI
	Synth      Synthesizer
	ConfigPath string
}

// ListSurveys lists all surveys with their config status.
func (p *Pipeline) ListSurveys(ctx context.Context) ([]SurveyListItem, error) {
	configured := map[string]bool{}
	if file, err := config.Load(p.ConfigPath); err == nil {
		for _, s := range file.Surveys {
			configured[s.ID] = true
		}
	}

	summaries, err := p.API.ListSurveys(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]SurveyListItem, 0, len(summaries))
	for _, s := range summaries {
		title := s.Title
		if title == "" {
			title = "Untitled"
		}
		items = append(items, SurveyListItem{
			ID:         s.ID,
			Title:      title,
			Active:     s.Active,
			Configured: configured[s.ID],
		})
	}
	return items, nil
}

// closeLabel formats the close date suffix for the peek header.
func closeLabel(doc *survey.Document) string {
	closeAt, ok := doc.CloseTime()
	if !ok {
		return ""
	}
	if doc.Active {
		return " · Closes " + closeAt.Format("Jan 2")
	}
	return " · Closed " + closeAt.Format("Jan 2")
}

// titleOrRoleQuestion reports whether an open-ended question collects the
// respondent's title or role rather than opinion text.
func titleOrRoleQuestion(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "title") || strings.Contains(lower, "current role")
}

// peekQuestions gathers open-text responses for the quick analysis,
// skipping title and role questions.
func peekQuestions(doc *survey.Document) (questions []qual.PeekQuestion, responseCount int) {
	for _, q := range doc.Questions {
		if q.Type != survey.TypeOpenEnded || titleOrRoleQuestion(q.Text) {
			continue
		}
		var texts []string
		for _, a := range q.LiveAnswers() {
			if t := strings.TrimSpace(a.Text); t != "" {
				texts = append(texts, t)
			}
		}
		if len(texts) == 0 {
			continue
		}
		questions = append(questions, qual.PeekQuestion{Text: q.Text, Responses: texts})
		responseCount += len(texts)
	}
	return questions, responseCount
}

// Peek fetches one survey and produces an early read: counts, question
// distributions, and a quick model analysis of open text.
func (p *Pipeline) Peek(ctx context.Context, surveyID string, progress ProgressFn) (*PeekResult, error) {
	if progress == nil {
		progress = noopProgress
	}

	progress("[1/3] Fetching survey data...")
	doc, err := p.API.GetSurveyInfo(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	title := doc.DisplayTitle()
	meta := quant.ComputeMeta(doc)
	label := closeLabel(doc)
	progress(fmt.Sprintf("Survey: %s (%d responded, %d completed%s)", title, meta.TotalStarted, meta.TotalCompleted, label))

	progress("[2/3] Computing question distributions...")
	dists := quant.BuildDistributions(doc)
	questions, openCount := peekQuestions(doc)
	progress(fmt.Sprintf("  %d multiple-choice questions, %d open-ended responses", len(dists), openCount))

	cfg := config.Detect(surveyID, doc)

	var analysis *qual.PeekAnalysis
	if openCount > 0 {
		progress("[3/3] Analyzing responses...")
		analysis, err = p.Synth.PeekAnalyze(ctx, title, questions)
		if err != nil {
			return nil, err
		}
		progress("  Done")
	} else {
		progress("[3/3] No open-ended responses to analyze — skipping model call")
	}

	return &PeekResult{
		Title:      title,
		Started:    meta.TotalStarted,
		Completed:  meta.TotalCompleted,
		DateRange:  meta.DateRange,
		CloseLabel: label,
		Dists:      dists,
		Analysis:   analysis,
		Config:     cfg,
	}, nil
}

// Generate runs the full pipeline for one survey: ingest, quantitative
// analysis, qualitative synthesis, and template rendering.
func (p *Pipeline) Generate(ctx context.Context, surveyID string, progress ProgressFn) (*GenerateResult, error) {
	if progress == nil {
		progress = noopProgress
	}

	progress("[1/4] Fetching survey data...")
	doc, err := p.API.GetSurveyInfo(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadOrDetect(p.ConfigPath, surveyID, doc, progress)
	if err != nil {
		return nil, err
	}
	progress("Generating dashboard for: " + cfg.Title)

	progress("[2/4] Ingesting and cross-referencing respondent data...")
	respondents := ingest.Ingest(doc)
	progress(fmt.Sprintf("  Found %d complete respondents", len(respondents)))

	progress("[3/4] Running quantitative analysis...")
	quantResults := quant.Analyze(respondents, cfg)
	var pcts []string
	for _, b := range quantResults.Distribution {
		pcts = append(pcts, fmt.Sprintf("%.1f%%", b.Pct))
	}
	progress("  Distribution: " + strings.Join(pcts, " / "))
	progress("  Date range: " + quantResults.DateRange)

	progress("[4/4] Running qualitative synthesis...")
	qualResults, err := p.Synth.Synthesize(ctx, respondents, quantResults, cfg, progress)
	if err != nil {
		return nil, err
	}
	progress(fmt.Sprintf("  Generated %d positive themes, %d negative themes",
		len(qualResults.Themes.PositiveThemes), len(qualResults.Themes.NegativeThemes)))
	progress(fmt.Sprintf("  Generated %d social cards", len(qualResults.SocialCards.Cards)))

	questions := quant.BuildDistributions(doc)

	progress("Rendering templates...")
	out := &render.Output{Config: cfg, Quant: quantResults, Qual: qualResults, Questions: questions}
	dashboardHTML, err := render.RenderDashboard(out)
	if err != nil {
		return nil, err
	}
	socialHTML, err := render.RenderSocial(out)
	if err != nil {
		return nil, err
	}

	return &GenerateResult{
		Config:        cfg,
		Quant:         quantResults,
		Qual:          qualResults,
		Questions:     questions,
		DashboardHTML: dashboardHTML,
		SocialHTML:    socialHTML,
	}, nil
}
