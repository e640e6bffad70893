package qual

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/noamseg/pollpipe/internal/config"
	"github.com/noamseg/pollpipe/internal/ingest"
	"github.com/noamseg/pollpipe/internal/quant"
)

// bannedPhrases keeps the editorial voice away from stock LLM filler.
const bannedPhrases = `
BANNED PHRASES - never use any of these:
- "It's worth noting that..." / "It's interesting to note..." / "Interestingly..."
- "Let's dive in" / "Let's explore" / "Let's unpack"
- "In today's [landscape/environment/world]"
- "This raises an important question"
- "At the end of the day"
- "Overall" as a sentence opener
- "Navigate" (as metaphor) / "Landscape" / "Harness" / "Leverage" (as verb)
- "Empower" / "Elevate" / "Unlock" / "Foster" / "Streamline"
- "Robust" / "Holistic" / "Comprehensive" / "Dynamic"
- "Pivotal" / "Crucial" / "Transformative" / "Game-changing"
- "Seamless" / "Cutting-edge" / "Groundbreaking"
- "Not just X, but Y" constructions
- Ending with an inspirational call to action
- Tricolon escalation ("X, Y, and most importantly Z")
- Starting paragraphs with "When it comes to..."
- Using "while" to create false balance ("While some love X, others hate Y")
- Overuse of em-dashes for dramatic pause
`

// Synthesizer runs the structured language-model calls. It only depends on
// the Client contract so tests can stub the model.
type Synthesizer struct {
	client Client
}

// NewSynthesizer constructs a Synthesizer bound to a model client.
func NewSynthesizer(client Client) *Synthesizer {
	return &Synthesizer{client: client}
}

// Synthesize runs all three calls: themes, editorial, social cards.
func (s *Synthesizer) Synthesize(ctx context.Context, respondents []ingest.Respondent, qr *quant.Results, cfg *config.SurveyConfig, progress func(string)) (*Results, error) {
	if progress == nil {
		progress = func(string) {}
	}

	progress("  [qual] Extracting themes...")
	themes, err := s.ExtractThemes(ctx, respondents, cfg)
	if err != nil {
		return nil, err
	}

	progress("  [qual] Writing editorial content...")
	editorial, err := s.WriteEditorial(ctx, qr, themes, cfg)
	if err != nil {
		return nil, err
	}

	progress("  [qual] Selecting social card content...")
	cards, err := s.SelectSocialCards(ctx, qr, themes, cfg)
	if err != nil {
		return nil, err
	}

	return &Results{Themes: *themes, Editorial: *editorial, SocialCards: *cards}, nil
}

// sentimentEntry is a respondent's open text plus the metadata the model
// uses for quote attribution.
type sentimentEntry struct {
	Text        string `json:"text"`
	Title       string `json:"title"`
	CompanySize string `json:"company_size"`
	Rating      int    `json:"rating"`
}

// splitBySentiment buckets open-text responses by the configured rating
// thresholds. Respondents without both a rating and open text are skipped.
func splitBySentiment(respondents []ingest.Respondent, cfg *config.SurveyConfig) (positive, negative []sentimentEntry) {
	for _, r := range respondents {
		if r.OpenText == "" || r.Rating == nil {
			continue
		}
		entry := sentimentEntry{
			Text:        r.OpenText,
			Title:       orUnknown(r.JobTitle),
			CompanySize: orUnknown(r.CompanySize),
			Rating:      *r.Rating,
		}
		switch {
		case *r.Rating >= cfg.PositiveThreshold:
			positive = append(positive, entry)
		case *r.Rating <= cfg.NegativeThreshold:
			negative = append(negative, entry)
		}
	}
	return positive, negative
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func quoteSchema() map[string]any {
	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text":         map[string]any{"type": "string", "description": "Exact quote from the response"},
				"title":        map[string]any{"type": "string", "description": "Respondent's job title"},
				"company_size": map[string]any{"type": "string", "description": "Respondent's company size"},
			},
			"required": []string{"text", "title", "company_size"},
		},
		"minItems": 3,
		"maxItems": 3,
	}
}

func themeListSchema() map[string]any {
	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name":   map[string]any{"type": "string", "description": "Short theme name (2-4 words)"},
				"count":  map[string]any{"type": "integer", "description": "Number of responses mentioning this theme"},
				"quotes": quoteSchema(),
			},
			"required": []string{"name", "count", "quotes"},
		},
		"minItems": 6,
		"maxItems": 6,
	}
}

var themeTool = Tool{
	Name:        "extract_themes",
	Description: "Extract positive and negative themes from open-text survey responses.",
	InputSchema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"positive_themes": themeListSchema(),
			"negative_themes": themeListSchema(),
		},
		"required": []string{"positive_themes", "negative_themes"},
	},
}

// ExtractThemes runs call 1: 6 positive and 6 negative themes, each with 3
// thematically pure quotes.
func (s *Synthesizer) ExtractThemes(ctx context.Context, respondents []ingest.Respondent, cfg *config.SurveyConfig) (*ThemeResults, error) {
	positive, negative := splitBySentiment(respondents, cfg)
	positiveJSON, _ := json.MarshalIndent(positive, "", "  ")
	negativeJSON, _ := json.MarshalIndent(negative, "", "  ")

	prompt := fmt.Sprintf(`You are analyzing open-text survey responses for %q.

POSITIVE RESPONSES (rated %d+ out of %d):
%s

NEGATIVE RESPONSES (rated %d or below out of %d):
%s

INSTRUCTIONS:
1. Identify exactly 6 themes for POSITIVE and 6 themes for NEGATIVE.
2. For each theme:
   - Give it a short, clear name (2-4 words, e.g. "Team and people", "Bad leadership")
   - Count how many responses mention this theme
   - Select exactly 3 representative quotes
3. QUOTE RULES:
   - Each quote must be THEMATICALLY PURE: it should only speak to the theme it's filed under
   - Do NOT pick quotes that mix multiple themes
   - Use exact text from responses (light cleanup of typos is OK)
   - Mix company sizes and seniority levels across quotes
   - Prefer vivid, specific quotes over generic ones
4. Sort themes by count (highest first).
5. Theme names should be lowercase except proper nouns.`,
		cfg.Title,
		cfg.PositiveThreshold, cfg.ScaleMax(), positiveJSON,
		cfg.NegativeThreshold, cfg.ScaleMax(), negativeJSON)

	raw, err := s.client.CompleteWithTool(ctx, prompt, themeTool)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		PositiveThemes []Theme `json:"positive_themes"`
		NegativeThemes []Theme `json:"negative_themes"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse theme extraction: %w", err)
	}

	return &ThemeResults{
		PositiveThemes: withThemeBars(parsed.PositiveThemes),
		NegativeThemes: withThemeBars(parsed.NegativeThemes),
		PositiveLabel:  "What people love",
		NegativeLabel:  "What people hate",
	}, nil
}

// withThemeBars sets each theme's bar width relative to the largest count.
func withThemeBars(themes []Theme) []Theme {
	maxCount := 0
	for _, t := range themes {
		if t.Count > maxCount {
			maxCount = t.Count
		}
	}
	if maxCount == 0 {
		return themes
	}
	for i := range themes {
		themes[i].BarWidth = math.Round(float64(themes[i].Count) / float64(maxCount) * 100)
	}
	return themes
}

// WriteEditorial runs call 2: the tl;dr and patterns sections as HTML.
func (s *Synthesizer) WriteEditorial(ctx context.Context, qr *quant.Results, themes *ThemeResults, cfg *config.SurveyConfig) (*EditorialResults, error) {
	var dist []string
	for _, b := range qr.Distribution {
		dist = append(dist, fmt.Sprintf("Rating %d: %d (%.1f%%)", b.Rating, b.Count, b.Pct))
	}
	prompt := fmt.Sprintf(`You are writing editorial content for a polls dashboard: %q.

QUANTITATIVE DATA:
- Total responses: %d
- Distribution: %s
- By company size:
%s
- By tenure:
%s
- By role level:
%s

THEMES:
Positive themes:
%s
Negative themes:
%s

%s

WRITING RULES:
- Write like a sharp editorial writer sharing findings over coffee. Direct, specific, occasionally witty.
- Lead with the most surprising finding, not the most obvious one.
- Use concrete numbers: "27%% are actively unhappy" not "a significant portion expressed dissatisfaction."
- Do NOT lead with an average. Open with the most striking distribution insight.
- Keep the tl;dr to ~250 words.
- Patterns: 3-5 observations, each a short paragraph (2-4 sentences) starting with a bold mini-headline.

OUTPUT FORMAT:
Return valid JSON with two keys:
1. "tldr_html": the tl;dr section as HTML (paragraphs plus one <ul> per sentiment with <li><strong>Theme name.</strong> explanation</li> entries).
2. "patterns_html": the patterns section as HTML (<p><strong>Bold observation.</strong> 2-3 sentences with specific numbers.</p> per pattern).

Return ONLY the JSON object, no other text.`,
		cfg.Title,
		qr.TotalResponses, strings.Join(dist, ", "),
		crossTabLines(qr.ByCompanySize), crossTabLines(qr.ByTenure), crossTabLines(qr.ByRoleLevel),
		themeLines(themes.PositiveThemes), themeLines(themes.NegativeThemes),
		bannedPhrases)

	text, err := s.client.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var out EditorialResults
	if err := json.Unmarshal([]byte(stripCodeFences(text)), &out); err != nil {
		return nil, fmt.Errorf("parse editorial JSON: %w", err)
	}
	return &out, nil
}

func crossTabLines(rows []quant.CrossTabRow) string {
	var lines []string
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("  %s: %.2f (n=%d)", r.Label, r.Mean, r.N))
	}
	return strings.Join(lines, "\n")
}

func themeLines(themes []Theme) string {
	var lines []string
	for i, t := range themes {
		lines = append(lines, fmt.Sprintf("  %d. %s (%d mentions)", i+1, t.Name, t.Count))
	}
	return strings.Join(lines, "\n")
}

// stripCodeFences removes a surrounding markdown code fence if the model
// added one despite instructions.
func stripCodeFences(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	if _, rest, ok := strings.Cut(t, "\n"); ok {
		t = rest
	}
	t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	return strings.TrimSpace(t)
}

var socialCardsTool = Tool{
	Name:        "select_social_cards",
	Description: "Select content for 10-12 social media cards.",
	InputSchema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"cards": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"card_type": map[string]any{
							"type": "string",
							"enum": []string{"hero", "keyfinding", "quote_positive", "quote_negative",
								"comparison", "theme_positive", "theme_negative", "pattern"},
						},
						"title": map[string]any{"type": "string", "description": "Card headline or label"},
						"data": map[string]any{
							"type":        "object",
							"description": "Card-type-specific data (big_number, finding_text, context, quote_text, quote_attr, etc.)",
						},
					},
					"required": []string{"card_type", "title", "data"},
				},
				"minItems": 10,
				"maxItems": 12,
			},
		},
		"required": []string{"cards"},
	},
}

// SelectSocialCards runs call 3: pick the most shareable content mix.
func (s *Synthesizer) SelectSocialCards(ctx context.Context, qr *quant.Results, themes *ThemeResults, cfg *config.SurveyConfig) (*SocialCardResults, error) {
	var dist []string
	for _, b := range qr.Distribution {
		dist = append(dist, fmt.Sprintf("Rating %d: %.1f%%", b.Rating, b.Pct))
	}
	sizeData, _ := json.Marshal(qr.ByCompanySize)
	positiveQuotes, _ := json.MarshalIndent(topThemeQuotes(themes.PositiveThemes), "", "  ")
	negativeQuotes, _ := json.MarshalIndent(topThemeQuotes(themes.NegativeThemes), "", "  ")

	prompt := fmt.Sprintf(`Select content for 10-12 social media cards for the poll %q.

DATA:
- %d respondents, %s
- Distribution: %s
- Company size breakdown: %s
- Top positive themes: %s
- Top negative themes: %s

Available quotes (positive):
%s

Available quotes (negative):
%s

REQUIRED CARD MIX:
1. hero - distribution bar overview (data: headline, subtext)
2. keyfinding x2-3 - big number + insight (data: big_number, finding_text, context)
3. quote_positive x1 - vivid positive quote (data: quote_text, quote_attr, label)
4. quote_negative x1 - vivid negative quote (data: quote_text, quote_attr, label)
5. comparison x1 - company size bars (data: title, rows=[{label, value, n}])
6. theme_positive x1 - top 3 positive drivers (data: themes=[{rank, name, count, description}])
7. theme_negative x1 - top 3 negative drivers (data: themes=[{rank, name, count, description}])
8. pattern x2 - bold headline + data points (data: headline, points=[{value, label}], context, separator="->" or "vs")

RULES:
- Pick the most shareable, surprising insights
- Quotes should be vivid and stand alone without context
- All text should be readable at social media thumbnail size
- Use data from the survey only - do not invent data`,
		cfg.Title,
		qr.TotalResponses, cfg.Audience,
		strings.Join(dist, ", "),
		sizeData,
		topThemeNames(themes.PositiveThemes), topThemeNames(themes.NegativeThemes),
		positiveQuotes, negativeQuotes)

	raw, err := s.client.CompleteWithTool(ctx, prompt, socialCardsTool)
	if err != nil {
		return nil, err
	}
	var parsed SocialCardResults
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse social cards: %w", err)
	}
	return &parsed, nil
}

func topThemeNames(themes []Theme) string {
	var parts []string
	for i, t := range themes {
		if i == 3 {
			break
		}
		parts = append(parts, fmt.Sprintf("%s (%d)", t.Name, t.Count))
	}
	return strings.Join(parts, ", ")
}

type themeQuotes struct {
	Theme  string      `json:"theme"`
	Quotes []QuoteItem `json:"quotes"`
}

func topThemeQuotes(themes []Theme) []themeQuotes {
	var out []themeQuotes
	for i, t := range themes {
		if i == 3 {
			break
		}
		out = append(out, themeQuotes{Theme: t.Name, Quotes: t.Quotes})
	}
	return out
}
