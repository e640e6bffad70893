// Package qual synthesizes qualitative content from open-text survey
// responses with a language model: themes with quotes, editorial copy, and
// social-card content.
package qual

// QuoteItem is one attributed quote supporting a theme.
type QuoteItem struct {
	Text        string `json:"text"`
	Title       string `json:"title"`
	CompanySize string `json:"company_size"`
}

// Theme is one recurring idea across responses.
type Theme struct {
	Name     string      `json:"name"`
	Count    int         `json:"count"`
	Quotes   []QuoteItem `json:"quotes"`
	BarWidth float64     `json:"bar_width"`
}

// ThemeResults groups themes by sentiment.
type ThemeResults struct {
	PositiveThemes []Theme `json:"positive_themes"`
	NegativeThemes []Theme `json:"negative_themes"`
	PositiveLabel  string  `json:"positive_label"`
	NegativeLabel  string  `json:"negative_label"`
}

// EditorialResults is pre-rendered HTML for the written sections.
type EditorialResults struct {
	TldrHTML     string `json:"tldr_html"`
	PatternsHTML string `json:"patterns_html"`
}

// SocialCard is the content for one share card. Data is card-type-specific.
type SocialCard struct {
	CardType string         `json:"card_type"`
	Title    string         `json:"title"`
	Data     map[string]any `json:"data"`
}

// SocialCardResults is the selected card set.
type SocialCardResults struct {
	Cards []SocialCard `json:"cards"`
}

// Results bundles all three synthesis outputs.
type Results struct {
	Themes      ThemeResults      `json:"themes"`
	Editorial   EditorialResults  `json:"editorial"`
	SocialCards SocialCardResults `json:"social_cards"`
}

// PeekTheme is a theme mention inside an early-peek section.
type PeekTheme struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// PeekQuote is an attributed quote inside an early-peek section.
type PeekQuote struct {
	Text        string `json:"text"`
	Attribution string `json:"attribution"`
}

// PeekSection is one titled block of the early-peek analysis.
type PeekSection struct {
	Emoji  string      `json:"emoji"`
	Title  string      `json:"title"`
	Themes []PeekTheme `json:"themes"`
	Quotes []PeekQuote `json:"quotes"`
}

// PeekAnalysis is the lightweight read on an in-flight survey.
type PeekAnalysis struct {
	Headline string        `json:"headline"`
	Sections []PeekSection `json:"sections"`
}
