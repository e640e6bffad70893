// Package render turns pipeline results into the static dashboard and
// social-card HTML pages. Templates, CSS, and the logo are embedded so the
// binary is self-contained.
package render

import (
	"bytes"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/noamseg/pollpipe/internal/config"
	"github.com/noamseg/pollpipe/internal/qual"
	"github.com/noamseg/pollpipe/internal/quant"
)

//go:embed templates assets
var content embed.FS

// Output bundles everything the templates need for one survey.
type Output struct {
	Config    *config.SurveyConfig
	Quant     *quant.Results
	Qual      *qual.Results
	Questions []quant.QuestionDistribution
}

// Subtitle expands the config's subtitle template with the response count
// and audience.
func Subtitle(cfg *config.SurveyConfig, totalResponses int) string {
	s := strings.ReplaceAll(cfg.SubtitleTemplate, "{n}", strconv.Itoa(totalResponses))
	return strings.ReplaceAll(s, "{audience}", cfg.Audience)
}

func logoDataURI() (string, error) {
	svg, err := content.ReadFile("assets/logo.svg")
	if err != nil {
		return "", err
	}
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(svg), nil
}

func loadCSS(name string) (template.CSS, error) {
	css, err := content.ReadFile("templates/css/" + name)
	if err != nil {
		return "", err
	}
	return template.CSS(css), nil
}

var funcs = template.FuncMap{
	// Editorial sections arrive as pre-built HTML from the synthesis step.
	"raw": func(s string) template.HTML { return template.HTML(s) },
	"pct": func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
	"add": func(a, b int) int { return a + b },
}

func parseTemplate(name string) (*template.Template, error) {
	return template.New(name).Funcs(funcs).ParseFS(content, "templates/"+name)
}

type dashboardData struct {
	Config    *config.SurveyConfig
	Quant     *quant.Results
	Qual      *qual.Results
	Questions []quant.QuestionDistribution
	CSS       template.CSS
	Subtitle  string
	LogoURI   template.URL
	ScaleMax  int
}

// RenderDashboard renders the full dashboard page.
func RenderDashboard(out *Output) (string, error) {
	tmpl, err := parseTemplate("dashboard.html.tmpl")
	if err != nil {
		return "", err
	}
	css, err := loadCSS("dashboard.css")
	if err != nil {
		return "", err
	}
	logo, err := logoDataURI()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, dashboardData{
		Config:    out.Config,
		Quant:     out.Quant,
		Qual:      out.Qual,
		Questions: out.Questions,
		CSS:       css,
		Subtitle:  Subtitle(out.Config, out.Quant.TotalResponses),
		LogoURI:   template.URL(logo),
		ScaleMax:  out.Config.ScaleMax(),
	})
	if err != nil {
		return "", fmt.Errorf("render dashboard: %w", err)
	}
	return buf.String(), nil
}

// WriteDashboard renders the dashboard and writes it to the drafts
// directory as <slug>.html.
func WriteDashboard(out *Output, draftsDir string) (string, error) {
	html, err := RenderDashboard(out)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(draftsDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(draftsDir, out.Config.Slug+".html")
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

type socialData struct {
	Config   *config.SurveyConfig
	Quant    *quant.Results
	Cards    []qual.SocialCard
	CSS      template.CSS
	Subtitle string
	LogoURI  template.URL
	ScaleMax int
}

// RenderSocial renders the social-cards page.
func RenderSocial(out *Output) (string, error) {
	tmpl, err := parseTemplate("social.html.tmpl")
	if err != nil {
		return "", err
	}
	css, err := loadCSS("social.css")
	if err != nil {
		return "", err
	}
	logo, err := logoDataURI()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, socialData{
		Config:   out.Config,
		Quant:    out.Quant,
		Cards:    out.Qual.SocialCards.Cards,
		CSS:      css,
		Subtitle: Subtitle(out.Config, out.Quant.TotalResponses),
		LogoURI:  template.URL(logo),
		ScaleMax: out.Config.ScaleMax(),
	})
	if err != nil {
		return "", fmt.Errorf("render social cards: %w", err)
	}
	return buf.String(), nil
}

// WriteSocial renders the social-cards page and writes it to the drafts
// directory as <slug>-social.html.
func WriteSocial(out *Output, draftsDir string) (string, error) {
	html, err := RenderSocial(out)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(draftsDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(draftsDir, out.Config.Slug+"-social.html")
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
