package quant

import (
	"testing"

	"github.com/noamseg/pollpipe/internal/survey"
)

func TestShortChoice(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Just me", "Just me"},
		{"4 — Pretty good", "Pretty good"},
		{"5 – Much better", "Much better"},
		{"Remote — working from home full time", "Remote"},
		{"4 - Pretty good", "Pretty good"},
		{"11-50", "11-50"},
		{"5001+", "5001+"},
		{"  padded  ", "padded"},
	}
	for _, c := range cases {
		if got := ShortChoice(c.in); got != c.want {
			t.Fatalf("ShortChoice(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestIsOrdinalChoices(t *testing.T) {
	if !isOrdinalChoices([]string{"2-10", "11-50", "251-1000", "5001+"}) {
		t.Fatalf("size brackets are ordinal")
	}
	if isOrdinalChoices([]string{"2-10", "11-50"}) {
		t.Fatalf("fewer than 3 choices is never ordinal")
	}
	if isOrdinalChoices([]string{"red", "green", "blue", "1 thing"}) {
		t.Fatalf("25%% numeric is below the 60%% bar")
	}
}

func mcQuestion(id, text string, answers ...survey.Answer) survey.Question {
	return survey.Question{ID: id, Text: text, Type: survey.TypeMultipleChoice, Results: answers}
}

func TestBuildDistributionsOrdinalSort(t *testing.T) {
	doc := &survey.Document{Questions: []survey.Question{
		mcQuestion("q1", "What size is your company?",
			survey.Answer{UserID: "u1", Text: "11-50"},
			survey.Answer{UserID: "u2", Text: "251-1000"},
			survey.Answer{UserID: "u3", Text: "2-10"},
			survey.Answer{UserID: "u4", Text: "5001+"},
			survey.Answer{UserID: "u5", Text: "5001+"},
		),
	}}
	dists := BuildDistributions(doc)
	if len(dists) != 1 {
		t.Fatalf("expected one distribution, got %d", len(dists))
	}
	want := []string{"2-10", "11-50", "251-1000", "5001+"}
	for i, label := range want {
		if dists[0].Choices[i].Label != label {
			t.Fatalf("position %d: got %q, want %q", i, dists[0].Choices[i].Label, label)
		}
	}
}

func TestBuildDistributionsRatingSort(t *testing.T) {
	doc := &survey.Document{Questions: []survey.Question{
		mcQuestion("q1", "How do you feel?",
			survey.Answer{UserID: "u1", Text: "5 - Love it"},
			survey.Answer{UserID: "u2", Text: "5 - Love it"},
			survey.Answer{UserID: "u3", Text: "1 - Hate it"},
			survey.Answer{UserID: "u4", Text: "4 - Pretty good"},
		),
	}}
	d := BuildDistributions(doc)[0]
	if !d.IsRating {
		t.Fatalf("expected rating question")
	}
	ratings := []int{1, 4, 5}
	for i, want := range ratings {
		if d.Choices[i].Rating != want {
			t.Fatalf("position %d: rating %d, want %d", i, d.Choices[i].Rating, want)
		}
	}
	if d.Choices[0].Label != "Hate it" {
		t.Fatalf("labels should drop the numeric prefix, got %q", d.Choices[0].Label)
	}
}

func TestBuildDistributionsBounds(t *testing.T) {
	doc := &survey.Document{Questions: []survey.Question{
		mcQuestion("q1", "Pick",
			survey.Answer{UserID: "u1", Text: "alpha"},
			survey.Answer{UserID: "u2", Text: "alpha"},
			survey.Answer{UserID: "u3", Text: "beta"},
		),
	}}
	d := BuildDistributions(doc)[0]
	sawFullBar := false
	for _, c := range d.Choices {
		if c.Pct < 0 || c.Pct > 100 || c.BarWidth < 0 || c.BarWidth > 100 {
			t.Fatalf("out-of-bounds pct/bar: %+v", c)
		}
		if c.BarWidth == 100 {
			sawFullBar = true
		}
	}
	if !sawFullBar {
		t.Fatalf("the most frequent choice must have bar_width 100")
	}
	// Frequency order: alpha (2) before beta (1).
	if d.Choices[0].Label != "alpha" || d.Choices[0].Pct != 66.7 {
		t.Fatalf("unexpected leading choice: %+v", d.Choices[0])
	}
}

func TestBuildDistributionsMultiselect(t *testing.T) {
	doc := &survey.Document{Questions: []survey.Question{
		mcQuestion("q1", "Pick all that apply",
			survey.Answer{UserID: "u1", Text: "docs"},
			survey.Answer{UserID: "u1", Text: "tests"},
			survey.Answer{UserID: "u2", Text: "docs"},
		),
	}}
	d := BuildDistributions(doc)[0]
	if !d.IsMultiselect {
		t.Fatalf("more answers than users means multiselect")
	}
	if d.NRespondents != 2 {
		t.Fatalf("n_respondents = %d", d.NRespondents)
	}
	// Percentages are relative to distinct users, so they can individually
	// reach 100 for popular options.
	if d.Choices[0].Label != "docs" || d.Choices[0].Pct != 100 {
		t.Fatalf("unexpected top choice: %+v", d.Choices[0])
	}
}

func TestBuildDistributionsSkipsEmptyAndDeleted(t *testing.T) {
	doc := &survey.Document{Questions: []survey.Question{
		mcQuestion("q1", "Nobody answered"),
		mcQuestion("q2", "Only deleted", survey.Answer{UserID: "u1", Text: "x", Deleted: true}),
		{ID: "q3", Text: "Open", Type: survey.TypeOpenEnded,
			Results: []survey.Answer{{UserID: "u1", Text: "hello"}}},
		mcQuestion("q4", "Counted",
			survey.Answer{UserID: "u1", Text: "yes"},
			survey.Answer{UserID: "u2", Text: "no", Deleted: true},
		),
	}}
	dists := BuildDistributions(doc)
	if len(dists) != 1 || dists[0].Question != "Counted" {
		t.Fatalf("expected only the answered MC question, got %+v", dists)
	}
	if dists[0].NRespondents != 1 || len(dists[0].Choices) != 1 {
		t.Fatalf("deleted answer leaked into the tally: %+v", dists[0])
	}
}
