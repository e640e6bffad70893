// Package survey defines the raw survey document as returned by the Polly
// API. Decoding and structural validation happen once, at this boundary;
// everything downstream works with fully typed values.
package survey

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	TypeMultipleChoice = "multiple_choice"
	TypeOpenEnded      = "open_ended"
)

// Answer is a single response to one question by one user. Deleted answers
// are soft-delete markers from the source system and must be excluded from
// every computation.
type Answer struct {
	UserID    string `json:"user_id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at,omitempty"`
	Deleted   bool   `json:"deleted,omitempty"`
}

// Time parses the answer's created_at timestamp. The API emits ISO8601 with
// a trailing Z.
func (a Answer) Time() (time.Time, bool) {
	if a.CreatedAt == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, a.CreatedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Question holds one survey question and all individual results for it.
type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Type    string   `json:"type"`
	Results []Answer `json:"results"`
}

// LiveAnswers returns the non-deleted answers in input order.
func (q Question) LiveAnswers() []Answer {
	out := make([]Answer, 0, len(q.Results))
	for _, a := range q.Results {
		if !a.Deleted {
			out = append(out, a)
		}
	}
	return out
}

// Document is one raw survey as returned by surveys.info.
type Document struct {
	Title     string     `json:"title,omitempty"`
	Name      string     `json:"name,omitempty"`
	Question  string     `json:"question,omitempty"`
	Active    bool       `json:"active,omitempty"`
	CloseAt   string     `json:"close_at,omitempty"`
	Questions []Question `json:"questions"`
}

// DisplayTitle picks the best available title field.
func (d *Document) DisplayTitle() string {
	switch {
	case d.Title != "":
		return d.Title
	case d.Name != "":
		return d.Name
	case d.Question != "":
		return d.Question
	}
	return "Survey"
}

// CloseTime parses close_at if present.
func (d *Document) CloseTime() (time.Time, bool) {
	if d.CloseAt == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, d.CloseAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

var errNoQuestions = errors.New("document has no questions key")

// ParseDocument decodes and validates a raw surveys.info payload. A missing
// questions key or an answer without a user_id means the upstream API
// contract was violated and is a hard failure; an empty questions list is
// valid and yields empty downstream results.
func ParseDocument(data []byte) (*Document, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode survey document: %w", err)
	}
	if _, ok := probe["questions"]; !ok {
		return nil, errNoQuestions
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode survey document: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks the structural invariants the rest of the pipeline relies
// on. Data-quality problems (unparseable text, odd labels) are not checked
// here; those degrade gracefully downstream.
func (d *Document) Validate() error {
	for _, q := range d.Questions {
		if q.ID == "" {
			return fmt.Errorf("question %q has no id", strings.TrimSpace(q.Text))
		}
		for i, a := range q.Results {
			if a.UserID == "" {
				return fmt.Errorf("question %s: answer %d has no user_id", q.ID, i)
			}
		}
	}
	return nil
}
