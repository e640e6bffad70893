package qual

import (
	"context"
	"encoding/json"
	"fmt"
)

// PeekQuestion is one open-ended question with its live responses, ready
// for a quick read.
type PeekQuestion struct {
	Text      string   `json:"question"`
	Responses []string `json:"responses"`
}

var peekTool = Tool{
	Name:        "peek_analysis",
	Description: "Summarize early themes in open-text survey responses.",
	InputSchema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"headline": map[string]any{
				"type":        "string",
				"description": "One-sentence takeaway across all questions",
			},
			"sections": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"emoji": map[string]any{"type": "string", "description": "Single emoji that fits the section"},
						"title": map[string]any{"type": "string", "description": "The question being summarized"},
						"themes": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"name":  map[string]any{"type": "string", "description": "Short theme name"},
									"count": map[string]any{"type": "integer", "description": "Responses touching this theme"},
								},
								"required": []string{"name", "count"},
							},
							"minItems": 3,
							"maxItems": 5,
						},
						"quotes": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"text":        map[string]any{"type": "string", "description": "Exact quote"},
									"attribution": map[string]any{"type": "string", "description": "Role or company size, if known"},
								},
								"required": []string{"text"},
							},
							"minItems": 2,
							"maxItems": 3,
						},
					},
					"required": []string{"emoji", "title", "themes", "quotes"},
				},
			},
		},
		"required": []string{"headline", "sections"},
	},
}

// PeekAnalyze produces a quick in-flight read of open-text responses. It is
// deliberately lighter than the full synthesis: a few themes and quotes per
// question, no editorial.
func (s *Synthesizer) PeekAnalyze(ctx context.Context, title string, questions []PeekQuestion) (*PeekAnalysis, error) {
	payload, _ := json.MarshalIndent(questions, "", "  ")

	prompt := fmt.Sprintf(`You are taking an early peek at responses to a still-running survey: %q.

OPEN-TEXT RESPONSES BY QUESTION:
%s

INSTRUCTIONS:
1. Write a one-sentence headline capturing the most interesting signal so far.
2. For each question, identify 3-5 emerging themes with rough counts.
3. Pick 2-3 vivid quotes per question (exact text, light typo cleanup OK).
4. This is a quick read, not a final analysis: favor clarity over completeness.`,
		title, payload)

	raw, err := s.client.CompleteWithTool(ctx, prompt, peekTool)
	if err != nil {
		return nil, err
	}
	var parsed PeekAnalysis
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse peek analysis: %w", err)
	}
	return &parsed, nil
}
