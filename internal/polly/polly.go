// Package polly is the client for the Polly survey API. Polly uses POST
// endpoints with dot-notation paths (surveys.info, surveys.list) and
// authenticates with an X-API-TOKEN header.
package polly

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/noamseg/pollpipe/internal/config"
	"github.com/noamseg/pollpipe/internal/core"
	"github.com/noamseg/pollpipe/internal/survey"
)

const defaultBaseURL = "https://api.polly.ai/v1"

// Client talks to the Polly API. It implements core.SurveyAPI.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient builds a client from the environment.
func NewClient() *Client {
	return &Client{
		baseURL: config.SafeEnv("POLLY_BASE_URL", defaultBaseURL),
		token:   config.SafeEnv("POLLY_API_TOKEN", ""),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	if c.token == "" {
		return nil, errors.New("POLLY_API_TOKEN not set in environment")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-TOKEN", c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("polly request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, core.NewBadGatewayError(fmt.Sprintf("polly API %s: %s", path, resp.Status))
	}
	return data, nil
}

// GetSurveyInfo fetches one survey with questions and all individual
// results.
func (c *Client) GetSurveyInfo(ctx context.Context, surveyID string) (*survey.Document, error) {
	data, err := c.post(ctx, "/surveys.info", map[string]string{"id": surveyID})
	if err != nil {
		return nil, err
	}
	doc, err := survey.ParseDocument(data)
	if err != nil {
		return nil, core.NewInvalidError(fmt.Sprintf("survey %s: %v", surveyID, err))
	}
	return doc, nil
}

type listEntry struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Name     string `json:"name"`
	Question string `json:"question"`
	Active   bool   `json:"active"`
}

func (e listEntry) displayTitle() string {
	switch {
	case e.Title != "":
		return e.Title
	case e.Name != "":
		return e.Name
	default:
		return e.Question
	}
}

// ListSurveys fetches all available surveys.
func (c *Client) ListSurveys(ctx context.Context) ([]core.SurveySummary, error) {
	data, err := c.post(ctx, "/surveys.list", map[string]string{})
	if err != nil {
		return nil, err
	}
	var entries []listEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, core.NewInvalidError(fmt.Sprintf("decode survey list: %v", err))
	}
	summaries := make([]core.SurveySummary, 0, len(entries))
	for _, e := range entries {
		summaries = append(summaries, core.SurveySummary{
			ID:     e.ID,
			Title:  e.displayTitle(),
			Active: e.Active,
		})
	}
	return summaries, nil
}
