// Package github pushes draft dashboards to the site repo through the
// Contents API. The site host auto-deploys on push, so drafts become
// reviewable at a stable preview URL.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/noamseg/pollpipe/internal/config"
)

const (
	defaultRepo    = "noamseg/lennys-polls-site"
	defaultSiteURL = "https://lennyspolls.com"
	apiBase        = "https://api.github.com"
	draftsPrefix   = "polls/drafts"
)

// Client talks to the GitHub Contents API for one repo.
type Client struct {
	baseURL string
	repo    string
	siteURL string
	token   string
	http    *http.Client
}

// NewClient builds a client from the environment.
func NewClient() *Client {
	return &Client{
		baseURL: apiBase,
		repo:    config.SafeEnv("GITHUB_REPO", defaultRepo),
		siteURL: config.SafeEnv("SITE_URL", defaultSiteURL),
		token:   config.SafeEnv("GITHUB_TOKEN", ""),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	return req, nil
}

// fileSHA returns the blob SHA of path, or "" if the file does not exist.
func (c *Client) fileSHA(ctx context.Context, url string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", nil
	}
	var out struct {
		SHA string `json:"sha"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.SHA, nil
}

// PutFile creates or updates a file in the repo. Updates need the current
// blob SHA, so it is looked up first.
func (c *Client) PutFile(ctx context.Context, path, content, message string) error {
	if c.token == "" {
		return errors.New("GITHUB_TOKEN not set in environment")
	}
	url := fmt.Sprintf("%s/repos/%s/contents/%s", c.baseURL, c.repo, path)

	sha, err := c.fileSHA(ctx, url)
	if err != nil {
		return err
	}

	payload := map[string]string{
		"message": message,
		"content": base64.StdEncoding.EncodeToString([]byte(content)),
	}
	if sha != "" {
		payload["sha"] = sha
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("github contents API %s: %s: %s", path, resp.Status, data)
	}
	return nil
}

// PushDrafts uploads the dashboard and social pages for slug and returns
// the dashboard preview URL.
func (c *Client) PushDrafts(ctx context.Context, slug, dashboardHTML, socialHTML string) (string, error) {
	if err := c.PutFile(ctx, draftsPrefix+"/"+slug+".html", dashboardHTML, "Draft dashboard: "+slug); err != nil {
		return "", err
	}
	if err := c.PutFile(ctx, draftsPrefix+"/"+slug+"-social.html", socialHTML, "Draft social cards: "+slug); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/%s.html", c.siteURL, draftsPrefix, slug), nil
}
