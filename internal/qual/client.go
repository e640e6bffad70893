package qual

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
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	defaultModel   = "claude-sonnet-4-5-20250929"
	maxTokens      = 4096
)

// Tool describes a structured-output tool the model is forced to call.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// Client is the language-model call contract. Complete returns free text;
// CompleteWithTool forces a tool call and returns its input payload.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithTool(ctx context.Context, prompt string, tool Tool) (json.RawMessage, error)
}

// AnthropicClient implements Client against the Anthropic messages API.
type AnthropicClient struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

// NewAnthropicClient builds a client from the environment.
func NewAnthropicClient() *AnthropicClient {
	return &AnthropicClient{
		baseURL: config.SafeEnv("ANTHROPIC_BASE_URL", defaultBaseURL),
		apiKey:  config.SafeEnv("ANTHROPIC_API_KEY", ""),
		model:   config.SafeEnv("ANTHROPIC_MODEL", defaultModel),
		http:    &http.Client{Timeout: 120 * time.Second},
	}
}

type messagesRequest struct {
	Model      string    `json:"model"`
	MaxTokens  int       `json:"max_tokens"`
	Messages   []message `json:"messages"`
	Tools      []Tool    `json:"tools,omitempty"`
	ToolChoice any       `json:"tool_choice,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type contentBlock struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *AnthropicClient) call(ctx context.Context, reqBody messagesRequest) (*messagesResponse, error) {
	if c.apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY not set in environment")
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("anthropic request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var out messagesResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode anthropic response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := resp.Status
		if out.Error != nil {
			msg = out.Error.Message
		}
		return nil, fmt.Errorf("anthropic API: %s", msg)
	}
	return &out, nil
}

func (c *AnthropicClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.call(ctx, messagesRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}
	for _, block := range resp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", errors.New("anthropic response had no text content")
}

func (c *AnthropicClient) CompleteWithTool(ctx context.Context, prompt string, tool Tool) (json.RawMessage, error) {
	resp, err := c.call(ctx, messagesRequest{
		Model:      c.model,
		MaxTokens:  maxTokens,
		Messages:   []message{{Role: "user", Content: prompt}},
		Tools:      []Tool{tool},
		ToolChoice: map[string]string{"type": "tool", "name": tool.Name},
	})
	if err != nil {
		return nil, err
	}
	for _, block := range resp.Content {
		if block.Type == "tool_use" {
			return block.Input, nil
		}
	}
	return nil, fmt.Errorf("model did not call tool %s", tool.Name)
}
