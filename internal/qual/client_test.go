package qual

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAnthropicClientComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("x-api-key = %q", got)
		}
		if got := r.Header.Get("anthropic-version"); got == "" {
			t.Error("missing anthropic-version header")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{{"type": "text", "text": "hello"}},
		})
	}))
	defer srv.Close()

	c := &AnthropicClient{apiKey: "test-key", baseURL: srv.URL, model: defaultModel, http: srv.Client()}
	got, err := c.Complete(context.Background(), "say hello")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "hello" {
		t.Errorf("text = %q, want hello", got)
	}
}

func TestAnthropicClientCompleteWithTool(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req messagesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Tools) != 1 || req.Tools[0].Name != "extract_themes" {
			t.Errorf("tools = %+v", req.Tools)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{
				{"type": "tool_use", "name": "extract_themes", "input": map[string]any{"positive_themes": []any{}}},
			},
		})
	}))
	defer srv.Close()

	c := &AnthropicClient{apiKey: "test-key", baseURL: srv.URL, model: defaultModel, http: srv.Client()}
	raw, err := c.CompleteWithTool(context.Background(), "analyze", themeTool)
	if err != nil {
		t.Fatalf("CompleteWithTool: %v", err)
	}
	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		t.Fatalf("unmarshal tool input: %v", err)
	}
	if _, ok := parsed["positive_themes"]; !ok {
		t.Errorf("tool input = %v", parsed)
	}
}

func TestAnthropicClientAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"type": "authentication_error", "message": "invalid x-api-key"},
		})
	}))
	defer srv.Close()

	c := &AnthropicClient{apiKey: "bad", baseURL: srv.URL, model: defaultModel, http: srv.Client()}
	_, err := c.Complete(context.Background(), "hi")
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
}
