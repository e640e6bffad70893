// Package slack holds the webhook sender, Block Kit formatters, and
// request signature verification for the bot.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noamseg/pollpipe/internal/config"
)

// Block is one Block Kit block. The API surface is JSON-shaped, so maps
// beat a typed mirror of the whole Block Kit schema.
type Block = map[string]any

var mentionRe = regexp.MustCompile(`(?i)@(channel|here|everyone)`)

// SanitizeMrkdwn makes user-generated text safe to embed in mrkdwn:
// escapes Slack's control characters and de-fangs mass mentions.
func SanitizeMrkdwn(text string) string {
	text = strings.ReplaceAll(text, "&", "&amp;")
	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")
	return mentionRe.ReplaceAllString(text, "@ $1")
}

// Notifier posts Block Kit messages to an incoming webhook.
type Notifier struct {
	webhookURL string
	http       *http.Client
	log        *zap.Logger
}

// NewNotifier builds a notifier from the environment. An unset
// SLACK_WEBHOOK_URL disables sending rather than failing.
func NewNotifier(log *zap.Logger) *Notifier {
	return &Notifier{
		webhookURL: config.SafeEnv("SLACK_WEBHOOK_URL", ""),
		http:       &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

// SendBlocks posts a Block Kit message with plain-text fallback. Errors are
// logged, not returned: a failed notification never fails the pipeline.
func (n *Notifier) SendBlocks(ctx context.Context, blocks []Block, fallbackText string) {
	if n.webhookURL == "" {
		n.log.Info("SLACK_WEBHOOK_URL not set, skipping Slack notification")
		return
	}

	payload, err := json.Marshal(map[string]any{"blocks": blocks, "text": fallbackText})
	if err != nil {
		n.log.Error("marshal Slack payload", zap.Error(err))
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(payload))
	if err != nil {
		n.log.Error("build Slack request", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		n.log.Error("send Slack message", zap.Error(err))
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		n.log.Error("Slack webhook rejected message", zap.String("status", resp.Status))
		return
	}
	n.log.Info("Slack message sent")
}

func headerBlock(text string) Block {
	return Block{
		"type": "header",
		"text": map[string]any{"type": "plain_text", "text": text, "emoji": true},
	}
}

func sectionBlock(mrkdwn string) Block {
	return Block{
		"type": "section",
		"text": map[string]any{"type": "mrkdwn", "text": mrkdwn},
	}
}

func dividerBlock() Block {
	return Block{"type": "divider"}
}

func contextBlock(mrkdwn string) Block {
	return Block{
		"type": "context",
		"elements": []map[string]any{
			{"type": "mrkdwn", "text": mrkdwn},
		},
	}
}

// Fallback returns the plain-text summary for a block list, for clients
// that cannot render blocks.
func Fallback(blocks []Block) string {
	for _, b := range blocks {
		if b["type"] != "header" {
			continue
		}
		if text, ok := b["text"].(map[string]any); ok {
			if s, ok := text["text"].(string); ok {
				return s
			}
		}
	}
	return "Update from the polls pipeline"
}
