// Package bot runs the Slack slash-command server: /surveys, /peek, and
// /generate, acknowledged immediately and answered through the command's
// response_url when the pipeline finishes.
package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noamseg/pollpipe/internal/config"
	"github.com/noamseg/pollpipe/internal/core"
	"github.com/noamseg/pollpipe/internal/slack"
)

const defaultChannel = "C0AFUHDNR24"

// backgroundTimeout bounds one pipeline run kicked off by a command.
const backgroundTimeout = 10 * time.Minute

// PipelineRunner is the pipeline surface the bot needs.
type PipelineRunner interface {
	ListSurveys(ctx context.Context) ([]core.SurveyListItem, error)
	Peek(ctx context.Context, surveyID string, progress core.ProgressFn) (*core.PeekResult, error)
	Generate(ctx context.Context, surveyID string, progress core.ProgressFn) (*core.GenerateResult, error)
}

// DraftPusher pushes rendered drafts and returns the preview URL.
type DraftPusher interface {
	PushDrafts(ctx context.Context, slug, dashboardHTML, socialHTML string) (string, error)
}

// Server handles Slack slash commands over HTTP.
type Server struct {
	pipeline PipelineRunner
	pusher   DraftPusher
	log      *zap.Logger

	signingSecret  string
	allowedChannel string
	http           *http.Client
	now            func() time.Time

	// sync runs command work inline instead of in a goroutine.
	sync bool

	mu     sync.Mutex
	active map[string]struct{}
}

// NewServer builds a server from the environment.
func NewServer(pipeline PipelineRunner, pusher DraftPusher, log *zap.Logger) *Server {
	return &Server{
		pipeline:       pipeline,
		pusher:         pusher,
		log:            log,
		signingSecret:  config.SafeEnv("SLACK_SIGNING_SECRET", ""),
		allowedChannel: config.SafeEnv("SLACK_ALLOWED_CHANNEL", defaultChannel),
		http:           &http.Client{Timeout: 10 * time.Second},
		now:            time.Now,
		active:         map[string]struct{}{},
	}
}

// secureHeaders adds standard security headers.
func secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// Handler returns the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/slack/events", s.handleSlashCommand)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
	})
	return secureHeaders(mux)
}

// Run starts the server on addr and blocks.
func (s *Server) Run(addr string) error {
	s.log.Info("bot server listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, s.Handler())
}

// claimGenerate registers a running generate for surveyID. A second claim
// while one is still running is a conflict.
func (s *Server) claimGenerate(surveyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := "generate:" + surveyID
	if _, running := s.active[key]; running {
		return core.NewConflictError(fmt.Sprintf("Generate is already running for `%s`. Please wait.", surveyID))
	}
	s.active[key] = struct{}{}
	return nil
}

func (s *Server) releaseGenerate(surveyID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, "generate:"+surveyID)
}

func (s *Server) dispatch(fn func()) {
	if s.sync {
		fn()
		return
	}
	go fn()
}

// ack writes the immediate slash-command response. Empty text acknowledges
// silently.
func ack(w http.ResponseWriter, text string) {
	if text == "" {
		w.WriteHeader(http.StatusOK)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"response_type": "ephemeral", "text": text})
}

// respond posts the delayed answer to the command's response_url.
func (s *Server) respond(responseURL string, payload map[string]any) {
	body, err := json.Marshal(payload)
	if err != nil {
		s.log.Error("marshal response payload", zap.Error(err))
		return
	}
	resp, err := s.http.Post(responseURL, "application/json", bytes.NewReader(body))
	if err != nil {
		s.log.Error("post to response_url", zap.Error(err))
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.log.Error("response_url rejected payload", zap.String("status", resp.Status))
	}
}

func (s *Server) respondBlocks(responseURL string, blocks []slack.Block) {
	s.respond(responseURL, map[string]any{
		"response_type": "in_channel",
		"blocks":        blocks,
		"text":          slack.Fallback(blocks),
	})
}

func (s *Server) respondError(responseURL, text string) {
	s.respond(responseURL, map[string]any{"response_type": "ephemeral", "text": text})
}

func (s *Server) handleSlashCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	timestamp := r.Header.Get("X-Slack-Request-Timestamp")
	signature := r.Header.Get("X-Slack-Signature")
	if !slack.VerifySignature(s.signingSecret, timestamp, signature, body, s.now()) {
		s.log.Warn("rejected request with bad signature")
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	form, err := url.ParseQuery(string(body))
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	command := form.Get("command")
	text := strings.TrimSpace(form.Get("text"))
	channelID := form.Get("channel_id")
	responseURL := form.Get("response_url")
	runID := uuid.NewString()

	log := s.log.With(
		zap.String("run_id", runID),
		zap.String("command", command),
		zap.String("channel_id", channelID),
	)
	log.Info("slash command received")

	if channelID != s.allowedChannel {
		ack(w, "This command can only be used in the polls channel.")
		return
	}

	switch command {
	case "/surveys":
		s.handleSurveys(w, responseURL, log)
	case "/peek":
		s.handlePeek(w, text, responseURL, log)
	case "/generate":
		s.handleGenerate(w, text, responseURL, log)
	default:
		ack(w, fmt.Sprintf("Unknown command %s", command))
	}
}

func (s *Server) handleSurveys(w http.ResponseWriter, responseURL string, log *zap.Logger) {
	ack(w, "")
	s.dispatch(func() {
		ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
		defer cancel()

		items, err := s.pipeline.ListSurveys(ctx)
		if err != nil {
			log.Error("/surveys failed", zap.Error(err))
			s.respondError(responseURL, "Failed to fetch surveys. Check the logs.")
			return
		}
		s.respondBlocks(responseURL, slack.FormatSurveysBlocks(items))
	})
}

func (s *Server) handlePeek(w http.ResponseWriter, surveyID, responseURL string, log *zap.Logger) {
	if surveyID == "" {
		ack(w, "Usage: `/peek <survey_id>`")
		return
	}
	ack(w, fmt.Sprintf("Running peek for `%s`... ~30-60 seconds.", surveyID))

	s.dispatch(func() {
		ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
		defer cancel()

		result, err := s.pipeline.Peek(ctx, surveyID, nil)
		if err != nil {
			log.Error("/peek failed", zap.String("survey_id", surveyID), zap.Error(err))
			s.respondError(responseURL, fmt.Sprintf("Peek failed: %v", err))
			return
		}
		blocks := slack.FormatPeekBlocks(result.Title, result.Started, result.Completed,
			result.DateRange, result.Dists, result.Analysis, result.CloseLabel)
		s.respondBlocks(responseURL, blocks)
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, surveyID, responseURL string, log *zap.Logger) {
	if surveyID == "" {
		ack(w, "Usage: `/generate <survey_id>`")
		return
	}

	if err := s.claimGenerate(surveyID); err != nil {
		ack(w, err.Error())
		return
	}
	ack(w, fmt.Sprintf("Generating dashboard for `%s`... ~2-3 minutes.", surveyID))

	s.dispatch(func() {
		defer s.releaseGenerate(surveyID)
		ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
		defer cancel()

		result, err := s.pipeline.Generate(ctx, surveyID, func(msg string) {
			log.Info(msg)
		})
		if err != nil {
			log.Error("/generate failed", zap.String("survey_id", surveyID), zap.Error(err))
			s.respondError(responseURL, fmt.Sprintf("Generate failed: %v", err))
			return
		}

		previewURL, err := s.pusher.PushDrafts(ctx, result.Config.Slug, result.DashboardHTML, result.SocialHTML)
		if err != nil {
			log.Error("push drafts failed", zap.String("survey_id", surveyID), zap.Error(err))
			s.respondError(responseURL, fmt.Sprintf("Generate failed: %v", err))
			return
		}

		blocks := slack.FormatGenerateBlocks(result.Config.Slug, result.Config.Title, previewURL)
		s.respondBlocks(responseURL, blocks)
	})
}
