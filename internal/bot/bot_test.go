package bot

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/noamseg/pollpipe/internal/config"
	"github.com/noamseg/pollpipe/internal/core"
)

const testSecret = "test-signing-secret"

type stubPipeline struct {
	items    []core.SurveyListItem
	peek     *core.PeekResult
	generate *core.GenerateResult
	err      error

	mu            sync.Mutex
	peekID        string
	generateCalls int
	blockGenerate chan struct{}
}

func (s *stubPipeline) ListSurveys(ctx context.Context) ([]core.SurveyListItem, error) {
	return s.items, s.err
}

func (s *stubPipeline) Peek(ctx context.Context, surveyID string, progress core.ProgressFn) (*core.PeekResult, error) {
	s.mu.Lock()
	s.peekID = surveyID
	s.mu.Unlock()
	return s.peek, s.err
}

func (s *stubPipeline) Generate(ctx context.Context, surveyID string, progress core.ProgressFn) (*core.GenerateResult, error) {
	s.mu.Lock()
	s.generateCalls++
	s.mu.Unlock()
	if s.blockGenerate != nil {
		<-s.blockGenerate
	}
	return s.generate, s.err
}

type stubPusher struct {
	url string
	err error
}

func (s *stubPusher) PushDrafts(ctx context.Context, slug, dashboardHTML, socialHTML string) (string, error) {
	return s.url, s.err
}

type responseRecorder struct {
	mu       sync.Mutex
	payloads []map[string]any
	srv      *httptest.Server
}

func newResponseRecorder() *responseRecorder {
	rec := &responseRecorder{}
	rec.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		rec.mu.Lock()
		rec.payloads = append(rec.payloads, payload)
		rec.mu.Unlock()
	}))
	return rec
}

func (rec *responseRecorder) last() map[string]any {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.payloads) == 0 {
		return nil
	}
	return rec.payloads[len(rec.payloads)-1]
}

func testServer(pipeline PipelineRunner, pusher DraftPusher) *Server {
	return &Server{
		pipeline:       pipeline,
		pusher:         pusher,
		log:            zap.NewNop(),
		signingSecret:  testSecret,
		allowedChannel: "C123",
		http:           &http.Client{Timeout: 5 * time.Second},
		now:            func() time.Time { return time.Unix(1731000000, 0) },
		sync:           true,
		active:         map[string]struct{}{},
	}
}

func signedRequest(t *testing.T, form url.Values) *http.Request {
	t.Helper()
	body := form.Encode()
	timestamp := "1731000000"

	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte("v0:" + timestamp + ":" + body))
	signature := "v0=" + hex.EncodeToString(mac.Sum(nil))

	req := httptest.NewRequest(http.MethodPost, "/slack/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Slack-Request-Timestamp", timestamp)
	req.Header.Set("X-Slack-Signature", signature)
	return req
}

func commandForm(command, text, responseURL string) url.Values {
	return url.Values{
		"command":      {command},
		"text":         {text},
		"channel_id":   {"C123"},
		"response_url": {responseURL},
	}
}

func TestHealth(t *testing.T) {
	s := testServer(&stubPipeline{}, &stubPusher{})
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing security headers")
	}
}

func TestRejectsBadSignature(t *testing.T) {
	s := testServer(&stubPipeline{}, &stubPusher{})
	req := signedRequest(t, commandForm("/surveys", "", "http://unused"))
	req.Header.Set("X-Slack-Signature", "v0=deadbeef")

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestRejectsWrongChannel(t *testing.T) {
	s := testServer(&stubPipeline{}, &stubPusher{})
	form := commandForm("/surveys", "", "http://unused")
	form.Set("channel_id", "C999")

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, signedRequest(t, form))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "can only be used in the polls channel") {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestSurveysCommand(t *testing.T) {
	rec := newResponseRecorder()
	defer rec.srv.Close()

	s := testServer(&stubPipeline{items: []core.SurveyListItem{
		{ID: "s-1", Title: "Job poll", Active: true},
	}}, &stubPusher{})

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, signedRequest(t, commandForm("/surveys", "", rec.srv.URL)))

	if w.Code != http.StatusOK {
		t.Fatalf("ack status = %d", w.Code)
	}
	payload := rec.last()
	if payload == nil {
		t.Fatal("no delayed response posted")
	}
	if payload["response_type"] != "in_channel" {
		t.Errorf("response_type = %v", payload["response_type"])
	}
	raw, _ := json.Marshal(payload["blocks"])
	if !strings.Contains(string(raw), "Job poll") {
		t.Errorf("blocks = %s", raw)
	}
}

func TestPeekCommandRequiresID(t *testing.T) {
	s := testServer(&stubPipeline{}, &stubPusher{})
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, signedRequest(t, commandForm("/peek", "", "http://unused")))

	if !strings.Contains(w.Body.String(), "Usage: `/peek <survey_id>`") {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestPeekCommand(t *testing.T) {
	rec := newResponseRecorder()
	defer rec.srv.Close()

	s := testServer(&stubPipeline{peek: &core.PeekResult{
		Title: "Job poll", Started: 12, Completed: 10, DateRange: "Feb 2026",
	}}, &stubPusher{})

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, signedRequest(t, commandForm("/peek", "s-1", rec.srv.URL)))

	if !strings.Contains(w.Body.String(), "Running peek for `s-1`") {
		t.Errorf("ack = %q", w.Body.String())
	}
	payload := rec.last()
	if payload == nil {
		t.Fatal("no delayed response posted")
	}
	raw, _ := json.Marshal(payload["blocks"])
	if !strings.Contains(string(raw), "Early Peek") {
		t.Errorf("blocks = %s", raw)
	}
}

func TestPeekCommandTrimsID(t *testing.T) {
	rec := newResponseRecorder()
	defer rec.srv.Close()

	pipeline := &stubPipeline{peek: &core.PeekResult{Title: "Job poll"}}
	s := testServer(pipeline, &stubPusher{})

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, signedRequest(t, commandForm("/peek", "  s-1 ", rec.srv.URL)))

	if !strings.Contains(w.Body.String(), "Running peek for `s-1`") {
		t.Errorf("ack = %q", w.Body.String())
	}
	pipeline.mu.Lock()
	peekID := pipeline.peekID
	pipeline.mu.Unlock()
	if peekID != "s-1" {
		t.Errorf("survey id = %q, want %q", peekID, "s-1")
	}
}

func generateResult() *core.GenerateResult {
	return &core.GenerateResult{
		Config:        &config.SurveyConfig{ID: "s-1", Title: "Job poll", Slug: "job-satisfaction"},
		DashboardHTML: "<html>dash</html>",
		SocialHTML:    "<html>social</html>",
	}
}

func TestGenerateCommand(t *testing.T) {
	rec := newResponseRecorder()
	defer rec.srv.Close()

	pipeline := &stubPipeline{generate: generateResult()}
	s := testServer(pipeline, &stubPusher{url: "https://example.com/polls/drafts/job-satisfaction.html"})

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, signedRequest(t, commandForm("/generate", "s-1", rec.srv.URL)))

	if !strings.Contains(w.Body.String(), "Generating dashboard for `s-1`") {
		t.Errorf("ack = %q", w.Body.String())
	}
	payload := rec.last()
	if payload == nil {
		t.Fatal("no delayed response posted")
	}
	raw, _ := json.Marshal(payload["blocks"])
	if !strings.Contains(string(raw), "Dashboard Ready: Job poll") {
		t.Errorf("blocks = %s", raw)
	}
	if !strings.Contains(string(raw), "job-satisfaction-social.html") {
		t.Errorf("blocks missing social link: %s", raw)
	}

	// Key released after completion, so a rerun is allowed.
	s.Handler().ServeHTTP(httptest.NewRecorder(), signedRequest(t, commandForm("/generate", "s-1", rec.srv.URL)))
	pipeline.mu.Lock()
	calls := pipeline.generateCalls
	pipeline.mu.Unlock()
	if calls != 2 {
		t.Errorf("generate calls = %d, want 2", calls)
	}
}

func TestGenerateDuplicateSuppressed(t *testing.T) {
	rec := newResponseRecorder()
	defer rec.srv.Close()

	pipeline := &stubPipeline{generate: generateResult(), blockGenerate: make(chan struct{})}
	s := testServer(pipeline, &stubPusher{url: "https://example.com/x.html"})
	s.sync = false

	first := httptest.NewRecorder()
	s.Handler().ServeHTTP(first, signedRequest(t, commandForm("/generate", "s-1", rec.srv.URL)))

	// Wait until the background run has claimed the key.
	deadline := time.Now().Add(2 * time.Second)
	for {
		pipeline.mu.Lock()
		started := pipeline.generateCalls == 1
		pipeline.mu.Unlock()
		if started {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("background generate never started")
		}
		time.Sleep(5 * time.Millisecond)
	}

	second := httptest.NewRecorder()
	s.Handler().ServeHTTP(second, signedRequest(t, commandForm("/generate", "s-1", rec.srv.URL)))
	if !strings.Contains(second.Body.String(), "already running for `s-1`") {
		t.Errorf("second ack = %q", second.Body.String())
	}

	close(pipeline.blockGenerate)
}

func TestGeneratePushFailure(t *testing.T) {
	rec := newResponseRecorder()
	defer rec.srv.Close()

	pipeline := &stubPipeline{generate: generateResult()}
	s := testServer(pipeline, &stubPusher{err: errors.New("github down")})

	s.Handler().ServeHTTP(httptest.NewRecorder(), signedRequest(t, commandForm("/generate", "s-1", rec.srv.URL)))

	payload := rec.last()
	if payload == nil {
		t.Fatal("no delayed response posted")
	}
	text, _ := payload["text"].(string)
	if payload["response_type"] != "ephemeral" || !strings.Contains(text, "Generate failed") {
		t.Errorf("payload = %v", payload)
	}

	// Failure must release the key for a retry.
	if err := s.claimGenerate("s-1"); err != nil {
		t.Errorf("key not released after failure: %v", err)
	}
}

func TestClaimGenerateConflict(t *testing.T) {
	s := testServer(&stubPipeline{}, &stubPusher{})
	if err := s.claimGenerate("s-1"); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	err := s.claimGenerate("s-1")
	if err == nil {
		t.Fatal("expected conflict on second claim")
	}
	if pe, ok := core.AsPipelineError(err); !ok || pe.Code != core.ErrorConflict {
		t.Errorf("error = %v, want conflict", err)
	}
	s.releaseGenerate("s-1")
	if err := s.claimGenerate("s-1"); err != nil {
		t.Errorf("claim after release: %v", err)
	}
}

func TestUnknownCommand(t *testing.T) {
	s := testServer(&stubPipeline{}, &stubPusher{})
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, signedRequest(t, commandForm("/bogus", "", "http://unused")))
	if !strings.Contains(w.Body.String(), "Unknown command") {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestSurveysPipelineError(t *testing.T) {
	rec := newResponseRecorder()
	defer rec.srv.Close()

	s := testServer(&stubPipeline{err: errors.New("polly down")}, &stubPusher{})
	s.Handler().ServeHTTP(httptest.NewRecorder(), signedRequest(t, commandForm("/surveys", "", rec.srv.URL)))

	payload := rec.last()
	if payload == nil {
		t.Fatal("no delayed response posted")
	}
	if payload["response_type"] != "ephemeral" {
		t.Errorf("payload = %v", payload)
	}
}
