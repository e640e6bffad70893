package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFindByIDAndSlug(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "surveys.yaml")
	data := `surveys:
  - id: "123"
    title: How do you feel about your job?
    slug: how-do-you-feel-about-your-job
    audience: tech workers
    subtitle_template: "{n} {audience} answered."
    scale_description: "1 = hate it, 5 = love it"
    scale_labels:
      1: Hate it
      2: Not great
      3: Meh
      4: Pretty good
      5: Love it
    positive_threshold: 4
    negative_threshold: 2
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	cfg := f.FindByID("123")
	if cfg == nil || cfg.Slug != "how-do-you-feel-about-your-job" {
		t.Fatalf("FindByID failed: %+v", cfg)
	}
	if got := f.FindBySlug("how-do-you-feel-about-your-job"); got == nil || got.ID != "123" {
		t.Fatalf("FindBySlug failed: %+v", got)
	}
	if f.FindByID("nope") != nil {
		t.Fatalf("expected nil for unknown id")
	}
	if cfg.ScaleMax() != 5 {
		t.Fatalf("ScaleMax = %d", cfg.ScaleMax())
	}
}

func TestLoadMissingFile(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if len(f.Surveys) != 0 {
		t.Fatalf("expected empty file")
	}
}

func TestSafeEnv(t *testing.T) {
	t.Setenv("POLLPIPE_TEST_KEY", "")
	if got := SafeEnv("POLLPIPE_TEST_KEY", "fallback"); got != "fallback" {
		t.Fatalf("got %q", got)
	}
	t.Setenv("POLLPIPE_TEST_KEY", "set")
	if got := SafeEnv("POLLPIPE_TEST_KEY", "fallback"); got != "set" {
		t.Fatalf("got %q", got)
	}
}
