package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abelbrown/georisk/internal/model"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Dedup.Threshold != 0.65 {
		t.Errorf("expected threshold 0.65, got %v", cfg.Dedup.Threshold)
	}
	if cfg.Ranking.MaxTotalEvents != 50 {
		t.Errorf("expected max total 50, got %d", cfg.Ranking.MaxTotalEvents)
	}
	if cfg.Ranking.SourceLimits[model.ChannelSearch] <= cfg.Ranking.SourceLimits[model.ChannelCurated] {
		t.Error("search channel should allow more items than curated")
	}
}

func TestWindow(t *testing.T) {
	f := Default().Filter
	if got := f.Window(model.ChannelFeed); got != 48*time.Hour {
		t.Errorf("feed window = %v, want 48h", got)
	}
	if got := f.Window(model.ChannelCurated); got != 168*time.Hour {
		t.Errorf("curated window = %v, want 168h", got)
	}
	if got := f.Window(model.Channel("other")); got != 48*time.Hour {
		t.Errorf("unknown channel window = %v, want default 48h", got)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "georisk.yaml")
	content := `
store:
  driver: sqlite
  dsn: /tmp/georisk.db
fetch:
  timeout: 15s
filter:
  max_age_hours:
    curated: 72
ranking:
  max_total_events: 30
synthesis:
  primary: openai
  secondary: claude
  min_delay: 500ms
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Store.Driver != "sqlite" || cfg.Store.DSN != "/tmp/georisk.db" {
		t.Errorf("store not overridden: %+v", cfg.Store)
	}
	if cfg.Fetch.Timeout != 15*time.Second {
		t.Errorf("timeout = %v, want 15s", cfg.Fetch.Timeout)
	}
	if cfg.Synthesis.MinDelay != 500*time.Millisecond {
		t.Errorf("min delay = %v, want 500ms", cfg.Synthesis.MinDelay)
	}
	if cfg.Filter.Window(model.ChannelCurated) != 72*time.Hour {
		t.Errorf("curated window not overridden")
	}
	// Untouched map keys survive the merge.
	if cfg.Filter.Window(model.ChannelFeed) != 48*time.Hour {
		t.Errorf("feed window lost during merge")
	}
	if cfg.Ranking.MaxTotalEvents != 30 {
		t.Errorf("max total = %d, want 30", cfg.Ranking.MaxTotalEvents)
	}
	// Untouched sections keep their defaults.
	if cfg.Dedup.Threshold != 0.65 {
		t.Errorf("threshold changed: %v", cfg.Dedup.Threshold)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config invalid: %v", err)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "georisk.json")
	if err := os.WriteFile(path, []byte(`{"dedup": {"threshold": 0.7}, "log": {"json": true}}`), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Dedup.Threshold != 0.7 || !cfg.Log.JSON {
		t.Errorf("JSON config not applied: %+v %+v", cfg.Dedup, cfg.Log)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Synthesis.MaxAttempts != 3 {
		t.Errorf("expected default attempts, got %d", cfg.Synthesis.MaxAttempts)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("CLAUDE_API_KEY", "sk-claude")
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("GOOGLE_CSE_KEY", "cse-key")
	t.Setenv("GOOGLE_CSE_ID", "cse-id")
	t.Setenv("GEORISK_STORE", "redis")

	cfg := Default()
	cfg.ApplyEnv()

	if cfg.Providers["claude"].APIKey != "sk-claude" {
		t.Errorf("claude key = %q", cfg.Providers["claude"].APIKey)
	}
	if cfg.Providers["claude"].Model == "" {
		t.Error("applying env must not clear the model")
	}
	if cfg.Providers["openai"].APIKey != "sk-openai" {
		t.Errorf("openai key = %q", cfg.Providers["openai"].APIKey)
	}
	if cfg.Sources.Search.APIKey != "cse-key" || cfg.Sources.Search.EngineID != "cse-id" {
		t.Errorf("search credentials not applied: %+v", cfg.Sources.Search)
	}
	if cfg.Store.Driver != "redis" {
		t.Errorf("store driver = %q", cfg.Store.Driver)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("GEORISK_TEST_DOTENV=from-file\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GEORISK_TEST_DOTENV", "")
	os.Unsetenv("GEORISK_TEST_DOTENV")

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}
	if got := os.Getenv("GEORISK_TEST_DOTENV"); got != "from-file" {
		t.Errorf("expected value from .env, got %q", got)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"threshold zero", func(c *Config) { c.Dedup.Threshold = 0 }, "dedup.threshold"},
		{"threshold above one", func(c *Config) { c.Dedup.Threshold = 1.5 }, "dedup.threshold"},
		{"no total", func(c *Config) { c.Ranking.MaxTotalEvents = 0 }, "max_total_events"},
		{"zero channel quota", func(c *Config) { c.Ranking.SourceLimits[model.ChannelFeed] = 0 }, "source_limits[feed]"},
		{"no keywords", func(c *Config) { c.Filter.Keywords = nil }, "keywords"},
		{"delays inverted", func(c *Config) { c.Synthesis.MinDelay = time.Minute }, "delays"},
		{"same providers", func(c *Config) { c.Synthesis.Secondary = c.Synthesis.Primary }, "must differ"},
		{"no attempts", func(c *Config) { c.Synthesis.MaxAttempts = 0 }, "max_attempts"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}
