package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"logonorm/internal/config"
)

func TestLoadDefaultConfigUsesEnvKeysAndExpandsPaths(t *testing.T) {
	t.Setenv("SPORTSGAMEODDS_API_KEY", "sgo-key")
	t.Setenv("OPENROUTER_API_KEY", "or-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if cfg.Paths.LogosDir != filepath.Join(tempHome, "Logos") {
		t.Fatalf("unexpected logos dir: %q", cfg.Paths.LogosDir)
	}
	if cfg.Paths.StateDir != filepath.Join(tempHome, ".local", "share", "logonorm") {
		t.Fatalf("unexpected state dir: %q", cfg.Paths.StateDir)
	}
	if cfg.Catalog.APIKey != "sgo-key" {
		t.Fatalf("expected catalog key from env, got %q", cfg.Catalog.APIKey)
	}
	if cfg.LLM.APIKey != "or-key" {
		t.Fatalf("expected llm key from env, got %q", cfg.LLM.APIKey)
	}
	if cfg.Matching.BatchSize != 20 {
		t.Fatalf("unexpected batch size: %d", cfg.Matching.BatchSize)
	}
	if cfg.Matching.ConfidenceThreshold != 0.90 {
		t.Fatalf("unexpected threshold: %v", cfg.Matching.ConfidenceThreshold)
	}
	if len(cfg.Sports) != len(config.DefaultSports()) {
		t.Fatalf("expected default sports, got %d", len(cfg.Sports))
	}
	if cfg.Sports[0].Dir != "Baseball" || cfg.Sports[len(cfg.Sports)-1].SportID != "FOOTBALL" {
		t.Fatalf("unexpected sport ordering: %+v", cfg.Sports)
	}
}

func TestLoadCustomConfigReplacesSports(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("SPORTSGAMEODDS_API_KEY", "")

	payload := map[string]any{
		"paths": map[string]any{
			"logos_dir": "~/art",
		},
		"catalog": map[string]any{
			"api_key":  "  from-file  ",
			"base_url": "https://example.test/v2/",
		},
		"matching": map[string]any{
			"batch_size":           5,
			"confidence_threshold": 0.75,
		},
		"sports": []map[string]any{
			{"dir": "Hockey", "sport_id": "hockey"},
		},
	}
	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(tempHome, "custom.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected explicit path to resolve, got %q exists=%v", resolved, exists)
	}
	if cfg.Paths.LogosDir != filepath.Join(tempHome, "art") {
		t.Fatalf("unexpected logos dir: %q", cfg.Paths.LogosDir)
	}
	if cfg.Catalog.APIKey != "from-file" {
		t.Fatalf("expected trimmed key, got %q", cfg.Catalog.APIKey)
	}
	if cfg.Catalog.BaseURL != "https://example.test/v2" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Catalog.BaseURL)
	}
	if len(cfg.Sports) != 1 || cfg.Sports[0].SportID != "HOCKEY" {
		t.Fatalf("expected single upper-cased sport, got %+v", cfg.Sports)
	}
	run := cfg.RunConfig()
	if run.BatchSize != 5 || run.ConfidenceThreshold != 0.75 {
		t.Fatalf("unexpected run config: %+v", run)
	}
	if run.CatalogEndpoint != cfg.Catalog.BaseURL || run.MatchingEndpoint != cfg.LLM.BaseURL {
		t.Fatalf("unexpected endpoints: %+v", run)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"threshold", func(c *config.Config) { c.Matching.ConfidenceThreshold = 1.5 }, "confidence_threshold"},
		{"batch", func(c *config.Config) { c.Matching.BatchSize = 0 }, "batch_size"},
		{"entities", func(c *config.Config) { c.Matching.MaxEntities = -1 }, "max_entities"},
		{"no sports", func(c *config.Config) { c.Sports = nil }, "sports"},
		{"duplicate sport", func(c *config.Config) {
			c.Sports = []config.Sport{{Dir: "A", SportID: "X"}, {Dir: "A", SportID: "Y"}}
		}, "more than once"},
		{"format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestRequireKeys(t *testing.T) {
	cfg := config.Default()
	if err := cfg.RequireCatalogKey(); err == nil || !strings.Contains(err.Error(), "SPORTSGAMEODDS_API_KEY") {
		t.Fatalf("expected catalog key error, got %v", err)
	}
	if err := cfg.RequireLLMKey(); err == nil || !strings.Contains(err.Error(), "OPENROUTER_API_KEY") {
		t.Fatalf("expected llm key error, got %v", err)
	}
	cfg.Catalog.APIKey = "x"
	cfg.LLM.APIKey = "y"
	if cfg.RequireCatalogKey() != nil || cfg.RequireLLMKey() != nil {
		t.Fatal("expected keys to satisfy requirement")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	path := filepath.Join(tempHome, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if len(cfg.Sports) != 9 {
		t.Fatalf("expected 9 sample sports, got %d", len(cfg.Sports))
	}
}
