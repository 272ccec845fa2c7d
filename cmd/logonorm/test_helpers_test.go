package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"logonorm/internal/catalog"
	"logonorm/internal/config"
	"logonorm/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	logosDir   string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	home := filepath.Join(t.TempDir(), "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)
	t.Setenv("SPORTSGAMEODDS_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")

	opts = append([]testsupport.ConfigOption{
		testsupport.WithSports(config.Sport{Dir: "Basketball", SportID: "BASKETBALL"}),
	}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	cfg.Logging.Level = "error"

	configPath := filepath.Join(testsupport.BaseDir(cfg), "logonorm.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, logosDir: cfg.Paths.LogosDir}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	return runCLIWithInput(t, configPath, "", args...)
}

func runCLIWithInput(t *testing.T, configPath, input string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(input))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected %s to exist: %v", path, err)
	}
}

var (
	testTeams = []catalog.Team{
		{TeamID: "BOSTON_CELTICS_NBA", LeagueID: "NBA", Names: catalog.TeamNames{Short: "BOS", Medium: "Celtics", Long: "Boston Celtics", Location: "Boston"}},
		{TeamID: "LOS_ANGELES_LAKERS_NBA", LeagueID: "NBA", Names: catalog.TeamNames{Short: "LAL", Medium: "Lakers", Long: "Los Angeles Lakers", Location: "Los Angeles"}},
	}
	testLeagues = []catalog.League{
		{LeagueID: "NBA", Name: "National Basketball Association", ShortName: "NBA"},
	}
)

// newCatalogServer serves testTeams and testLeagues for BASKETBALL and an
// empty catalog for every other sport.
func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var data any = []any{}
		if r.URL.Query().Get("sportID") == "BASKETBALL" {
			switch r.URL.Path {
			case "/teams":
				data = testTeams
			case "/leagues":
				data = testLeagues
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
	}))
	t.Cleanup(server.Close)
	return server
}

// newLLMServer answers every chat completion with content.
func newLLMServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]any{"choices": []any{
			map[string]any{"message": map[string]any{"content": content}},
		}}
		_ = json.NewEncoder(w).Encode(payload)
	}))
	t.Cleanup(server.Close)
	return server
}
