package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"logonorm/internal/logging"
	"logonorm/internal/overrides"
	"logonorm/internal/review"
	"logonorm/internal/testsupport"
	"logonorm/internal/workspace"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env.configPath, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.logosDir)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	requireExists(t, target)

	if _, _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected config init to refuse overwriting")
	}
	if _, _, err := runCLI(t, "", "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestRunRenamesExactMatchesAndUndo(t *testing.T) {
	server := newCatalogServer(t)
	env := setupCLITestEnv(t, testsupport.WithCatalogURL(server.URL))
	bball := filepath.Join(env.logosDir, "Basketball")
	testsupport.Tree(t, bball, "nba.gif", "celtics logo.png", "mystery.png")

	out, _, err := runCLI(t, env.configPath, "run", "--no-ai")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "renamed 2")
	requireContains(t, out, "queued 1")
	requireContains(t, out, "logonorm review")
	requireExists(t, filepath.Join(bball, "National Basketball Association.gif"))
	requireExists(t, filepath.Join(bball, "Boston Celtics.png"))

	out, _, err = runCLI(t, env.configPath, "report", "--files")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	requireContains(t, out, "Basketball")
	requireContains(t, out, "mystery.png")

	out, _, err = runCLI(t, env.configPath, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "completed")

	out, _, err = runCLI(t, env.configPath, "undo")
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	requireContains(t, out, "reverted 2")
	requireExists(t, filepath.Join(bball, "nba.gif"))
	requireExists(t, filepath.Join(bball, "celtics logo.png"))

	out, _, err = runCLI(t, env.configPath, "undo")
	if err != nil {
		t.Fatalf("second undo: %v", err)
	}
	requireContains(t, out, "Nothing to undo")
}

func TestRunAcceptsConfidentAIMatches(t *testing.T) {
	catalogServer := newCatalogServer(t)
	llmServer := newLLMServer(t, `{"matches":[
		{"filename":"lakers-old.png","official_name":"Los Angeles Lakers","confidence":0.95,"reasoning":"nickname"},
		{"filename":"purple.png","official_name":"Los Angeles Lakers","confidence":0.4,"reasoning":"color only"}
	]}`)
	env := setupCLITestEnv(t,
		testsupport.WithCatalogURL(catalogServer.URL),
		testsupport.WithLLMURL(llmServer.URL),
	)
	bball := filepath.Join(env.logosDir, "Basketball")
	testsupport.Tree(t, bball, "lakers-old.png", "purple.png")

	out, _, err := runCLI(t, env.configPath, "run")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "renamed 1")
	requireContains(t, out, "queued 1")
	requireExists(t, filepath.Join(bball, "Los Angeles Lakers.png"))

	items, err := review.NewStore(workspace.New(env.cfg.Paths.StateDir).ReviewReportPath()).Load()
	if err != nil {
		t.Fatalf("load review report: %v", err)
	}
	if len(items) != 1 || items[0].Suggestion() != "Los Angeles Lakers" || items[0].Confidence != 0.4 {
		t.Fatalf("unexpected review items %+v", items)
	}
}

func TestRunPushesNotification(t *testing.T) {
	catalogServer := newCatalogServer(t)
	bodies := make(chan string, 4)
	ntfy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		bodies <- string(body)
	}))
	defer ntfy.Close()

	env := setupCLITestEnv(t, testsupport.WithCatalogURL(catalogServer.URL))
	out, _, err := runCLI(t, env.configPath, "test-notify")
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "Notifications are disabled")

	env.cfg.Notifications.NtfyTopic = ntfy.URL
	writeTestConfig(t, env.configPath, env.cfg)
	testsupport.Tree(t, filepath.Join(env.logosDir, "Basketball"), "nba.gif")

	if _, _, err := runCLI(t, env.configPath, "run", "--no-ai"); err != nil {
		t.Fatalf("run: %v", err)
	}
	select {
	case body := <-bodies:
		requireContains(t, body, "Run complete: 1 renamed")
	default:
		t.Fatal("expected a run notification")
	}
}

func TestRunRequiresCatalogKey(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithoutKeys())
	_, _, err := runCLI(t, env.configPath, "run", "--no-ai")
	if err == nil || !strings.Contains(err.Error(), "catalog.api_key") {
		t.Fatalf("expected missing catalog key error, got %v", err)
	}
}

func TestReviewSavesDecisions(t *testing.T) {
	env := setupCLITestEnv(t)
	ws := workspace.New(env.cfg.Paths.StateDir)
	bball := filepath.Join(env.logosDir, "Basketball")
	files := testsupport.Tree(t, bball, "blurry.png", "old-mark.png", "later.png")
	items := []review.Item{
		{Sport: "Basketball", File: files[0], Reason: "no ai result"},
		{Sport: "Basketball", File: files[1], Reason: "low confidence"},
		{Sport: "Basketball", File: files[2], Reason: "low confidence"},
	}
	if err := review.NewStore(ws.ReviewReportPath()).Save(items); err != nil {
		t.Fatalf("save review report: %v", err)
	}

	out, _, err := runCLIWithInput(t, env.configPath, "1\n2\nBoston Celtics\n", "review")
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	requireContains(t, out, "Ignored 1, renamed 1")
	requireContains(t, out, "remaining 1")

	set := overrides.NewStore(ws.CustomMappingsPath(), ws.IgnoreListPath(), logging.NewNop()).Load()
	if !set.IsIgnored(files[0]) {
		t.Fatalf("expected %s to be ignored", files[0])
	}
	if name, ok := set.CustomName(files[1]); !ok || name != "Boston Celtics" {
		t.Fatalf("unexpected custom name %q (%v)", name, ok)
	}

	out, _, err = runCLIWithInput(t, env.configPath, "", "review")
	if err != nil {
		t.Fatalf("second review: %v", err)
	}
	requireContains(t, out, "remaining 1")
}

func TestReportAndHistoryWhenEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env.configPath, "report")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	requireContains(t, out, "Review queue is empty")

	out, _, err = runCLI(t, env.configPath, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No runs recorded")

	out, _, err = runCLI(t, env.configPath, "undo")
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	requireContains(t, out, "Nothing to undo")
}

func TestLookupSearchesCatalog(t *testing.T) {
	server := newCatalogServer(t)
	env := setupCLITestEnv(t, testsupport.WithCatalogURL(server.URL))

	out, _, err := runCLI(t, env.configPath, "lookup", "basketball", "celtics")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	requireContains(t, out, "Boston Celtics")
	if strings.Contains(out, "Los Angeles Lakers") {
		t.Fatalf("unexpected hit in %q", out)
	}

	out, _, err = runCLI(t, env.configPath, "lookup", "HOCKEY", "bruins")
	if err != nil {
		t.Fatalf("lookup hockey: %v", err)
	}
	requireContains(t, out, "No HOCKEY entities match")
}

func TestCheckReportsMissingKeys(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithoutKeys())

	out, _, err := runCLI(t, env.configPath, "check")
	if err == nil {
		t.Fatal("expected check to fail without keys")
	}
	requireContains(t, out, "API key missing")
	requireContains(t, out, "Logos directory")
}

func TestResolveSportID(t *testing.T) {
	env := setupCLITestEnv(t)
	if got := resolveSportID(env.cfg.Sports, "BasketBall"); got != "BASKETBALL" {
		t.Fatalf("directory lookup = %q", got)
	}
	if got := resolveSportID(env.cfg.Sports, "mma"); got != "MMA" {
		t.Fatalf("id fallback = %q", got)
	}
}

func TestShouldColorizeIgnoresBuffers(t *testing.T) {
	if shouldColorize(&strings.Builder{}) {
		t.Fatal("buffers must never be colorized")
	}
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if shouldColorize(f) {
		t.Fatal("regular files are not terminals")
	}
}
