package main

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amishk599/jobwatch/internal/ai"
	"github.com/amishk599/jobwatch/internal/config"
	"github.com/amishk599/jobwatch/internal/notifier"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"JOBWATCH_CONFIG", config.EnvBotToken, config.EnvChatID, config.EnvOpenRouterKey, config.EnvSlackWebhook} {
		t.Setenv(k, "")
	}
}

const minimalConfig = `
sources:
  - name: board
    url: https://board.example/jobs
    layout: link-list
    enabled: true
filters:
  keywords: [Consultant]
`

func TestLoadConfig_DefaultsWhenNoFile(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := loadConfig("", discardLogger())
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0].Name != "bdjobs" {
		t.Errorf("Sources = %+v, want built-in bdjobs", cfg.Sources)
	}
}

func TestLoadConfig_EnvPath(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "jobwatch.yaml")
	if err := os.WriteFile(path, []byte(minimalConfig), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("JOBWATCH_CONFIG", path)

	cfg, err := loadConfig("", discardLogger())
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Sources[0].Name != "board" {
		t.Errorf("Sources = %+v", cfg.Sources)
	}
}

func TestLoadConfig_ExplicitMissingFails(t *testing.T) {
	clearEnv(t)
	if _, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"), discardLogger()); err == nil {
		t.Fatal("loadConfig: expected error for missing explicit path")
	}
}

func TestSetupNotifier_DegradesWithoutCredentials(t *testing.T) {
	clearEnv(t)
	cfg, err := config.Parse([]byte(minimalConfig))
	if err != nil {
		t.Fatal(err)
	}

	n := setupNotifier(cfg, &http.Client{}, discardLogger())
	if _, ok := n.(*notifier.LogNotifier); !ok {
		t.Errorf("notifier = %T, want *notifier.LogNotifier", n)
	}

	t.Setenv(config.EnvBotToken, "123:abc")
	t.Setenv(config.EnvChatID, "42")
	cfg, err = config.Parse([]byte(minimalConfig))
	if err != nil {
		t.Fatal(err)
	}
	n = setupNotifier(cfg, &http.Client{}, discardLogger())
	if _, ok := n.(*notifier.TelegramNotifier); !ok {
		t.Errorf("notifier = %T, want *notifier.TelegramNotifier", n)
	}
}

func TestSetupSummarizer_DegradesWithoutKey(t *testing.T) {
	clearEnv(t)
	cfg, err := config.Parse([]byte(minimalConfig))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := setupSummarizer(cfg, discardLogger()).(*ai.NopSummarizer); !ok {
		t.Error("summarizer without key should be a no-op")
	}

	t.Setenv(config.EnvOpenRouterKey, "key")
	cfg, err = config.Parse([]byte(minimalConfig))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := setupSummarizer(cfg, discardLogger()).(*ai.LLMSummarizer); !ok {
		t.Error("summarizer with key should be the LLM summarizer")
	}
}

func TestBuildSources_UnknownLayout(t *testing.T) {
	clearEnv(t)
	cfg, err := config.Parse([]byte(strings.Replace(minimalConfig, "link-list", "carousel", 1)))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := buildSources(cfg, discardLogger()); err == nil {
		t.Fatal("buildSources: expected error for unknown layout")
	}
}

func TestRenderSources(t *testing.T) {
	out := renderSources([]config.SourceConfig{
		{Name: "bdjobs", Layout: "card-grid", URL: "https://bdjobs.com", Enabled: true},
		{Name: "board", Layout: "link-list", URL: "https://board.example/jobs"},
	})
	for _, want := range []string{"SOURCE", "bdjobs", "card-grid", "board", "disabled"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}
