package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/amishk599/jobwatch/internal/adapter"
	"github.com/amishk599/jobwatch/internal/ai"
	"github.com/amishk599/jobwatch/internal/config"
	"github.com/amishk599/jobwatch/internal/fetch"
	"github.com/amishk599/jobwatch/internal/filter"
	"github.com/amishk599/jobwatch/internal/model"
	"github.com/amishk599/jobwatch/internal/notifier"
	"github.com/amishk599/jobwatch/internal/poller"
	"github.com/amishk599/jobwatch/internal/ratelimit"
	"github.com/amishk599/jobwatch/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobwatch",
	Short: "Watch job boards for new matching postings",
	Long:  "jobwatch scans job listing pages, filters postings by keyword and sends one notification per new posting.",
	// `jobwatch` with no args performs a single scan, so cron can invoke the binary directly.
	RunE: runRun,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env is optional; real environment variables take precedence.
		_ = godotenv.Load()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBWATCH_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBWATCH_CONFIG env var > "./config.yaml".
// A missing ./config.yaml falls back to the built-in defaults.
func loadConfig(path string, logger *slog.Logger) (*config.Config, error) {
	explicit := true
	if path == "" {
		if env := os.Getenv("JOBWATCH_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
			explicit = false
		}
	}

	if !explicit {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			logger.Info("no config file found, using built-in defaults")
			return config.Default()
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

// setupNotifier picks the configured transport. Missing credentials fall back
// to the log notifier.
func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "telegram":
		if cfg.Notification.TelegramReady() {
			logger.Info("using telegram notifier")
			return notifier.NewTelegramNotifier(cfg.Notification.APIBaseURL, cfg.Notification.BotToken, cfg.Notification.ChatID, httpClient, logger)
		}
		logger.Warn("telegram credentials not set, notifications go to the log",
			"bot_token_env", config.EnvBotToken, "chat_id_env", config.EnvChatID)
	case "slack":
		if cfg.Notification.WebhookURL != "" {
			logger.Info("using slack notifier")
			return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger)
		}
		logger.Warn("slack webhook not set, notifications go to the log", "env", config.EnvSlackWebhook)
	}
	return notifier.NewLogNotifier(logger)
}

// setupSummarizer returns the LLM summarizer, or a no-op when AI is disabled
// or has no API key.
func setupSummarizer(cfg *config.Config, logger *slog.Logger) ai.Summarizer {
	if !cfg.AI.Enabled {
		logger.Info("ai enrichment disabled")
		return ai.NewNopSummarizer()
	}
	if !cfg.AI.SummarizerReady() {
		logger.Warn("ai api key not set, enrichment disabled", "env", config.EnvOpenRouterKey)
		return ai.NewNopSummarizer()
	}

	provider := ai.NewOpenAIProvider(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, &http.Client{Timeout: cfg.AI.Timeout})
	logger.Info("ai enrichment enabled", "model", cfg.AI.Model)
	return ai.NewLLMSummarizer(provider, ai.JobSummaryTemplate, cfg.AI.MaxInputChars, cfg.AI.Timeout)
}

// historyStore is a HistoryStore that holds resources until closed.
type historyStore interface {
	model.HistoryStore
	io.Closer
}

func openStore(cfg *config.Config) (historyStore, error) {
	switch cfg.History.Backend {
	case "sqlite":
		return store.NewSQLiteStore(cfg.History.Path)
	default:
		return store.OpenFileStore(cfg.History.Path)
	}
}

func buildSources(cfg *config.Config, logger *slog.Logger) ([]poller.Source, error) {
	var sources []poller.Source
	for _, s := range cfg.EnabledSources() {
		base, err := s.Base()
		if err != nil {
			return nil, err
		}
		ex, err := adapter.New(s.Layout, adapter.Options{
			Source:        s.Name,
			Base:          base,
			CardSelector:  s.CardSelector,
			CardPattern:   s.CardPattern,
			TitleSelector: s.TitleSelector,
			LinkSelector:  s.LinkSelector,
		})
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", s.Name, err)
		}
		sources = append(sources, poller.Source{Name: s.Name, URL: s.URL, Extractor: ex})
		logger.Debug("registered source", "source", s.Name, "layout", s.Layout, "url", s.URL)
	}
	return sources, nil
}

func buildPoller(cfg *config.Config, hs model.HistoryStore, n model.Notifier, logger *slog.Logger) (*poller.Poller, error) {
	sources, err := buildSources(cfg, logger)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{}
	listingFetcher := fetch.NewHTTPFetcher(httpClient, cfg.Fetch.UserAgent, cfg.Fetch.Timeout)
	detailFetcher := fetch.NewHTTPFetcher(httpClient, cfg.Fetch.UserAgent, cfg.Fetch.DetailTimeout)

	keywordFilter := filter.NewKeywordFilter(cfg.Filters.Keywords, cfg.Filters.ExcludeKeywords)
	if keywordFilter.Empty() {
		logger.Warn("no keywords configured, nothing will match")
	}

	return poller.New(
		sources,
		listingFetcher,
		keywordFilter,
		hs,
		poller.NewEnricher(detailFetcher, setupSummarizer(cfg, logger), logger),
		n,
		ratelimit.NewSourceLimiter(cfg.PolitenessDelay),
		poller.Options{
			NotifyTimeout: cfg.Notification.Timeout,
			Concurrency:   cfg.Fetch.Concurrency,
		},
		logger,
	), nil
}
