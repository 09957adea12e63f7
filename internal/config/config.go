package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that supply credentials when the file leaves them empty.
const (
	EnvBotToken      = "BOT_TOKEN"
	EnvChatID        = "CHAT_ID"
	EnvOpenRouterKey = "OPENROUTER_API_KEY"
	EnvSlackWebhook  = "SLACK_WEBHOOK_URL"
)

// Config is the root configuration, built once at startup and passed down read-only.
type Config struct {
	History         HistoryConfig
	Fetch           FetchConfig
	PolitenessDelay time.Duration // pause between detail fetches to the same source
	Filters         FilterConfig
	Sources         []SourceConfig
	Notification    NotificationConfig
	AI              AIConfig
}

// HistoryConfig selects where seen posting IDs are kept.
type HistoryConfig struct {
	Backend string // "file" or "sqlite"
	Path    string
}

// FetchConfig controls page fetching.
type FetchConfig struct {
	UserAgent     string
	Timeout       time.Duration // listing pages
	DetailTimeout time.Duration // detail pages
	Concurrency   int           // listing pages fetched in parallel
}

// FilterConfig holds keyword filter settings.
type FilterConfig struct {
	Keywords        []string
	ExcludeKeywords []string
}

// SourceConfig describes a single listing page to scan.
type SourceConfig struct {
	Name          string `yaml:"name"`
	URL           string `yaml:"url"`
	BaseURL       string `yaml:"base_url"` // defaults to URL
	Layout        string `yaml:"layout"`   // "card-grid" or "link-list"
	CardSelector  string `yaml:"card_selector"`
	CardPattern   string `yaml:"card_pattern"`
	TitleSelector string `yaml:"title_selector"`
	LinkSelector  string `yaml:"link_selector"`
	Enabled       bool   `yaml:"enabled"`
}

// Base returns the parsed base URL used to resolve relative links.
func (s SourceConfig) Base() (*url.URL, error) {
	raw := s.BaseURL
	if raw == "" {
		raw = s.URL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("source %s: base url: %w", s.Name, err)
	}
	return u, nil
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string        // "telegram", "slack" or "log"
	BotToken   string        // telegram
	ChatID     string        // telegram
	APIBaseURL string        // telegram, defaults to https://api.telegram.org
	WebhookURL string        // slack
	Timeout    time.Duration // per message
}

// AIConfig controls the optional summarization layer.
type AIConfig struct {
	Enabled       bool
	BaseURL       string
	Model         string
	APIKey        string
	Timeout       time.Duration
	MaxInputChars int
}

const (
	defaultHistoryPath   = "history.txt"
	defaultOpenRouterURL = "https://openrouter.ai/api/v1"
	defaultModel         = "google/gemini-2.0-flash-lite-preview-02-05:free"
)

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as strings).
type rawConfig struct {
	History         rawHistoryConfig      `yaml:"history"`
	Fetch           rawFetchConfig        `yaml:"fetch"`
	PolitenessDelay string                `yaml:"politeness_delay"`
	Filters         rawFilterConfig       `yaml:"filters"`
	Sources         []SourceConfig        `yaml:"sources"`
	Notification    rawNotificationConfig `yaml:"notification"`
	AI              rawAIConfig           `yaml:"ai"`
}

type rawHistoryConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

type rawFetchConfig struct {
	UserAgent     string `yaml:"user_agent"`
	Timeout       string `yaml:"timeout"`
	DetailTimeout string `yaml:"detail_timeout"`
	Concurrency   int    `yaml:"concurrency"`
}

type rawFilterConfig struct {
	Keywords        []string `yaml:"keywords"`
	ExcludeKeywords []string `yaml:"exclude_keywords"`
}

type rawNotificationConfig struct {
	Type       string `yaml:"type"`
	BotToken   string `yaml:"bot_token"`
	ChatID     string `yaml:"chat_id"`
	APIBaseURL string `yaml:"api_base_url"`
	WebhookURL string `yaml:"webhook_url"`
	Timeout    string `yaml:"timeout"`
}

type rawAIConfig struct {
	Enabled       *bool  `yaml:"enabled"`
	BaseURL       string `yaml:"base_url"`
	Model         string `yaml:"model"`
	APIKey        string `yaml:"api_key"`
	Timeout       string `yaml:"timeout"`
	MaxInputChars int    `yaml:"max_input_chars"`
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse builds a Config from YAML bytes. Environment variables are expanded first.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return build(raw)
}

// Default returns the built-in configuration: the bdjobs listing with the
// consultant/environment keyword set, credentials from the environment.
func Default() (*Config, error) {
	return build(rawConfig{
		Sources: []SourceConfig{{
			Name:    "bdjobs",
			URL:     "https://bdjobs.com",
			BaseURL: "https://jobs.bdjobs.com/",
			Layout:  "card-grid",
			Enabled: true,
		}},
		Filters: rawFilterConfig{Keywords: DefaultKeywords},
	})
}

// DefaultKeywords is the keyword set used when no config file is present.
var DefaultKeywords = []string{
	"Individual Consultant", "SIC", "Consultant", "National Consultant",
	"Individual Local Consultant", "Local Consultant", "Environment",
	"Environmental", "Natural", "Disaster", "Water", "Expert", "Program",
	"Project", "Coordinator", "Manager", "Climate", "Monitoring", "Evaluation",
	"Specialist",
}

func build(raw rawConfig) (*Config, error) {
	var err error

	politeness := 3 * time.Second
	if raw.PolitenessDelay != "" {
		if politeness, err = time.ParseDuration(raw.PolitenessDelay); err != nil {
			return nil, fmt.Errorf("parse politeness_delay %q: %w", raw.PolitenessDelay, err)
		}
	}

	fetchTimeout, err := durationOr(raw.Fetch.Timeout, 20*time.Second, "fetch.timeout")
	if err != nil {
		return nil, err
	}
	detailTimeout, err := durationOr(raw.Fetch.DetailTimeout, 10*time.Second, "fetch.detail_timeout")
	if err != nil {
		return nil, err
	}
	notifyTimeout, err := durationOr(raw.Notification.Timeout, 10*time.Second, "notification.timeout")
	if err != nil {
		return nil, err
	}
	aiTimeout, err := durationOr(raw.AI.Timeout, 30*time.Second, "ai.timeout")
	if err != nil {
		return nil, err
	}

	concurrency := raw.Fetch.Concurrency
	if concurrency <= 0 {
		concurrency = 2
	}

	backend := strings.ToLower(raw.History.Backend)
	if backend == "" {
		backend = "file"
	}
	historyPath := raw.History.Path
	if historyPath == "" {
		historyPath = defaultHistoryPath
		if backend == "sqlite" {
			historyPath = "history.db"
		}
	}

	sources := make([]SourceConfig, len(raw.Sources))
	for i, s := range raw.Sources {
		if s.Layout == "" {
			s.Layout = "card-grid"
		}
		sources[i] = s
	}

	notif := NotificationConfig{
		Type:       strings.ToLower(raw.Notification.Type),
		BotToken:   envOr(raw.Notification.BotToken, EnvBotToken),
		ChatID:     envOr(raw.Notification.ChatID, EnvChatID),
		APIBaseURL: raw.Notification.APIBaseURL,
		WebhookURL: envOr(raw.Notification.WebhookURL, EnvSlackWebhook),
		Timeout:    notifyTimeout,
	}
	if notif.Type == "" {
		notif.Type = "telegram"
	}

	aiEnabled := true
	if raw.AI.Enabled != nil {
		aiEnabled = *raw.AI.Enabled
	}
	aiBaseURL := raw.AI.BaseURL
	if aiBaseURL == "" {
		aiBaseURL = defaultOpenRouterURL
	}
	aiModel := raw.AI.Model
	if aiModel == "" {
		aiModel = defaultModel
	}

	cfg := &Config{
		History: HistoryConfig{Backend: backend, Path: historyPath},
		Fetch: FetchConfig{
			UserAgent:     raw.Fetch.UserAgent,
			Timeout:       fetchTimeout,
			DetailTimeout: detailTimeout,
			Concurrency:   concurrency,
		},
		PolitenessDelay: politeness,
		Filters: FilterConfig{
			Keywords:        raw.Filters.Keywords,
			ExcludeKeywords: raw.Filters.ExcludeKeywords,
		},
		Sources:      sources,
		Notification: notif,
		AI: AIConfig{
			Enabled:       aiEnabled,
			BaseURL:       strings.TrimRight(aiBaseURL, "/"),
			Model:         aiModel,
			APIKey:        envOr(raw.AI.APIKey, EnvOpenRouterKey),
			Timeout:       aiTimeout,
			MaxInputChars: raw.AI.MaxInputChars,
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// EnabledSources returns the sources with enabled set, in configured order.
func (c *Config) EnabledSources() []SourceConfig {
	var out []SourceConfig
	for _, s := range c.Sources {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

// TelegramReady reports whether both telegram credentials are present.
func (n NotificationConfig) TelegramReady() bool {
	return n.BotToken != "" && n.ChatID != ""
}

// SummarizerReady reports whether enrichment is enabled and has a credential.
func (a AIConfig) SummarizerReady() bool {
	return a.Enabled && a.APIKey != ""
}

func durationOr(raw string, def time.Duration, key string) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", key, raw, err)
	}
	return d, nil
}

func envOr(v, env string) string {
	if v != "" {
		return v
	}
	return os.Getenv(env)
}

// validate rejects configurations that cannot run. Missing credentials are not
// errors: the notifier and summarizer degrade instead.
func validate(cfg *Config) error {
	if cfg.PolitenessDelay < 0 {
		return fmt.Errorf("politeness_delay must not be negative, got %v", cfg.PolitenessDelay)
	}
	if cfg.Fetch.Timeout <= 0 || cfg.Fetch.DetailTimeout <= 0 {
		return fmt.Errorf("fetch timeouts must be positive")
	}

	switch cfg.History.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("history.backend must be \"file\" or \"sqlite\", got %q", cfg.History.Backend)
	}

	switch cfg.Notification.Type {
	case "telegram", "slack", "log":
	default:
		return fmt.Errorf("notification.type must be telegram, slack or log, got %q", cfg.Notification.Type)
	}
	if cfg.Notification.Type == "slack" && cfg.Notification.WebhookURL != "" &&
		!strings.HasPrefix(cfg.Notification.WebhookURL, "https://hooks.slack.com/") {
		return fmt.Errorf("notification.webhook_url must start with https://hooks.slack.com/")
	}

	enabled := 0
	names := make(map[string]bool)
	for i, s := range cfg.Sources {
		if s.Name == "" {
			return fmt.Errorf("sources[%d]: name is required", i)
		}
		if names[s.Name] {
			return fmt.Errorf("sources[%d]: duplicate name %q", i, s.Name)
		}
		names[s.Name] = true
		if !s.Enabled {
			continue
		}
		enabled++
		u, err := url.Parse(s.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("source %s: url must be an absolute http(s) URL, got %q", s.Name, s.URL)
		}
		if base, err := s.Base(); err != nil || !base.IsAbs() {
			return fmt.Errorf("source %s: base_url must be absolute, got %q", s.Name, s.BaseURL)
		}
	}
	if enabled == 0 {
		return fmt.Errorf("at least one source must be enabled")
	}

	return nil
}
