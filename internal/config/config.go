package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for jobhunter.
type Config struct {
	Log          LogConfig
	Search       SearchConfig
	Browser      BrowserConfig
	Database     DatabaseConfig
	Resume       ResumeConfig
	AI           AIConfig
	Chat         ChatConfig
	Filters      FilterConfig
	Watch        WatchConfig
	Notification NotificationConfig
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level    string `yaml:"level"`     // debug, info, warn, error
	Format   string `yaml:"format"`    // text or json
	Output   string `yaml:"output"`    // stdout, file or both
	FilePath string `yaml:"file_path"` // required for file and both
}

// SearchConfig selects the scraper backend.
type SearchConfig struct {
	Backend    string // "browser" (chromedp) or "guest" (colly, public endpoint)
	BaseURL    string // https://www.linkedin.com
	MaxJobs    int
	MaxRetries int
	RetryDelay time.Duration
}

// BrowserConfig controls the headless Chrome session.
type BrowserConfig struct {
	Headless      bool
	UserAgent     string
	PageLoadDelay time.Duration
	ScrollCount   int
	ScrollDelay   time.Duration
	Timeout       time.Duration // upper bound for a whole search run
	CookiesFile   string
	ExecPath      string // optional Chrome binary override
}

// DatabaseConfig picks the SQL dialect and connection string.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "mysql"
	DSN    string `yaml:"dsn"`
}

// ResumeConfig controls where tailored resumes are written.
type ResumeConfig struct {
	Path           string `yaml:"path"` // default resume used when chat does not set one
	OutputDir      string `yaml:"output_dir"`
	MaxConcurrency int    `yaml:"max_concurrency"`
}

// AIConfig controls the optional OpenAI resume tailoring.
type AIConfig struct {
	Enabled bool
	BaseURL string        // defaults to https://api.openai.com/v1
	Model   string        // e.g. "gpt-4o-mini"
	APIKey  string        // expanded from env var by Load
	Timeout time.Duration // per-request timeout
}

// ChatConfig controls the chat surfaces.
type ChatConfig struct {
	JobsPerPage int
	ListenAddr  string
	RateLimit   time.Duration // minimum spacing between chat requests on the HTTP surface
	RateBurst   int
	MaxSearches int // crew runs allowed at once on the HTTP surface
}

// FilterConfig holds keyword and location filter settings applied to search results.
type FilterConfig struct {
	TitleKeywords        []string `yaml:"title_keywords"`
	TitleExcludeKeywords []string `yaml:"title_exclude_keywords"`
	Locations            []string `yaml:"locations"`
	ExcludeLocations     []string `yaml:"exclude_locations"`
}

// WatchConfig lists saved searches polled by `jobhunter watch`.
type WatchConfig struct {
	Interval  time.Duration
	MinDelay  time.Duration // minimum gap between two searches against the same backend
	Retention time.Duration // seen-job entries older than this are cleaned up
	MaxAge    time.Duration // skip jobs posted longer ago than this; zero disables
	Searches  []string
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

const (
	defaultBaseURL       = "https://www.linkedin.com"
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultUserAgent     = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	Log          LogConfig          `yaml:"log"`
	Search       rawSearchConfig    `yaml:"search"`
	Browser      rawBrowserConfig   `yaml:"browser"`
	Database     DatabaseConfig     `yaml:"database"`
	Resume       ResumeConfig       `yaml:"resume"`
	AI           rawAIConfig        `yaml:"ai"`
	Chat         rawChatConfig      `yaml:"chat"`
	Filters      FilterConfig       `yaml:"filters"`
	Watch        rawWatchConfig     `yaml:"watch"`
	Notification NotificationConfig `yaml:"notification"`
}

type rawSearchConfig struct {
	Backend    string `yaml:"backend"`
	BaseURL    string `yaml:"base_url"`
	MaxJobs    int    `yaml:"max_jobs"`
	MaxRetries *int   `yaml:"max_retries"`
	RetryDelay string `yaml:"retry_delay"`
}

type rawBrowserConfig struct {
	Headless      *bool  `yaml:"headless"`
	UserAgent     string `yaml:"user_agent"`
	PageLoadDelay string `yaml:"page_load_delay"`
	ScrollCount   *int   `yaml:"scroll_count"`
	ScrollDelay   string `yaml:"scroll_delay"`
	Timeout       string `yaml:"timeout"`
	CookiesFile   string `yaml:"cookies_file"`
	ExecPath      string `yaml:"exec_path"`
}

type rawAIConfig struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"api_key"`
	Timeout string `yaml:"timeout"`
}

type rawChatConfig struct {
	JobsPerPage int    `yaml:"jobs_per_page"`
	ListenAddr  string `yaml:"listen_addr"`
	RateLimit   string `yaml:"rate_limit"`
	RateBurst   int    `yaml:"rate_burst"`
	MaxSearches int    `yaml:"max_searches"`
}

type rawWatchConfig struct {
	Interval  string   `yaml:"interval"`
	MinDelay  string   `yaml:"min_delay"`
	Retention string   `yaml:"retention"`
	MaxAge    string   `yaml:"max_age"`
	Searches  []string `yaml:"searches"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	cfg, err := fromRaw(rawConfig{})
	if err != nil {
		// fromRaw only fails on unparseable durations, and the zero raw config has none.
		panic(err)
	}
	return cfg
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg, err := fromRaw(raw)
	if err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromRaw(raw rawConfig) (*Config, error) {
	var err error
	dur := func(field, value string, def time.Duration) time.Duration {
		if err != nil || value == "" {
			return def
		}
		d, perr := time.ParseDuration(value)
		if perr != nil {
			err = fmt.Errorf("parse %s %q: %w", field, value, perr)
			return def
		}
		return d
	}

	cfg := &Config{
		Log: LogConfig{
			Level:    orDefault(raw.Log.Level, "info"),
			Format:   orDefault(raw.Log.Format, "text"),
			Output:   orDefault(raw.Log.Output, "stdout"),
			FilePath: raw.Log.FilePath,
		},
		Search: SearchConfig{
			Backend:    orDefault(strings.ToLower(raw.Search.Backend), "browser"),
			BaseURL:    strings.TrimRight(orDefault(raw.Search.BaseURL, defaultBaseURL), "/"),
			MaxJobs:    raw.Search.MaxJobs,
			MaxRetries: 2,
			RetryDelay: dur("search.retry_delay", raw.Search.RetryDelay, 5*time.Second),
		},
		Browser: BrowserConfig{
			Headless:      true,
			UserAgent:     orDefault(raw.Browser.UserAgent, defaultUserAgent),
			PageLoadDelay: dur("browser.page_load_delay", raw.Browser.PageLoadDelay, 3*time.Second),
			ScrollCount:   3,
			ScrollDelay:   dur("browser.scroll_delay", raw.Browser.ScrollDelay, 2*time.Second),
			Timeout:       dur("browser.timeout", raw.Browser.Timeout, 2*time.Minute),
			CookiesFile:   orDefault(raw.Browser.CookiesFile, "linkedin_cookies.json"),
			ExecPath:      raw.Browser.ExecPath,
		},
		Database: DatabaseConfig{
			Driver: orDefault(strings.ToLower(raw.Database.Driver), "sqlite"),
			DSN:    orDefault(raw.Database.DSN, "jobhunter.db"),
		},
		Resume: ResumeConfig{
			Path:           raw.Resume.Path,
			OutputDir:      orDefault(raw.Resume.OutputDir, "resumes"),
			MaxConcurrency: raw.Resume.MaxConcurrency,
		},
		AI: AIConfig{
			Enabled: raw.AI.Enabled,
			BaseURL: orDefault(raw.AI.BaseURL, defaultOpenAIBaseURL),
			Model:   raw.AI.Model,
			APIKey:  raw.AI.APIKey,
			Timeout: dur("ai.timeout", raw.AI.Timeout, 60*time.Second),
		},
		Chat: ChatConfig{
			JobsPerPage: raw.Chat.JobsPerPage,
			ListenAddr:  orDefault(raw.Chat.ListenAddr, ":8080"),
			RateLimit:   dur("chat.rate_limit", raw.Chat.RateLimit, 2*time.Second),
			RateBurst:   raw.Chat.RateBurst,
			MaxSearches: raw.Chat.MaxSearches,
		},
		Filters: raw.Filters,
		Watch: WatchConfig{
			Interval:  dur("watch.interval", raw.Watch.Interval, time.Hour),
			MinDelay:  dur("watch.min_delay", raw.Watch.MinDelay, 30*time.Second),
			Retention: dur("watch.retention", raw.Watch.Retention, 30*24*time.Hour),
			MaxAge:    dur("watch.max_age", raw.Watch.MaxAge, 0),
			Searches:  raw.Watch.Searches,
		},
		Notification: NotificationConfig{
			Type:       orDefault(raw.Notification.Type, "log"),
			WebhookURL: raw.Notification.WebhookURL,
		},
	}
	if err != nil {
		return nil, err
	}

	if cfg.Search.MaxJobs <= 0 {
		cfg.Search.MaxJobs = 10
	}
	if raw.Search.MaxRetries != nil {
		cfg.Search.MaxRetries = *raw.Search.MaxRetries
	}
	if raw.Browser.Headless != nil {
		cfg.Browser.Headless = *raw.Browser.Headless
	}
	if raw.Browser.ScrollCount != nil {
		cfg.Browser.ScrollCount = *raw.Browser.ScrollCount
	}
	if cfg.Resume.MaxConcurrency <= 0 {
		cfg.Resume.MaxConcurrency = 2
	}
	if cfg.Chat.JobsPerPage <= 0 {
		cfg.Chat.JobsPerPage = 10
	}
	if cfg.Chat.MaxSearches <= 0 {
		cfg.Chat.MaxSearches = 1
	}
	if cfg.Chat.RateBurst <= 0 {
		cfg.Chat.RateBurst = 3
	}
	return cfg, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func validate(cfg *Config) error {
	switch cfg.Search.Backend {
	case "browser", "guest":
	default:
		return fmt.Errorf("search.backend must be \"browser\" or \"guest\", got %q", cfg.Search.Backend)
	}
	if cfg.Search.MaxRetries < 0 {
		return fmt.Errorf("search.max_retries must not be negative, got %d", cfg.Search.MaxRetries)
	}
	if cfg.Browser.ScrollCount < 0 {
		return fmt.Errorf("browser.scroll_count must not be negative, got %d", cfg.Browser.ScrollCount)
	}
	if cfg.Browser.Timeout <= 0 {
		return fmt.Errorf("browser.timeout must be positive, got %v", cfg.Browser.Timeout)
	}

	switch cfg.Database.Driver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("database.driver must be \"sqlite\" or \"mysql\", got %q", cfg.Database.Driver)
	}

	switch cfg.Log.Output {
	case "stdout":
	case "file", "both":
		if cfg.Log.FilePath == "" {
			return fmt.Errorf("log.file_path is required when log.output is %q", cfg.Log.Output)
		}
	default:
		return fmt.Errorf("log.output must be stdout, file or both, got %q", cfg.Log.Output)
	}

	if cfg.Watch.Interval <= 0 {
		return fmt.Errorf("watch.interval must be positive, got %v", cfg.Watch.Interval)
	}

	if cfg.Notification.Type == "slack" {
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, "https://hooks.slack.com/") {
			return fmt.Errorf("notification.webhook_url must start with https://hooks.slack.com/")
		}
	}

	if cfg.AI.Enabled {
		if cfg.AI.APIKey == "" {
			return fmt.Errorf("ai.api_key is required when ai.enabled is true")
		}
		if cfg.AI.Model == "" {
			return fmt.Errorf("ai.model is required when ai.enabled is true")
		}
	}

	return nil
}
