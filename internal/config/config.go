package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/juggajay/nicheradar/pkg/scoring"
	"github.com/juggajay/nicheradar/pkg/source"
)

// Config is the root configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Sources  SourcesConfig  `yaml:"sources"`
	Scoring  scoring.Config `yaml:"scoring"`
	Extract  ExtractConfig  `yaml:"extract"`
	Alerts   AlertsConfig   `yaml:"alerts"`
	Server   ServerConfig   `yaml:"server"`
}

// DatabaseConfig configures SQLite storage.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ScheduleConfig configures scan and recalculation intervals.
type ScheduleConfig struct {
	ScanInterval        string  `yaml:"scan_interval"`
	RecalculateInterval string  `yaml:"recalculate_interval"`
	AlertMinGap         float64 `yaml:"alert_min_gap"`
}

// ParseScanInterval returns the scan interval as time.Duration.
func (s ScheduleConfig) ParseScanInterval() time.Duration {
	d, err := time.ParseDuration(s.ScanInterval)
	if err != nil {
		return 30 * time.Minute
	}
	return d
}

// ParseRecalculateInterval returns the recalculation interval.
func (s ScheduleConfig) ParseRecalculateInterval() time.Duration {
	d, err := time.ParseDuration(s.RecalculateInterval)
	if err != nil {
		return 6 * time.Hour
	}
	return d
}

// SourcesConfig holds configuration for all data sources.
type SourcesConfig struct {
	Reddit     RedditConfig     `yaml:"reddit"`
	HackerNews HackerNewsConfig `yaml:"hackernews"`
	RSS        RSSConfig        `yaml:"rss"`
	YouTube    YouTubeConfig    `yaml:"youtube"`
}

// RedditConfig for the Reddit collector.
type RedditConfig struct {
	Enabled      bool                     `yaml:"enabled"`
	ClientID     string                   `yaml:"client_id"`
	ClientSecret string                   `yaml:"client_secret"`
	Subreddits   []source.SubredditConfig `yaml:"subreddits"`
}

// HackerNewsConfig for the Hacker News collector.
type HackerNewsConfig struct {
	Enabled  bool `yaml:"enabled"`
	Limit    int  `yaml:"limit"`
	MinScore int  `yaml:"min_score"`
}

// RSSConfig for the RSS feed collector.
type RSSConfig struct {
	Enabled bool             `yaml:"enabled"`
	Feeds   []source.RSSFeed `yaml:"feeds"`
}

// YouTubeConfig for the supply checker.
type YouTubeConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
}

// ExtractConfig configures the topic candidate extractor.
type ExtractConfig struct {
	LLM LLMConfig `yaml:"llm"`
}

// LLMConfig configures the optional LLM extractor.
type LLMConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Provider string `yaml:"provider"` // "openai" or "anthropic"
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"` // custom endpoint (optional)
}

// AlertsConfig configures alert destinations.
type AlertsConfig struct {
	Slack   SlackConfig   `yaml:"slack"`
	Discord DiscordConfig `yaml:"discord"`
	Webhook WebhookConfig `yaml:"webhook"`
}

// SlackConfig for Slack webhook alerts.
type SlackConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// DiscordConfig for Discord webhook alerts.
type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// WebhookConfig for generic webhook alerts.
type WebhookConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Secret  string `yaml:"secret"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "./nicheradar.db"},
		Schedule: ScheduleConfig{
			ScanInterval:        "30m",
			RecalculateInterval: "6h",
			AlertMinGap:         60,
		},
		Sources: SourcesConfig{
			Reddit: RedditConfig{
				Enabled: false,
				Subreddits: []source.SubredditConfig{
					{Name: "programming", MinScore: 100, Category: "dev"},
					{Name: "MachineLearning", MinScore: 50, Category: "ai"},
					{Name: "LocalLLaMA", MinScore: 50, Category: "ai"},
					{Name: "selfhosted", MinScore: 50, Category: "infra"},
					{Name: "webdev", MinScore: 75, Category: "dev"},
				},
			},
			HackerNews: HackerNewsConfig{Enabled: true, Limit: 100, MinScore: 50},
			RSS: RSSConfig{
				Enabled: true,
				Feeds: []source.RSSFeed{
					{Name: "TechCrunch", URL: "https://techcrunch.com/feed/", Category: "tech"},
					{Name: "The Verge", URL: "https://www.theverge.com/rss/index.xml", Category: "tech"},
					{Name: "Ars Technica", URL: "https://feeds.arstechnica.com/arstechnica/technology-lab", Category: "tech"},
				},
			},
			YouTube: YouTubeConfig{Enabled: false},
		},
		Scoring: scoring.DefaultConfig(),
		Extract: ExtractConfig{
			LLM: LLMConfig{Provider: "openai", Model: "gpt-4o-mini"},
		},
		Alerts: AlertsConfig{},
		Server: ServerConfig{Port: 8080},
	}
}

// Load reads configuration from a YAML file and applies env var overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("NICHERADAR_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("REDDIT_CLIENT_ID"); v != "" {
		cfg.Sources.Reddit.ClientID = v
	}
	if v := os.Getenv("REDDIT_CLIENT_SECRET"); v != "" {
		cfg.Sources.Reddit.ClientSecret = v
	}
	if v := os.Getenv("YOUTUBE_API_KEY"); v != "" {
		cfg.Sources.YouTube.APIKey = v
		cfg.Sources.YouTube.Enabled = true
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		cfg.Alerts.Slack.WebhookURL = v
		cfg.Alerts.Slack.Enabled = true
	}
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		cfg.Alerts.Discord.WebhookURL = v
		cfg.Alerts.Discord.Enabled = true
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Extract.LLM.APIKey = v
		cfg.Extract.LLM.Enabled = true
		cfg.Extract.LLM.Provider = "openai"
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.Extract.LLM.APIKey = v
		cfg.Extract.LLM.Enabled = true
		cfg.Extract.LLM.Provider = "anthropic"
	}
}
