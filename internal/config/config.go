package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	SiteUsername string `mapstructure:"site_username"`
	SitePassword string `mapstructure:"site_password"`
	SiteBaseURL  string `mapstructure:"site_base_url"`
	Headless     bool   `mapstructure:"headless"`
	DryRun       bool   `mapstructure:"dry_run"`

	PageTimeoutSeconds int64         `mapstructure:"page_timeout"`
	PageTimeout        time.Duration `mapstructure:"-"`

	FeedsFile      string `mapstructure:"feeds_file"`
	FeedSource     string `mapstructure:"feed_source"`
	PublishersFile string `mapstructure:"publishers_file"`
	RankedReplies  bool   `mapstructure:"ranked_replies"`
	PullCount      int    `mapstructure:"pull_count"`
	IdealBufferLen int    `mapstructure:"ideal_buffer_len"`

	LedgerType   string `mapstructure:"ledger_type"`
	LedgerPath   string `mapstructure:"ledger_path"`
	DatabasePath string `mapstructure:"database_path"`

	PollIntervalSeconds int64         `mapstructure:"poll_interval"`
	PollInterval        time.Duration `mapstructure:"-"`
	PollJitter          float64       `mapstructure:"poll_jitter"`
	PollSchedule        string        `mapstructure:"poll_schedule"`
	ReplyDelayMs        int64         `mapstructure:"reply_delay_ms"`
	ReplyDelay          time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("app_name", "okbot")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("site_username", "")
	v.SetDefault("site_password", "")
	v.SetDefault("site_base_url", "https://www.okcupid.com")
	v.SetDefault("headless", true)
	v.SetDefault("dry_run", false)
	v.SetDefault("page_timeout", 60) // seconds
	v.SetDefault("feeds_file", "./configs/feeds.yaml")
	v.SetDefault("feed_source", "")
	v.SetDefault("publishers_file", "")
	v.SetDefault("ranked_replies", false)
	v.SetDefault("pull_count", 20)
	v.SetDefault("ideal_buffer_len", 100)
	v.SetDefault("ledger_type", "file")
	v.SetDefault("ledger_path", "./data/seen_ids.txt")
	v.SetDefault("database_path", "./data/okbot.sqlite")
	v.SetDefault("poll_interval", 600) // seconds
	v.SetDefault("poll_jitter", 0.2)
	v.SetDefault("poll_schedule", "")
	v.SetDefault("reply_delay_ms", 3000)

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.PollIntervalSeconds <= 0 {
		return nil, fmt.Errorf("invalid poll_interval (must be positive seconds)")
	}
	cfg.PollInterval = time.Duration(cfg.PollIntervalSeconds) * time.Second

	if cfg.PageTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid page_timeout (must be positive seconds)")
	}
	cfg.PageTimeout = time.Duration(cfg.PageTimeoutSeconds) * time.Second

	if cfg.ReplyDelayMs < 0 {
		return nil, fmt.Errorf("invalid reply_delay_ms (must not be negative)")
	}
	cfg.ReplyDelay = time.Duration(cfg.ReplyDelayMs) * time.Millisecond

	if cfg.PollJitter < 0 || cfg.PollJitter >= 1 {
		return nil, fmt.Errorf("invalid poll_jitter (must be in [0, 1))")
	}
	if cfg.PullCount <= 0 {
		return nil, fmt.Errorf("invalid pull_count (must be positive)")
	}
	if cfg.IdealBufferLen <= 0 {
		return nil, fmt.Errorf("invalid ideal_buffer_len (must be positive)")
	}

	cfg.FeedSource = strings.TrimSpace(cfg.FeedSource)
	cfg.LedgerType = strings.ToLower(strings.TrimSpace(cfg.LedgerType))

	return &cfg, nil
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	if c.SitePassword != "" {
		c.SitePassword = "***"
	}
	return c
}
