package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv       = "TREND_MONITOR_CONFIG"
	databaseDSNEnv      = "DATABASE_DSN"
	sentimentURLEnv     = "SENTIMENT_SERVICE_URL"
	sentimentAPIKeyEnv  = "SENTIMENT_API_KEY"
	telegramTokenEnv    = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv   = "TELEGRAM_CHAT_ID"
	serverListenAddrEnv = "LISTEN_ADDR"
)

// Config holds high-level settings required across the application.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Collector CollectorConfig `yaml:"collector"`
	Sentiment SentimentConfig `yaml:"sentiment"`
	Cache     CacheConfig     `yaml:"cache"`
	Jobs      JobsConfig      `yaml:"jobs"`
	Alerts    AlertConfig     `yaml:"alerts"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	ListenAddr string `yaml:"listenAddr"`
}

// DatabaseConfig describes Postgres connection details. An empty DSN disables
// durable storage; the latest/spikes endpoints then serve empty lists.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// CollectorConfig groups settings for news feed sources.
type CollectorConfig struct {
	RSSURLs    []string `yaml:"rssUrls"`
	RetryCount int      `yaml:"retryCount"`
	RetryDelay Duration `yaml:"retryDelay"`
}

// SentimentConfig describes the external scoring service.
type SentimentConfig struct {
	ServiceURL string `yaml:"serviceUrl"`
	APIKey     string `yaml:"apiKey"`
}

// CacheConfig controls result cache TTL and sweeping cadence.
type CacheConfig struct {
	DefaultTTL    Duration `yaml:"defaultTtl"`
	SweepInterval Duration `yaml:"sweepInterval"`
}

// JobsConfig controls async job retention and sweeping cadence.
type JobsConfig struct {
	MaxAge        Duration `yaml:"maxAge"`
	SweepInterval Duration `yaml:"sweepInterval"`
}

// AlertConfig wires the Telegram spike notifier.
type AlertConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Duration wraps time.Duration so YAML values like "5m" parse directly.
type Duration time.Duration

// UnmarshalYAML parses standard Go duration strings.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std converts back to time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(sentimentURLEnv); v != "" {
		c.Sentiment.ServiceURL = v
	}

	if v := os.Getenv(sentimentAPIKeyEnv); v != "" {
		c.Sentiment.APIKey = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Alerts.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Alerts.Telegram.ChatID = v
	}

	if v := os.Getenv(serverListenAddrEnv); v != "" {
		c.Server.ListenAddr = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Server.ListenAddr != "" {
		base.Server = override.Server
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if len(override.Collector.RSSURLs) > 0 {
		base.Collector.RSSURLs = override.Collector.RSSURLs
	}
	if override.Collector.RetryCount > 0 {
		base.Collector.RetryCount = override.Collector.RetryCount
	}
	if override.Collector.RetryDelay > 0 {
		base.Collector.RetryDelay = override.Collector.RetryDelay
	}

	if override.Sentiment.ServiceURL != "" {
		base.Sentiment.ServiceURL = override.Sentiment.ServiceURL
	}
	if override.Sentiment.APIKey != "" {
		base.Sentiment.APIKey = override.Sentiment.APIKey
	}

	if override.Cache.DefaultTTL > 0 {
		base.Cache.DefaultTTL = override.Cache.DefaultTTL
	}
	if override.Cache.SweepInterval > 0 {
		base.Cache.SweepInterval = override.Cache.SweepInterval
	}

	if override.Jobs.MaxAge > 0 {
		base.Jobs.MaxAge = override.Jobs.MaxAge
	}
	if override.Jobs.SweepInterval > 0 {
		base.Jobs.SweepInterval = override.Jobs.SweepInterval
	}

	if override.Alerts.Telegram.BotToken != "" {
		base.Alerts.Telegram.BotToken = override.Alerts.Telegram.BotToken
	}
	if override.Alerts.Telegram.ChatID != "" {
		base.Alerts.Telegram.ChatID = override.Alerts.Telegram.ChatID
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Server:   ServerConfig{ListenAddr: ":8000"},
		Database: DatabaseConfig{DSN: ""},
		Collector: CollectorConfig{
			RSSURLs: []string{
				"https://news.google.com/rss",
			},
			RetryCount: 3,
			RetryDelay: Duration(time.Second),
		},
		Sentiment: SentimentConfig{
			ServiceURL: "http://localhost:8500",
			APIKey:     "",
		},
		Cache: CacheConfig{
			DefaultTTL:    Duration(10 * time.Minute),
			SweepInterval: Duration(5 * time.Minute),
		},
		Jobs: JobsConfig{
			MaxAge:        Duration(24 * time.Hour),
			SweepInterval: Duration(time.Hour),
		},
		Alerts: AlertConfig{
			Telegram: TelegramConfig{BotToken: "", ChatID: ""},
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
