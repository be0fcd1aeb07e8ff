package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.ListenAddr != ":8000" {
		t.Fatalf("unexpected listen addr: %s", cfg.Server.ListenAddr)
	}
	if cfg.Cache.DefaultTTL.Std() != 10*time.Minute {
		t.Fatalf("unexpected cache ttl: %v", cfg.Cache.DefaultTTL.Std())
	}
	if cfg.Jobs.MaxAge.Std() != 24*time.Hour {
		t.Fatalf("unexpected job max age: %v", cfg.Jobs.MaxAge.Std())
	}
	if len(cfg.Collector.RSSURLs) == 0 {
		t.Fatal("default feed list must not be empty")
	}
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	raw := `
server:
  listenAddr: ":9000"
cache:
  defaultTtl: 30m
collector:
  rssUrls:
    - https://feeds.example.com/news
  retryCount: 5
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("TREND_MONITOR_CONFIG", path)
	t.Setenv("LISTEN_ADDR", ":7000")
	t.Setenv("DATABASE_DSN", "postgres://localhost/trends")

	cfg := Load()

	// Env beats file, file beats defaults.
	if cfg.Server.ListenAddr != ":7000" {
		t.Fatalf("env override lost: %s", cfg.Server.ListenAddr)
	}
	if cfg.Database.DSN != "postgres://localhost/trends" {
		t.Fatalf("dsn override lost: %s", cfg.Database.DSN)
	}
	if cfg.Cache.DefaultTTL.Std() != 30*time.Minute {
		t.Fatalf("file ttl lost: %v", cfg.Cache.DefaultTTL.Std())
	}
	if cfg.Collector.RetryCount != 5 {
		t.Fatalf("file retry count lost: %d", cfg.Collector.RetryCount)
	}
	if cfg.Jobs.SweepInterval.Std() != time.Hour {
		t.Fatalf("untouched default lost: %v", cfg.Jobs.SweepInterval.Std())
	}
}

func TestLoadBadFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server: ["), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("TREND_MONITOR_CONFIG", path)
	t.Setenv("LISTEN_ADDR", "")

	cfg := Load()
	if cfg.Server.ListenAddr != ":8000" {
		t.Fatalf("bad file should fall back to defaults, got %s", cfg.Server.ListenAddr)
	}
}
