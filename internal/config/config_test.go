package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ListenAddr != ":8080" {
		t.Fatalf("expected default listen addr, got %s", cfg.ListenAddr)
	}
	if cfg.CacheTTL != 10*time.Minute {
		t.Fatalf("expected cache ttl 10m, got %s", cfg.CacheTTL)
	}
	if cfg.DatabaseURL != "sqlite:calendar.db" {
		t.Fatalf("unexpected database url %s", cfg.DatabaseURL)
	}
	if len(cfg.ClassDates) != 5 {
		t.Fatalf("expected 5 default class dates, got %d", len(cfg.ClassDates))
	}
	if cfg.CalendarName == "" || cfg.CalendarDesc == "" {
		t.Fatalf("calendar metadata missing")
	}
	if cfg.Location().String() != "America/New_York" {
		t.Fatalf("unexpected location %s", cfg.Location())
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", "127.0.0.1:9090")
	t.Setenv("DATABASE_URL", "postgres://calendar@localhost/calendar")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("CACHE_TTL", "1h")
	t.Setenv("TIMEZONE", "Europe/London")
	t.Setenv("CLASS_DATES", "2025-07-26, 2025-07-27")
	t.Setenv("BASE_URL", "https://classes.example.com/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ListenAddr != "127.0.0.1:9090" {
		t.Fatalf("ListenAddr not overridden")
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Fatalf("RedisAddr not overridden: %s", cfg.RedisAddr)
	}
	if cfg.CacheTTL != time.Hour {
		t.Fatalf("CacheTTL override failed: %s", cfg.CacheTTL)
	}
	if cfg.BaseURL != "https://classes.example.com" {
		t.Fatalf("BaseURL trimming failed: %s", cfg.BaseURL)
	}
	if len(cfg.ClassDates) != 2 || cfg.ClassDates[1].Day() != 27 {
		t.Fatalf("ClassDates override failed: %v", cfg.ClassDates)
	}
}

func TestLoadConfigFileWithEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar.yaml")
	content := `
listenAddr: ":7070"
cacheTTL: 30s
calendar:
  name: War Week Classes
  timezone: UTC
  classDates:
    - 2025-08-04
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LISTEN_ADDR", ":6060")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ListenAddr != ":6060" {
		t.Fatalf("env should win over file, got %s", cfg.ListenAddr)
	}
	if cfg.CacheTTL != 30*time.Second {
		t.Fatalf("file cache ttl ignored: %s", cfg.CacheTTL)
	}
	if cfg.CalendarName != "War Week Classes" {
		t.Fatalf("file calendar name ignored: %s", cfg.CalendarName)
	}
	if cfg.Timezone != "UTC" {
		t.Fatalf("file timezone ignored: %s", cfg.Timezone)
	}
	if len(cfg.ClassDates) != 1 || cfg.ClassDates[0].Month() != time.August {
		t.Fatalf("file class dates ignored: %v", cfg.ClassDates)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Setenv("TIMEZONE", "Nowhere/Special")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown timezone")
	}

	t.Setenv("TIMEZONE", "")
	t.Setenv("CLASS_DATES", "27/07/2025")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for malformed class date")
	}
}

func TestLoadConfigEmptyRedisAddrDisablesFileRedis(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar.yaml")
	if err := os.WriteFile(path, []byte("redisAddr: redis:6379\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Fatalf("file redis addr ignored: %q", cfg.RedisAddr)
	}

	t.Setenv("REDIS_ADDR", "")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RedisAddr != "" {
		t.Fatalf("empty REDIS_ADDR should disable redis, got %q", cfg.RedisAddr)
	}
}
