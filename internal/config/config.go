package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	dateLayout          = "2006-01-02"
	defaultListenAddr   = ":8080"
	defaultDatabaseURL  = "sqlite:calendar.db"
	defaultCacheTTL     = 10 * time.Minute
	defaultTimezone     = "America/New_York"
	defaultClassDates   = "2025-07-28,2025-07-29,2025-07-30,2025-07-31,2025-08-01"
	calendarName        = "Class Schedule"
	calendarDescription = "Scheduled classes, workshops and lectures"
)

// Config centralises 12-factor friendly runtime configuration.
type Config struct {
	ListenAddr   string
	DatabaseURL  string
	RedisAddr    string
	CacheTTL     time.Duration
	Timezone     string
	ClassDates   []time.Time
	CalendarName string
	CalendarDesc string
	BaseURL      string
}

// fileConfig mirrors the optional YAML file named by CONFIG_FILE.
type fileConfig struct {
	ListenAddr  string `yaml:"listenAddr"`
	DatabaseURL string `yaml:"databaseURL"`
	RedisAddr   string `yaml:"redisAddr"`
	CacheTTL    string `yaml:"cacheTTL"`
	BaseURL     string `yaml:"baseURL"`
	Calendar    struct {
		Name        string   `yaml:"name"`
		Description string   `yaml:"description"`
		Timezone    string   `yaml:"timezone"`
		ClassDates  []string `yaml:"classDates"`
	} `yaml:"calendar"`
}

// Load builds the Config from defaults, the optional CONFIG_FILE and then
// environment variables, later sources winning.
func Load() (Config, error) {
	var (
		file fileConfig
		err  error
	)
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	ttl := defaultCacheTTL
	if file.CacheTTL != "" {
		if ttl, err = time.ParseDuration(file.CacheTTL); err != nil {
			return Config{}, fmt.Errorf("invalid cacheTTL in config file: %w", err)
		}
	}
	cacheTTL, err := readDuration("CACHE_TTL", ttl)
	if err != nil {
		return Config{}, err
	}

	dates := defaultClassDates
	if len(file.Calendar.ClassDates) > 0 {
		dates = strings.Join(file.Calendar.ClassDates, ",")
	}
	classDates, err := readDates("CLASS_DATES", dates)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		ListenAddr:   getEnv("LISTEN_ADDR", orDefault(file.ListenAddr, defaultListenAddr)),
		DatabaseURL:  getEnv("DATABASE_URL", orDefault(file.DatabaseURL, defaultDatabaseURL)),
		RedisAddr:    lookupEnv("REDIS_ADDR", file.RedisAddr),
		CacheTTL:     cacheTTL,
		Timezone:     getEnv("TIMEZONE", orDefault(file.Calendar.Timezone, defaultTimezone)),
		ClassDates:   classDates,
		CalendarName: getEnv("CALENDAR_NAME", orDefault(file.Calendar.Name, calendarName)),
		CalendarDesc: getEnv("CALENDAR_DESC", orDefault(file.Calendar.Description, calendarDescription)),
		BaseURL:      strings.TrimRight(getEnv("BASE_URL", file.BaseURL), "/"),
	}

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return Config{}, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}

	return cfg, nil
}

// Location resolves the configured timezone, falling back to UTC.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// lookupEnv is getEnv for keys where an empty value is meaningful, such as
// REDIS_ADDR= turning off a Redis address from the config file.
func lookupEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(val)
	}
	return fallback
}

func orDefault(val, def string) string {
	if val != "" {
		return val
	}
	return def
}

func readDuration(key string, fallback time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}

	return d, nil
}

func readDates(key string, fallback string) ([]time.Time, error) {
	val := getEnv(key, fallback)

	var dates []time.Time
	for _, part := range strings.Split(val, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := time.Parse(dateLayout, part)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q for %s: %w", part, key, err)
		}
		dates = append(dates, d)
	}
	if len(dates) == 0 {
		return nil, fmt.Errorf("%s must list at least one date", key)
	}

	return dates, nil
}
