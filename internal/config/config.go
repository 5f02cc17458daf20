package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"go.yaml.in/yaml/v3"
)

// FileName is the config file looked up in the working and home directories.
const FileName = ".kmbfeed.yml"

// Environment overrides applied after the file is read.
const (
	EnvDBURL    = "KMBFEED_DB_URL"
	EnvRedisURL = "KMBFEED_REDIS_URL"
)

// Config holds all kmbfeed configuration.
type Config struct {
	Language string   `yaml:"language" validate:"oneof=en tc"`
	DBURL    string   `yaml:"db_url" validate:"omitempty,url"`
	HTTP     HTTP     `yaml:"http"`
	Cache    Cache    `yaml:"cache"`
	Replay   Replay   `yaml:"replay"`
	Exclude  Exclude  `yaml:"exclude"`
	Defaults Defaults `yaml:"defaults"`
}

// HTTP configures the KMB endpoints client.
type HTTP struct {
	Timeout        string `yaml:"timeout"`
	UserAgent      string `yaml:"user_agent" validate:"required"`
	AcceptLanguage string `yaml:"accept_language"`
	Retries        int    `yaml:"retries" validate:"gte=0,lte=10"`
	ETABaseURL     string `yaml:"eta_base_url" validate:"required,url"`
	DataBaseURL    string `yaml:"data_base_url" validate:"required,url"`
	POIBaseURL     string `yaml:"poi_base_url" validate:"required,url"`
}

// Cache selects where downloaded feed documents are kept.
type Cache struct {
	Enabled  bool   `yaml:"enabled"`
	Backend  string `yaml:"backend" validate:"oneof=sqlite redis"`
	Path     string `yaml:"path" validate:"required_if=Backend sqlite"`
	RedisURL string `yaml:"redis_url" validate:"required_if=Backend redis,omitempty,url"`
	TTL      string `yaml:"ttl"` // parsed as time.Duration, empty means no expiry
}

// Replay tunes the statement replay pass.
type Replay struct {
	SkipUnparseable       bool `yaml:"skip_unparseable"`
	ApplyRouteStopDeletes bool `yaml:"apply_route_stop_deletes"`
}

// Exclude lists tables and diagnostic types to skip when reporting.
type Exclude struct {
	Tables      []string `yaml:"tables"`
	Diagnostics []string `yaml:"diagnostics"`
}

// Defaults holds default CLI flag values.
type Defaults struct {
	Format  string `yaml:"format" validate:"oneof=text json sarif"`
	Timeout string `yaml:"timeout"` // parsed as time.Duration
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Language: "en",
		HTTP: HTTP{
			Timeout:        "15s",
			UserAgent:      "KMB/2.9.4 CFNetwork/758.4.3 Darwin/15.5.0",
			AcceptLanguage: "en-us",
			Retries:        3,
			ETABaseURL:     "http://etav2.kmb.hk",
			DataBaseURL:    "http://etadatafeed.kmb.hk:1933",
			POIBaseURL:     "http://www1.kmb.hk",
		},
		Cache: Cache{
			Enabled: true,
			Backend: "sqlite",
			Path:    filepath.Join(".cache", "request.db"),
		},
		Defaults: Defaults{
			Format:  "text",
			Timeout: "60s",
		},
	}
}

// Load reads configuration from .kmbfeed.yml in the given directory,
// falling back to ~/.kmbfeed.yml, then applies environment overrides and
// validates the result. Returns DefaultConfig if no file is found.
func Load(dir string) (Config, error) {
	cfg := DefaultConfig()

	paths := []string{filepath.Join(dir, FileName)}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, FileName))
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
		break
	}

	if v := os.Getenv(EnvDBURL); v != "" {
		cfg.DBURL = v
	}
	if v := os.Getenv(EnvRedisURL); v != "" {
		cfg.Cache.RedisURL = v
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	for name, d := range map[string]string{
		"http.timeout":     c.HTTP.Timeout,
		"cache.ttl":        c.Cache.TTL,
		"defaults.timeout": c.Defaults.Timeout,
	} {
		if d == "" {
			continue
		}
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("invalid config: %s: %w", name, err)
		}
	}
	return nil
}

// TimeoutDuration parses the Defaults.Timeout string as a time.Duration.
// Returns 60s if parsing fails.
func (c *Config) TimeoutDuration() time.Duration {
	return parseDuration(c.Defaults.Timeout, 60*time.Second)
}

// HTTPTimeout parses HTTP.Timeout. Returns 15s if parsing fails.
func (c *Config) HTTPTimeout() time.Duration {
	return parseDuration(c.HTTP.Timeout, 15*time.Second)
}

// CacheTTL parses Cache.TTL. Zero means entries never expire.
func (c *Config) CacheTTL() time.Duration {
	return c.Cache.TTLDuration()
}

// TTLDuration parses TTL. Zero means entries never expire.
func (c Cache) TTLDuration() time.Duration {
	return parseDuration(c.TTL, 0)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
