// Package config provides application configuration.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/reachflow/funnel/internal/logging"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Journal backends.
const (
	JournalNone   = "none"
	JournalMemory = "memory"
	JournalSQLite = "sqlite"
	JournalRedis  = "redis"
)

// Config holds all application configuration.
type Config struct {
	Port           int           `mapstructure:"port"`
	FunnelsDir     string        `mapstructure:"funnels_dir"` // empty: built-in catalog
	GatewayURL     string        `mapstructure:"gateway_url"`
	GatewayTimeout time.Duration `mapstructure:"gateway_timeout"`
	RedisAddr      string        `mapstructure:"redis_addr"` // empty: local in-flight guard only
	Journal        string        `mapstructure:"journal"`
	JournalDSN     string        `mapstructure:"journal_dsn"`
	JournalKey     string        `mapstructure:"journal_key"` // base64, 32 bytes; enables encryption at rest
	// JournalFallbackKeys are retired keys still accepted when reading entries back.
	JournalFallbackKeys []string `mapstructure:"journal_fallback_keys"`
	JournalMaxEntries   int      `mapstructure:"journal_max_entries"` // memory and redis journals; 0 keeps everything
	ThankYouPath        string   `mapstructure:"thank_you_path"`
	LogLevel            string   `mapstructure:"log_level"`
	LogFormat           string   `mapstructure:"log_format"`
	AllowedOrigins      []string `mapstructure:"allowed_origins"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Port:              8080,
		GatewayTimeout:    15 * time.Second,
		Journal:           JournalMemory,
		JournalDSN:        "data/journal.db",
		JournalMaxEntries: 10000,
		ThankYouPath:      "/ar/thank-you",
		LogLevel:          "info",
		LogFormat:         string(logging.FormatJSON),
	}
}

// flagKeys maps configuration keys to the CLI flags that may override them.
var flagKeys = map[string]string{
	"port":                "port",
	"funnels_dir":         "dir",
	"gateway_url":         "gateway-url",
	"gateway_timeout":     "gateway-timeout",
	"redis_addr":          "redis",
	"journal":             "journal",
	"journal_dsn":         "journal-dsn",
	"journal_max_entries": "journal-max-entries",
	"log_level":           "log-level",
	"log_format":          "log-format",
	"allowed_origins":     "allowed-origins",
}

// LoadDotEnv loads .env files into the environment. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// Load resolves the configuration from flags, the environment (FUNNEL_*) and defaults,
// in that order of precedence. flags may be nil.
// GOOGLE_SCRIPT_URL and PORT are accepted as aliases of FUNNEL_GATEWAY_URL and FUNNEL_PORT.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FUNNEL")
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("port", d.Port)
	v.SetDefault("funnels_dir", d.FunnelsDir)
	v.SetDefault("gateway_url", d.GatewayURL)
	v.SetDefault("gateway_timeout", d.GatewayTimeout)
	v.SetDefault("redis_addr", d.RedisAddr)
	v.SetDefault("journal", d.Journal)
	v.SetDefault("journal_dsn", d.JournalDSN)
	v.SetDefault("journal_key", d.JournalKey)
	v.SetDefault("journal_fallback_keys", d.JournalFallbackKeys)
	v.SetDefault("journal_max_entries", d.JournalMaxEntries)
	v.SetDefault("thank_you_path", d.ThankYouPath)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("allowed_origins", d.AllowedOrigins)

	if err := v.BindEnv("gateway_url", "FUNNEL_GATEWAY_URL", "GOOGLE_SCRIPT_URL"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("port", "FUNNEL_PORT", "PORT"); err != nil {
		return nil, err
	}

	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.GatewayURL = strings.TrimSpace(cfg.GatewayURL)
	cfg.AllowedOrigins = trimAll(cfg.AllowedOrigins)
	cfg.JournalFallbackKeys = trimAll(cfg.JournalFallbackKeys)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks field ranges and combinations.
// An empty gateway URL is accepted: every submission then answers "Server misconfigured".
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.GatewayTimeout <= 0 {
		return fmt.Errorf("gateway_timeout must be > 0")
	}
	switch c.Journal {
	case JournalNone, JournalMemory:
	case JournalSQLite:
		if c.JournalDSN == "" {
			return fmt.Errorf("journal_dsn cannot be empty for the sqlite journal")
		}
	case JournalRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("redis_addr is required for the redis journal")
		}
	default:
		return fmt.Errorf("unknown journal %q (want none, memory, sqlite or redis)", c.Journal)
	}
	if c.JournalMaxEntries < 0 {
		return fmt.Errorf("journal_max_entries must be >= 0, got %d", c.JournalMaxEntries)
	}
	if _, err := c.JournalKeyBytes(); err != nil {
		return err
	}
	if _, err := c.JournalFallbackKeyBytes(); err != nil {
		return err
	}
	if len(c.JournalFallbackKeys) > 0 && c.JournalKey == "" {
		return fmt.Errorf("journal_fallback_keys require journal_key")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch logging.Format(c.LogFormat) {
	case logging.FormatJSON, logging.FormatText:
	default:
		return fmt.Errorf("unknown log_format %q (want json or text)", c.LogFormat)
	}
	return nil
}

// JournalKeyBytes decodes the journal encryption key. It returns nil when no key is set.
func (c *Config) JournalKeyBytes() ([]byte, error) {
	if c.JournalKey == "" {
		return nil, nil
	}
	return decodeKey("journal_key", c.JournalKey)
}

// JournalFallbackKeyBytes decodes the retired journal keys.
func (c *Config) JournalFallbackKeyBytes() ([][]byte, error) {
	var keys [][]byte
	for i, k := range c.JournalFallbackKeys {
		key, err := decodeKey(fmt.Sprintf("journal_fallback_keys[%d]", i), k)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func decodeKey(name, encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%s must be base64: %w", name, err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("%s must decode to 32 bytes, got %d", name, len(key))
	}
	return key, nil
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
