package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 15*time.Second, cfg.GatewayTimeout)
	assert.Equal(t, JournalMemory, cfg.Journal)
	assert.Equal(t, 10000, cfg.JournalMaxEntries)
	assert.Empty(t, cfg.GatewayURL)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("GOOGLE_SCRIPT_URL", " https://script.example/exec ")
	t.Setenv("FUNNEL_GATEWAY_TIMEOUT", "3s")
	t.Setenv("FUNNEL_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("PORT", "9000")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "https://script.example/exec", cfg.GatewayURL)
	assert.Equal(t, 3*time.Second, cfg.GatewayTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 9000, cfg.Port)
}

func TestLoad_JournalRotation(t *testing.T) {
	active := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("a", 32)))
	old := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("o", 32)))
	t.Setenv("FUNNEL_JOURNAL_KEY", active)
	t.Setenv("FUNNEL_JOURNAL_FALLBACK_KEYS", old)
	t.Setenv("FUNNEL_JOURNAL_MAX_ENTRIES", "50")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.JournalMaxEntries)

	keys, err := cfg.JournalFallbackKeyBytes()
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte(strings.Repeat("o", 32))}, keys)
}

func TestLoad_PrimaryNameWins(t *testing.T) {
	t.Setenv("FUNNEL_GATEWAY_URL", "https://primary.example")
	t.Setenv("GOOGLE_SCRIPT_URL", "https://legacy.example")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "https://primary.example", cfg.GatewayURL)
}

func TestLoad_FlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("FUNNEL_PORT", "9000")

	flags := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	flags.Int("port", 8080, "")
	flags.String("journal", "memory", "")
	require.NoError(t, flags.Parse([]string{"--port", "7000"}))

	cfg, err := Load(flags)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, JournalMemory, cfg.Journal)
}

func TestValidate(t *testing.T) {
	key := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", 32)))

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"Defaults", func(c *Config) {}, ""},
		{"Bad Port", func(c *Config) { c.Port = 70000 }, "port"},
		{"Zero Timeout", func(c *Config) { c.GatewayTimeout = 0 }, "gateway_timeout"},
		{"Unknown Journal", func(c *Config) { c.Journal = "mongo" }, "unknown journal"},
		{"Redis Journal Needs Addr", func(c *Config) { c.Journal = JournalRedis }, "redis_addr"},
		{"SQLite Needs DSN", func(c *Config) { c.Journal = JournalSQLite; c.JournalDSN = "" }, "journal_dsn"},
		{"Short Key", func(c *Config) { c.JournalKey = base64.StdEncoding.EncodeToString([]byte("short")) }, "32 bytes"},
		{"Valid Key", func(c *Config) { c.JournalKey = key }, ""},
		{"Fallback Keys", func(c *Config) { c.JournalKey = key; c.JournalFallbackKeys = []string{key} }, ""},
		{"Fallback Without Key", func(c *Config) { c.JournalFallbackKeys = []string{key} }, "require journal_key"},
		{"Bad Fallback Key", func(c *Config) { c.JournalKey = key; c.JournalFallbackKeys = []string{"!!"} }, "journal_fallback_keys[0]"},
		{"Negative Max Entries", func(c *Config) { c.JournalMaxEntries = -1 }, "journal_max_entries"},
		{"Bad Level", func(c *Config) { c.LogLevel = "loud" }, "log level"},
		{"Bad Format", func(c *Config) { c.LogFormat = "xml" }, "log_format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("FUNNEL_TEST_DOTENV=loaded\n"), 0o600))
	t.Setenv("FUNNEL_TEST_DOTENV", "")
	os.Unsetenv("FUNNEL_TEST_DOTENV")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("FUNNEL_TEST_DOTENV"))
}
