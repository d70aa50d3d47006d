package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	c := Default()
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, 4, c.Research.BranchCount)
	assert.Equal(t, 45*time.Second, c.Research.BranchTimeout)
	assert.Equal(t, "memory", c.Store.Driver)
	assert.Equal(t, "research.reports", c.Kafka.ReportTopic)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
ai:
  provider: mock
research:
  branch_count: 5
  branch_timeout: 20s
  topics: [a, b, c, d, e]
store:
  driver: sqlite3
  dsn: file:reports.db
`)
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, c.Research.BranchCount)
	assert.Equal(t, 20*time.Second, c.Research.BranchTimeout)
	assert.Equal(t, 90*time.Second, c.Research.SynthesisTimeout)
	assert.Equal(t, "sqlite3", c.Store.Driver)
}

func TestLoadWithEnv(t *testing.T) {
	path := writeConfig(t, "ai:\n  provider: gemini\n")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("HTTP_PORT", "9090")

	c, err := LoadWithEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "key", c.AI.Gemini.APIKey)
	assert.True(t, c.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.Equal(t, 9090, c.Server.Port)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"branch count too low":      func(c *Config) { c.Research.BranchCount = 2 },
		"branch count too high":     func(c *Config) { c.Research.BranchCount = 7 },
		"too few topics":            func(c *Config) { c.Research.Topics = []string{"a", "b"} },
		"missing gemini key":        func(c *Config) { c.AI.Provider = "gemini" },
		"unknown provider":          func(c *Config) { c.AI.Provider = "llama" },
		"grounding without support": func(c *Config) { c.AI.Provider = "claude"; c.AI.Claude.APIKey = "k"; c.Research.RequireGrounding = true },
		"sql without dsn":           func(c *Config) { c.Store.Driver = "postgres" },
		"unknown store":             func(c *Config) { c.Store.Driver = "mongo" },
		"unknown cache":             func(c *Config) { c.Store.Cache = "memcached" },
		"kafka without brokers":     func(c *Config) { c.Kafka.Enabled = true },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := Default()
			c.AI.Provider = "mock"
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}

	c := Default()
	c.AI.Provider = "mock"
	c.Research.RequireGrounding = true
	assert.NoError(t, c.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
