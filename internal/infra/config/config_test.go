package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 2048, cfg.Summary.ChunkSize)
	require.Equal(t, 3, cfg.Summary.MaxRetries)
	require.Equal(t, ":8080", cfg.HTTP.Address)
	require.True(t, cfg.LLM.Breaker.Enabled)
	require.Equal(t, []string{"en", "en-US", "en-GB"}, cfg.YouTube.Languages)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  address: ":9090"
summary:
  chunkSize: 1024
  maxRetries: 5
llm:
  model: gpt-test
  breaker:
    enabled: false
youtube:
  languages: [de, en]
storage:
  valkey:
    enabled: true
    addr: localhost:6379
`), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("SUMMARY_MAX_RETRIES", "2")
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("SUMMARY_TRANSCRIPT_TTL", "90m")
	t.Setenv("HTTP_CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTP.Address)
	require.Equal(t, 1024, cfg.Summary.ChunkSize)
	require.Equal(t, 2, cfg.Summary.MaxRetries)
	require.Equal(t, "gpt-test", cfg.LLM.Model)
	require.Equal(t, "sk-test", cfg.LLM.APIKey)
	require.False(t, cfg.LLM.Breaker.Enabled)
	require.Equal(t, []string{"de", "en"}, cfg.YouTube.Languages)
	require.Equal(t, 90*time.Minute, cfg.Summary.TranscriptTTL)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORS.AllowedOrigins)
	require.True(t, cfg.Storage.Valkey.Enabled)
}

func TestValidate(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "empty address", mutate: func(c *Config) { c.HTTP.Address = "" }},
		{name: "zero chunk size", mutate: func(c *Config) { c.Summary.ChunkSize = 0 }},
		{name: "zero retries", mutate: func(c *Config) { c.Summary.MaxRetries = 0 }},
		{name: "empty model", mutate: func(c *Config) { c.LLM.Model = " " }},
		{name: "breaker threshold", mutate: func(c *Config) { c.LLM.Breaker.FailureThreshold = 2 }},
		{name: "short auth secret", mutate: func(c *Config) { c.HTTP.Auth.Enabled = true; c.HTTP.Auth.Secret = "short" }},
		{name: "valkey without addr", mutate: func(c *Config) { c.Storage.Valkey.Enabled = true }},
		{name: "archive without endpoint", mutate: func(c *Config) { c.Storage.Archive.Enabled = true }},
		{name: "rate limit burst", mutate: func(c *Config) { c.HTTP.RateLimit.Burst = 0 }},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			require.NoError(t, cfg.Validate())
			tc.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
