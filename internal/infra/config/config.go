package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Summary SummaryConfig `yaml:"summary"`
	LLM     LLMConfig     `yaml:"llm"`
	YouTube YouTubeConfig `yaml:"youtube"`
	Storage StorageConfig `yaml:"storage"`
	Queue   QueueConfig   `yaml:"queue"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address         string          `yaml:"address"`
	ReadTimeout     time.Duration   `yaml:"readTimeout"`
	WriteTimeout    time.Duration   `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration   `yaml:"shutdownTimeout"`
	RateLimit       RateLimitConfig `yaml:"rateLimit"`
	Retry           RetryConfig     `yaml:"retry"`
	CORS            CORSConfig      `yaml:"cors"`
	Auth            AuthConfig      `yaml:"auth"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for transient upstream failures.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// CORSConfig lists browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// AuthConfig guards /api/v1 with bearer tokens.
type AuthConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Secret   string        `yaml:"secret"`
	Issuer   string        `yaml:"issuer"`
	TokenTTL time.Duration `yaml:"tokenTtl"`
}

// SummaryConfig drives chunking, retries and prompt wording.
type SummaryConfig struct {
	ChunkSize          int           `yaml:"chunkSize"`
	MaxRetries         int           `yaml:"maxRetries"`
	MinPoints          int           `yaml:"minPoints"`
	SystemPrompt       string        `yaml:"systemPrompt"`
	Goal               string        `yaml:"goal"`
	MaxTranscriptWords int           `yaml:"maxTranscriptWords"`
	HistoryTokenBudget int           `yaml:"historyTokenBudget"`
	CarryHistory       bool          `yaml:"carryHistory"`
	TranscriptTTL      time.Duration `yaml:"transcriptTtl"`
	MaxBatch           int           `yaml:"maxBatch"`
}

// LLMConfig contains ChatGPT/OpenAI settings.
type LLMConfig struct {
	APIKey            string        `yaml:"apiKey"`
	BaseURL           string        `yaml:"baseUrl"`
	Model             string        `yaml:"model"`
	Temperature       float32       `yaml:"temperature"`
	MaxTokens         int           `yaml:"maxTokens"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond"`
	Burst             int           `yaml:"burst"`
	Breaker           BreakerConfig `yaml:"breaker"`
}

// BreakerConfig tunes the circuit breaker around the LLM API.
type BreakerConfig struct {
	Enabled          bool          `yaml:"enabled"`
	MaxRequests      uint32        `yaml:"maxRequests"`
	Interval         time.Duration `yaml:"interval"`
	Timeout          time.Duration `yaml:"timeout"`
	FailureThreshold float64       `yaml:"failureThreshold"`
	MinRequests      uint32        `yaml:"minRequests"`
}

// YouTubeConfig controls transcript downloads.
type YouTubeConfig struct {
	BaseURL   string        `yaml:"baseUrl"`
	Languages []string      `yaml:"languages"`
	Timeout   time.Duration `yaml:"timeout"`
}

// StorageConfig groups the persistence backends. Empty settings select in-memory fallbacks.
type StorageConfig struct {
	Postgres PostgresConfig `yaml:"postgres"`
	Valkey   ValkeyConfig   `yaml:"valkey"`
	Archive  ArchiveConfig  `yaml:"archive"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// ValkeyConfig contains connection information for cache and queue storage.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// ArchiveConfig points at an S3-compatible bucket for summary snapshots.
type ArchiveConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Prefix    string `yaml:"prefix"`
}

// QueueConfig controls background summary jobs.
type QueueConfig struct {
	Enabled bool   `yaml:"enabled"`
	Key     string `yaml:"key"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	envString("HTTP_ADDRESS", &cfg.HTTP.Address)
	envBool("HTTP_RATE_LIMIT_ENABLED", &cfg.HTTP.RateLimit.Enabled)
	envInt("HTTP_RATE_LIMIT_RPM", &cfg.HTTP.RateLimit.RequestsPerMinute)
	envInt("HTTP_RATE_LIMIT_BURST", &cfg.HTTP.RateLimit.Burst)
	envBool("HTTP_RETRY_ENABLED", &cfg.HTTP.Retry.Enabled)
	envInt("HTTP_RETRY_MAX_ATTEMPTS", &cfg.HTTP.Retry.MaxAttempts)
	envDuration("HTTP_RETRY_BASE_BACKOFF", &cfg.HTTP.Retry.BaseBackoff)
	if v := os.Getenv("HTTP_CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.CORS.AllowedOrigins = splitList(v)
	}
	envBool("AUTH_ENABLED", &cfg.HTTP.Auth.Enabled)
	envString("AUTH_SECRET", &cfg.HTTP.Auth.Secret)
	envDuration("AUTH_TOKEN_TTL", &cfg.HTTP.Auth.TokenTTL)

	envInt("SUMMARY_CHUNK_SIZE", &cfg.Summary.ChunkSize)
	envInt("SUMMARY_MAX_RETRIES", &cfg.Summary.MaxRetries)
	envInt("SUMMARY_MIN_POINTS", &cfg.Summary.MinPoints)
	envString("SUMMARY_SYSTEM_PROMPT", &cfg.Summary.SystemPrompt)
	envInt("SUMMARY_MAX_TRANSCRIPT_WORDS", &cfg.Summary.MaxTranscriptWords)
	envInt("SUMMARY_HISTORY_TOKEN_BUDGET", &cfg.Summary.HistoryTokenBudget)
	envBool("SUMMARY_CARRY_HISTORY", &cfg.Summary.CarryHistory)
	envDuration("SUMMARY_TRANSCRIPT_TTL", &cfg.Summary.TranscriptTTL)

	envString("LLM_API_KEY", &cfg.LLM.APIKey)
	envString("LLM_BASE_URL", &cfg.LLM.BaseURL)
	envString("LLM_MODEL", &cfg.LLM.Model)
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	envInt("LLM_MAX_TOKENS", &cfg.LLM.MaxTokens)
	if v := os.Getenv("LLM_REQUESTS_PER_SECOND"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.LLM.RequestsPerSecond = parsed
		}
	}
	envBool("LLM_BREAKER_ENABLED", &cfg.LLM.Breaker.Enabled)

	envString("YOUTUBE_BASE_URL", &cfg.YouTube.BaseURL)
	if v := os.Getenv("YOUTUBE_LANGUAGES"); v != "" {
		cfg.YouTube.Languages = splitList(v)
	}

	envString("POSTGRES_DSN", &cfg.Storage.Postgres.DSN)
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Storage.Postgres.MaxConns = int32(parsed)
		}
	}
	envBool("VALKEY_ENABLED", &cfg.Storage.Valkey.Enabled)
	envString("VALKEY_ADDR", &cfg.Storage.Valkey.Addr)
	envBool("ARCHIVE_ENABLED", &cfg.Storage.Archive.Enabled)
	envString("ARCHIVE_ENDPOINT", &cfg.Storage.Archive.Endpoint)
	envString("ARCHIVE_ACCESS_KEY", &cfg.Storage.Archive.AccessKey)
	envString("ARCHIVE_SECRET_KEY", &cfg.Storage.Archive.SecretKey)
	envString("ARCHIVE_BUCKET", &cfg.Storage.Archive.Bucket)

	envBool("QUEUE_ENABLED", &cfg.Queue.Enabled)
	envString("QUEUE_KEY", &cfg.Queue.Key)
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func envBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "1" || strings.EqualFold(v, "true")
	}
}

func envDuration(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:         ":8080",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    10 * time.Minute,
			ShutdownTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 2,
				BaseBackoff: 500 * time.Millisecond,
				Exclude: []string{
					"/api/v1/videos/summaries/jobs",
				},
			},
			CORS: CORSConfig{
				AllowedOrigins: []string{"http://localhost:3000"},
			},
			Auth: AuthConfig{
				Issuer:   "video-summarizer",
				TokenTTL: 24 * time.Hour,
			},
		},
		Summary: SummaryConfig{
			ChunkSize:          2048,
			MaxRetries:         3,
			MinPoints:          10,
			SystemPrompt:       "Youtube Video Summarizer",
			Goal:               "Summarize the transcript of a youtube video.",
			MaxTranscriptWords: 0,
			HistoryTokenBudget: 12000,
			CarryHistory:       true,
			TranscriptTTL:      7 * 24 * time.Hour,
			MaxBatch:           20,
		},
		LLM: LLMConfig{
			Model:             "gpt-4o-mini",
			Temperature:       0.2,
			Timeout:           2 * time.Minute,
			RequestsPerSecond: 2,
			Burst:             2,
			Breaker: BreakerConfig{
				Enabled:          true,
				MaxRequests:      1,
				Interval:         time.Minute,
				Timeout:          30 * time.Second,
				FailureThreshold: 0.5,
				MinRequests:      5,
			},
		},
		YouTube: YouTubeConfig{
			BaseURL:   "https://www.youtube.com",
			Languages: []string{"en", "en-US", "en-GB"},
			Timeout:   15 * time.Second,
		},
		Storage: StorageConfig{
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
			Valkey: ValkeyConfig{
				Prefix: "video-summarizer",
			},
			Archive: ArchiveConfig{
				Bucket: "video-summaries",
				Region: "auto",
				Prefix: "summaries",
			},
		},
		Queue: QueueConfig{
			Key: "video-summarizer:jobs",
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.Summary.ChunkSize <= 0 {
		return errors.New("summary.chunkSize must be positive")
	}
	if c.Summary.MaxRetries <= 0 {
		return errors.New("summary.maxRetries must be positive")
	}
	if c.Summary.MinPoints < 0 {
		return errors.New("summary.minPoints cannot be negative")
	}
	if c.Summary.MaxTranscriptWords < 0 {
		return errors.New("summary.maxTranscriptWords cannot be negative")
	}
	if c.Summary.HistoryTokenBudget < 0 {
		return errors.New("summary.historyTokenBudget cannot be negative")
	}
	if c.Summary.TranscriptTTL < 0 {
		return errors.New("summary.transcriptTtl cannot be negative")
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model cannot be empty")
	}
	if c.LLM.RequestsPerSecond < 0 {
		return errors.New("llm.requestsPerSecond cannot be negative")
	}
	if c.LLM.Breaker.Enabled && (c.LLM.Breaker.FailureThreshold <= 0 || c.LLM.Breaker.FailureThreshold > 1) {
		return errors.New("llm.breaker.failureThreshold must be within (0, 1]")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	if c.HTTP.Auth.Enabled && len(strings.TrimSpace(c.HTTP.Auth.Secret)) < 16 {
		return errors.New("http.auth.secret must be at least 16 characters when auth is enabled")
	}
	if c.Storage.Valkey.Enabled && strings.TrimSpace(c.Storage.Valkey.Addr) == "" {
		return errors.New("storage.valkey.addr cannot be empty when valkey is enabled")
	}
	if c.Storage.Archive.Enabled {
		if strings.TrimSpace(c.Storage.Archive.Endpoint) == "" || strings.TrimSpace(c.Storage.Archive.Bucket) == "" {
			return errors.New("storage.archive.endpoint and bucket are required when the archive is enabled")
		}
	}
	return nil
}
