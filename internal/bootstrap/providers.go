package bootstrap

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/video-summarizer/internal/domain/summarizer"
	"github.com/yanqian/video-summarizer/internal/domain/video"
	"github.com/yanqian/video-summarizer/internal/infra/config"
	"github.com/yanqian/video-summarizer/internal/infra/llm/chatgpt"
	"github.com/yanqian/video-summarizer/internal/infra/llm/conversation"
	"github.com/yanqian/video-summarizer/internal/infra/summaryrepo"
	"github.com/yanqian/video-summarizer/internal/infra/transcriptcache"
	"github.com/yanqian/video-summarizer/internal/infra/youtube"
	"github.com/yanqian/video-summarizer/pkg/metrics"
)

// Providers shared by the API server and the CLI.

func ProvideSummarizerConfig(cfg *config.Config) summarizer.Config {
	return summarizer.Config{
		ChunkSize:  cfg.Summary.ChunkSize,
		MaxRetries: cfg.Summary.MaxRetries,
		MinPoints:  cfg.Summary.MinPoints,
		System:     cfg.Summary.SystemPrompt,
		Goal:       cfg.Summary.Goal,
	}
}

func ProvideVideoConfig(cfg *config.Config) video.Config {
	prefix := ""
	if cfg.Storage.Archive.Enabled {
		prefix = cfg.Storage.Archive.Prefix
	}
	return video.Config{
		MaxTranscriptWords: cfg.Summary.MaxTranscriptWords,
		TranscriptTTL:      cfg.Summary.TranscriptTTL,
		Model:              cfg.LLM.Model,
		ArchivePrefix:      prefix,
		MaxBatch:           cfg.Summary.MaxBatch,
	}
}

// ProvideChatGPTClient accepts a nil collector when metrics are not exported.
func ProvideChatGPTClient(cfg *config.Config, collector *metrics.Collector, logger *slog.Logger) (*chatgpt.Client, error) {
	b := cfg.LLM.Breaker
	return chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, chatgpt.Options{
		Timeout:           cfg.LLM.Timeout,
		RequestsPerSecond: cfg.LLM.RequestsPerSecond,
		Burst:             cfg.LLM.Burst,
		Breaker: chatgpt.BreakerConfig{
			Enabled:          b.Enabled,
			MaxRequests:      b.MaxRequests,
			Interval:         b.Interval,
			Timeout:          b.Timeout,
			FailureThreshold: b.FailureThreshold,
			MinRequests:      b.MinRequests,
		},
		Metrics: collector,
		Logger:  logger,
	})
}

// ProvideTokenCounter only loads the BPE ranks when a history budget has to be enforced.
func ProvideTokenCounter(cfg *config.Config, logger *slog.Logger) conversation.TokenCounter {
	if !cfg.Summary.CarryHistory || cfg.Summary.HistoryTokenBudget <= 0 {
		return conversation.ApproxCounter{}
	}
	counter, err := conversation.NewTiktokenCounter(cfg.LLM.Model)
	if err != nil {
		logger.Warn("tiktoken encoding unavailable, estimating tokens from word counts", "model", cfg.LLM.Model, "error", err)
		return conversation.ApproxCounter{}
	}
	return counter
}

func ProvideInvoker(cfg *config.Config, client *chatgpt.Client, counter conversation.TokenCounter, logger *slog.Logger) summarizer.Invoker {
	return conversation.NewInvoker(client, conversation.Config{
		Model:         cfg.LLM.Model,
		Temperature:   cfg.LLM.Temperature,
		MaxTokens:     cfg.LLM.MaxTokens,
		CarryHistory:  cfg.Summary.CarryHistory,
		HistoryBudget: cfg.Summary.HistoryTokenBudget,
	}, counter, logger)
}

func ProvideYouTubeClient(cfg *config.Config) *youtube.Client {
	return youtube.NewClient(cfg.YouTube.BaseURL, cfg.YouTube.Languages, cfg.YouTube.Timeout)
}

// ProvideValkeyClient returns a nil client when Valkey is disabled or unreachable.
func ProvideValkeyClient(cfg *config.Config, logger *slog.Logger) (valkey.Client, func()) {
	noop := func() {}
	if !cfg.Storage.Valkey.Enabled {
		return nil, noop
	}
	opt, err := buildValkeyOptions(cfg.Storage.Valkey.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory", "error", err)
		return nil, noop
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory", "error", err)
		return nil, noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory", "error", err)
		client.Close()
		return nil, noop
	}
	logger.Info("valkey enabled", "addr", cfg.Storage.Valkey.Addr)
	return client, client.Close
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func ProvideTranscriptCache(cfg *config.Config, client valkey.Client) video.TranscriptCache {
	if client == nil {
		return transcriptcache.NewMemoryCache()
	}
	return transcriptcache.NewValkeyCache(client, cfg.Storage.Valkey.Prefix+":transcript")
}

// ProvideSummaryRepository falls back to memory when Postgres is not configured or unreachable.
func ProvideSummaryRepository(cfg *config.Config, logger *slog.Logger) (video.SummaryRepository, func()) {
	fallback := summaryrepo.NewMemoryRepository()
	noop := func() {}
	dsn := strings.TrimSpace(cfg.Storage.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory summary repository")
		return fallback, noop
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory summary repository", "error", err)
		return fallback, noop
	}
	if cfg.Storage.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Storage.Postgres.MaxConns
	}
	if cfg.Storage.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Storage.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory summary repository", "error", err)
		return fallback, noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory summary repository", "error", err)
		pool.Close()
		return fallback, noop
	}
	repo := summaryrepo.NewPostgresRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Error("postgres schema setup failed, using memory summary repository", "error", err)
		pool.Close()
		return fallback, noop
	}
	logger.Info("postgres summary repository enabled")
	return repo, pool.Close
}
