package bootstrap

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/video-summarizer/internal/infra/config"
	"github.com/yanqian/video-summarizer/internal/infra/llm/conversation"
	"github.com/yanqian/video-summarizer/internal/infra/summaryrepo"
	"github.com/yanqian/video-summarizer/internal/infra/transcriptcache"
)

func TestStorageProvidersFallBackToMemory(t *testing.T) {
	t.Parallel()
	logger := newTestLogger()
	tests := []struct {
		name string
		cfg  config.Config
	}{
		{name: "nothing configured"},
		{name: "invalid dsn", cfg: config.Config{Storage: config.StorageConfig{Postgres: config.PostgresConfig{DSN: "postgres://%zz"}}}},
		{name: "valkey disabled", cfg: config.Config{Storage: config.StorageConfig{Valkey: config.ValkeyConfig{Addr: "localhost:6379"}}}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			repo, closeRepo := ProvideSummaryRepository(&tt.cfg, logger)
			defer closeRepo()
			require.IsType(t, &summaryrepo.MemoryRepository{}, repo)

			client, closeValkey := ProvideValkeyClient(&tt.cfg, logger)
			defer closeValkey()
			require.Nil(t, client)
			require.IsType(t, &transcriptcache.MemoryCache{}, ProvideTranscriptCache(&tt.cfg, client))
		})
	}
}

func TestProvideTokenCounterSkipsTiktokenWithoutBudget(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{Summary: config.SummaryConfig{CarryHistory: true}}
	require.Equal(t, conversation.ApproxCounter{}, ProvideTokenCounter(cfg, newTestLogger()))

	cfg = &config.Config{Summary: config.SummaryConfig{HistoryTokenBudget: 100}}
	require.Equal(t, conversation.ApproxCounter{}, ProvideTokenCounter(cfg, newTestLogger()))
}

func TestBuildValkeyOptions(t *testing.T) {
	t.Parallel()
	opt, err := buildValkeyOptions("cache:6379")
	require.NoError(t, err)
	require.Equal(t, []string{"cache:6379"}, opt.InitAddress)

	opt, err = buildValkeyOptions("redis://cache:6380/2")
	require.NoError(t, err)
	require.Equal(t, []string{"cache:6380"}, opt.InitAddress)
	require.Equal(t, 2, opt.SelectDB)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
