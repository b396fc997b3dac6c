package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/video-summarizer/internal/domain/video"
	"github.com/yanqian/video-summarizer/internal/infra/config"
	"github.com/yanqian/video-summarizer/internal/infra/queue"
)

type countingVideoService struct {
	video.Service
	jobs atomic.Int32
}

func (s *countingVideoService) HandleJob(context.Context, string, map[string]any) {
	s.jobs.Add(1)
}

func TestAppRunRegistersHandlerAndStops(t *testing.T) {
	cfg := &config.Config{HTTP: config.HTTPConfig{Address: "127.0.0.1:0", ShutdownTimeout: time.Second}}
	jobs := queue.NewImmediateQueue(nil)
	svc := &countingVideoService{}
	server := &http.Server{Addr: cfg.HTTP.Address, Handler: http.NotFoundHandler()}
	app := NewApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), server, jobs, svc)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.Eventually(t, func() bool {
		_ = jobs.Enqueue(context.Background(), video.JobSummarize, map[string]any{})
		return svc.jobs.Load() > 0
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("app did not stop")
	}
}
