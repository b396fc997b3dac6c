package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/video-summarizer/internal/domain/video"
	"github.com/yanqian/video-summarizer/internal/infra/config"
	"github.com/yanqian/video-summarizer/internal/infra/queue"
)

// App encapsulates the HTTP server and background worker lifecycle.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	server   *http.Server
	jobs     queue.HandlerQueue
	videoSvc video.Service
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, jobs queue.HandlerQueue, videoSvc video.Service) *App {
	return &App{cfg: cfg, logger: logger.With("component", "bootstrap"), server: server, jobs: jobs, videoSvc: videoSvc}
}

// Run starts the job consumer and the HTTP server and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	a.jobs.SetHandler(a.videoSvc.HandleJob)
	defer a.jobs.Close()

	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		timeout := a.cfg.HTTP.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		a.logger.Info("shutdown signal received")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
