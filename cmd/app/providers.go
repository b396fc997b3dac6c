package main

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/video-summarizer/internal/domain/auth"
	"github.com/yanqian/video-summarizer/internal/domain/video"
	"github.com/yanqian/video-summarizer/internal/infra/archive"
	"github.com/yanqian/video-summarizer/internal/infra/config"
	"github.com/yanqian/video-summarizer/internal/infra/queue"
)

func provideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Secret:   cfg.HTTP.Auth.Secret,
		Issuer:   cfg.HTTP.Auth.Issuer,
		TokenTTL: cfg.HTTP.Auth.TokenTTL,
	}
}

func provideJobQueue(cfg *config.Config, client valkey.Client, logger *slog.Logger) queue.HandlerQueue {
	if cfg.Queue.Enabled {
		if client != nil {
			logger.Info("valkey job queue enabled", "key", cfg.Queue.Key)
			return queue.NewValkeyQueue(client, cfg.Queue.Key, logger)
		}
		logger.Warn("queue enabled without valkey, running jobs in process")
	}
	return queue.NewImmediateQueue(nil)
}

func provideJobQueuePort(q queue.HandlerQueue) video.JobQueue {
	return q
}

// provideArchive returns nil when archiving is disabled; the video service skips it.
func provideArchive(cfg *config.Config, logger *slog.Logger) video.Archive {
	a := cfg.Storage.Archive
	if !a.Enabled {
		return nil
	}
	store, err := archive.NewMinioArchive(archive.Config{
		Endpoint:  a.Endpoint,
		AccessKey: a.AccessKey,
		SecretKey: a.SecretKey,
		Bucket:    a.Bucket,
		Region:    a.Region,
	}, logger)
	if err != nil {
		logger.Error("summary archive disabled", "error", err)
		return nil
	}
	logger.Info("summary archive enabled", "bucket", a.Bucket)
	return store
}
