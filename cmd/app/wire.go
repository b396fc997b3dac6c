//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yanqian/video-summarizer/internal/bootstrap"
	"github.com/yanqian/video-summarizer/internal/domain/auth"
	"github.com/yanqian/video-summarizer/internal/domain/summarizer"
	"github.com/yanqian/video-summarizer/internal/domain/video"
	"github.com/yanqian/video-summarizer/internal/infra/config"
	"github.com/yanqian/video-summarizer/internal/infra/youtube"
	httpiface "github.com/yanqian/video-summarizer/internal/interface/http"
	"github.com/yanqian/video-summarizer/pkg/logger"
	"github.com/yanqian/video-summarizer/pkg/metrics"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideRegistry,
		wire.Bind(new(prometheus.Registerer), new(*prometheus.Registry)),
		wire.Bind(new(prometheus.Gatherer), new(*prometheus.Registry)),
		metrics.NewCollector,
		wire.Bind(new(summarizer.Observer), new(*metrics.Collector)),
		bootstrap.ProvideSummarizerConfig,
		bootstrap.ProvideVideoConfig,
		provideAuthConfig,
		bootstrap.ProvideChatGPTClient,
		bootstrap.ProvideTokenCounter,
		bootstrap.ProvideInvoker,
		bootstrap.ProvideYouTubeClient,
		wire.Bind(new(video.TranscriptSource), new(*youtube.Client)),
		bootstrap.ProvideValkeyClient,
		bootstrap.ProvideTranscriptCache,
		provideJobQueue,
		provideJobQueuePort,
		bootstrap.ProvideSummaryRepository,
		provideArchive,
		summarizer.NewService,
		video.NewService,
		auth.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
