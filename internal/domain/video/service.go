package video

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/video-summarizer/internal/domain/summarizer"
	apperrors "github.com/yanqian/video-summarizer/pkg/errors"
	"github.com/yanqian/video-summarizer/pkg/util"
)

// Service exposes the video summarization workflows.
type Service interface {
	Summarize(ctx context.Context, req Request) (Response, error)
	Get(ctx context.Context, videoID string) (Response, error)
	Enqueue(ctx context.Context, req EnqueueRequest) (EnqueueResponse, error)
	HandleJob(ctx context.Context, name string, payload map[string]any)
}

type service struct {
	cfg         Config
	summarizer  summarizer.Service
	source      TranscriptSource
	transcripts TranscriptCache
	summaries   SummaryRepository
	archive     Archive
	queue       JobQueue
	logger      *slog.Logger
	now         util.Clock
}

// NewService wires the video workflow. archive and queue may be nil.
func NewService(cfg Config, sum summarizer.Service, source TranscriptSource, transcripts TranscriptCache, summaries SummaryRepository, archive Archive, queue JobQueue, logger *slog.Logger) Service {
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = 20
	}
	return &service{
		cfg:         cfg,
		summarizer:  sum,
		source:      source,
		transcripts: transcripts,
		summaries:   summaries,
		archive:     archive,
		queue:       queue,
		logger:      logger.With("component", "video.service"),
		now:         util.NowUTC,
	}
}

func (s *service) Summarize(ctx context.Context, req Request) (Response, error) {
	videoID, err := ParseVideoID(req.Link)
	if err != nil {
		return Response{}, apperrors.Wrap(apperrors.CodeInvalidInput, "link must be a youtube video url or id", err)
	}
	return s.summarizeVideo(ctx, videoID, req.Refresh)
}

func (s *service) summarizeVideo(ctx context.Context, videoID string, refresh bool) (Response, error) {
	start := time.Now()
	if !refresh {
		rec, ok, err := s.summaries.Find(ctx, videoID)
		if err != nil {
			s.logger.Warn("summary lookup failed, regenerating", "videoId", videoID, "error", err)
		} else if ok {
			s.logger.Info("summary served from repository", "videoId", videoID)
			return toResponse(rec, true), nil
		}
	}

	transcript, err := s.loadTranscript(ctx, videoID)
	if err != nil {
		return Response{}, err
	}

	result, err := s.summarizer.Summarize(ctx, transcript.Text)
	if err != nil {
		return Response{}, err
	}

	rec := Record{
		VideoID:   videoID,
		Title:     transcript.Title,
		Link:      WatchURL(videoID),
		Language:  transcript.Language,
		Summary:   result.Summary,
		Attempts:  result.Attempts,
		Chunks:    result.Chunks,
		Usage:     result.Usage,
		Model:     s.cfg.Model,
		CreatedAt: s.now(),
	}
	if err := s.summaries.Upsert(ctx, rec); err != nil {
		return Response{}, apperrors.Wrap(CodeStorage, "failed to persist summary", err)
	}
	s.archiveRecord(ctx, rec)

	resp := toResponse(rec, false)
	resp.DurationMs = time.Since(start).Milliseconds()
	s.logger.Info("video summarized", "videoId", videoID, "attempts", rec.Attempts, "chunks", rec.Chunks, "durationMs", resp.DurationMs)
	return resp, nil
}

func (s *service) loadTranscript(ctx context.Context, videoID string) (Transcript, error) {
	cached, ok, err := s.transcripts.Get(ctx, videoID)
	if err != nil {
		s.logger.Warn("transcript cache read failed", "videoId", videoID, "error", err)
	}
	if ok && strings.TrimSpace(cached.Text) != "" {
		s.logger.Debug("transcript served from cache", "videoId", videoID)
		return cached, nil
	}

	fetched, err := s.source.Fetch(ctx, videoID)
	if err != nil {
		return Transcript{}, apperrors.Wrap(CodeTranscriptUnavailable, "failed to download transcript", err)
	}
	fetched.VideoID = videoID
	fetched.Text = CleanTranscript(fetched.Text, s.cfg.MaxTranscriptWords)
	if fetched.Text == "" {
		return Transcript{}, apperrors.Wrap(CodeTranscriptUnavailable, "transcript is empty", nil)
	}
	if err := s.transcripts.Save(ctx, fetched, s.cfg.TranscriptTTL); err != nil {
		s.logger.Warn("transcript cache write failed", "videoId", videoID, "error", err)
	}
	s.logger.Info("transcript downloaded", "videoId", videoID, "language", fetched.Language, "words", len(strings.Fields(fetched.Text)))
	return fetched, nil
}

func (s *service) archiveRecord(ctx context.Context, rec Record) {
	if s.archive == nil {
		return
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		s.logger.Warn("summary archive encode failed", "videoId", rec.VideoID, "error", err)
		return
	}
	key := fmt.Sprintf("%s/%s/%s.json", strings.Trim(s.cfg.ArchivePrefix, "/"), rec.VideoID, rec.CreatedAt.Format("20060102T150405Z"))
	key = strings.TrimPrefix(key, "/")
	if err := s.archive.Put(ctx, key, payload, "application/json"); err != nil {
		s.logger.Warn("summary archive failed", "videoId", rec.VideoID, "key", key, "error", err)
	}
}

func (s *service) Get(ctx context.Context, videoID string) (Response, error) {
	id, err := ParseVideoID(videoID)
	if err != nil {
		return Response{}, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid video id", err)
	}
	rec, ok, err := s.summaries.Find(ctx, id)
	if err != nil {
		return Response{}, apperrors.Wrap(CodeStorage, "failed to load summary", err)
	}
	if !ok {
		return Response{}, apperrors.Wrap(apperrors.CodeNotFound, "summary not found", nil)
	}
	return toResponse(rec, true), nil
}

func (s *service) Enqueue(ctx context.Context, req EnqueueRequest) (EnqueueResponse, error) {
	if s.queue == nil {
		return EnqueueResponse{}, apperrors.Wrap(CodeQueue, "background jobs are disabled", nil)
	}
	if len(req.Links) == 0 {
		return EnqueueResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "links cannot be empty", nil)
	}
	if len(req.Links) > s.cfg.MaxBatch {
		return EnqueueResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("at most %d links per request", s.cfg.MaxBatch), nil)
	}

	ids := make([]string, 0, len(req.Links))
	seen := make(map[string]struct{}, len(req.Links))
	for _, link := range req.Links {
		id, err := ParseVideoID(link)
		if err != nil {
			return EnqueueResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("invalid link %q", link), err)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	out := EnqueueResponse{Jobs: make([]Job, 0, len(ids))}
	for _, id := range ids {
		job := Job{JobID: uuid.NewString(), VideoID: id}
		payload := map[string]any{"jobId": job.JobID, "videoId": id, "refresh": req.Refresh}
		if err := s.queue.Enqueue(ctx, JobSummarize, payload); err != nil {
			return out, apperrors.Wrap(CodeQueue, "failed to enqueue summary job", err)
		}
		out.Jobs = append(out.Jobs, job)
	}
	s.logger.Info("summary jobs enqueued", "count", len(out.Jobs))
	return out, nil
}

// HandleJob is registered as the queue consumer.
func (s *service) HandleJob(ctx context.Context, name string, payload map[string]any) {
	if name != JobSummarize {
		s.logger.Warn("unknown job ignored", "job", name)
		return
	}
	videoID, _ := payload["videoId"].(string)
	jobID, _ := payload["jobId"].(string)
	refresh, _ := payload["refresh"].(bool)
	if videoID == "" {
		s.logger.Warn("summary job missing video id", "jobId", jobID)
		return
	}
	resp, err := s.summarizeVideo(ctx, videoID, refresh)
	if err != nil {
		s.logger.Error("summary job failed", "jobId", jobID, "videoId", videoID, "code", apperrors.Code(err), "error", err)
		return
	}
	s.logger.Info("summary job finished", "jobId", jobID, "videoId", videoID, "cached", resp.Cached)
}
