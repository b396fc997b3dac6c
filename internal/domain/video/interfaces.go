package video

import (
	"context"
	"time"
)

// TranscriptSource downloads captions for a video.
type TranscriptSource interface {
	Fetch(ctx context.Context, videoID string) (Transcript, error)
}

// TranscriptCache keeps downloaded transcripts so re-summarizing skips the download.
type TranscriptCache interface {
	Get(ctx context.Context, videoID string) (Transcript, bool, error)
	Save(ctx context.Context, transcript Transcript, ttl time.Duration) error
}

// SummaryRepository persists summaries keyed by video id.
type SummaryRepository interface {
	Find(ctx context.Context, videoID string) (Record, bool, error)
	Upsert(ctx context.Context, record Record) error
}

// Archive stores an immutable copy of each generated summary.
type Archive interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// JobQueue schedules background work.
type JobQueue interface {
	Enqueue(ctx context.Context, name string, payload any) error
}
