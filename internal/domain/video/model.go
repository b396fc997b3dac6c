package video

import (
	"time"

	"github.com/yanqian/video-summarizer/pkg/metrics"
)

// Error codes specific to the video workflow.
const (
	CodeTranscriptUnavailable = "transcript_unavailable"
	CodeStorage               = "storage_error"
	CodeQueue                 = "queue_error"
)

// JobSummarize is the queue job name for background summarization.
const JobSummarize = "video.summarize"

// Config drives transcript handling and persistence side effects.
type Config struct {
	MaxTranscriptWords int
	TranscriptTTL      time.Duration
	Model              string
	ArchivePrefix      string
	MaxBatch           int
}

// Transcript is the cleaned caption text of one video.
type Transcript struct {
	VideoID  string `json:"videoId"`
	Title    string `json:"title,omitempty"`
	Language string `json:"language,omitempty"`
	Text     string `json:"text"`
}

// Record is a persisted summary.
type Record struct {
	VideoID   string             `json:"videoId"`
	Title     string             `json:"title,omitempty"`
	Link      string             `json:"link"`
	Language  string             `json:"language,omitempty"`
	Summary   []string           `json:"summary"`
	Attempts  int                `json:"attempts"`
	Chunks    int                `json:"chunks"`
	Usage     metrics.TokenUsage `json:"tokenUsage"`
	Model     string             `json:"model,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
}

// Request asks for the summary of one video.
type Request struct {
	Link    string `json:"link"`
	Refresh bool   `json:"refresh,omitempty"`
}

// Response is returned by Summarize and Get.
type Response struct {
	VideoID    string              `json:"videoId"`
	Title      string              `json:"title,omitempty"`
	Link       string              `json:"link"`
	Summary    []string            `json:"summary"`
	Attempts   int                 `json:"attempts"`
	Chunks     int                 `json:"chunks"`
	Cached     bool                `json:"cached"`
	CreatedAt  time.Time           `json:"createdAt"`
	DurationMs int64               `json:"durationMs,omitempty"`
	TokenUsage *metrics.TokenUsage `json:"tokenUsage,omitempty"`
}

// EnqueueRequest schedules background summaries.
type EnqueueRequest struct {
	Links   []string `json:"links"`
	Refresh bool     `json:"refresh,omitempty"`
}

// Job identifies one scheduled summary.
type Job struct {
	JobID   string `json:"jobId"`
	VideoID string `json:"videoId"`
}

// EnqueueResponse lists the accepted jobs.
type EnqueueResponse struct {
	Jobs []Job `json:"jobs"`
}

func toResponse(rec Record, cached bool) Response {
	resp := Response{
		VideoID:   rec.VideoID,
		Title:     rec.Title,
		Link:      rec.Link,
		Summary:   rec.Summary,
		Attempts:  rec.Attempts,
		Chunks:    rec.Chunks,
		Cached:    cached,
		CreatedAt: rec.CreatedAt,
	}
	if !rec.Usage.IsZero() {
		usage := rec.Usage
		resp.TokenUsage = &usage
	}
	return resp
}
