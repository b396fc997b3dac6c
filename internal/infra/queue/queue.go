package queue

import (
	"context"

	"github.com/yanqian/video-summarizer/internal/domain/video"
)

// Handler executes one delivered job.
type Handler func(ctx context.Context, name string, payload map[string]any)

// HandlerQueue is a job queue that delivers jobs to a registered handler.
type HandlerQueue interface {
	video.JobQueue
	SetHandler(handler Handler)
	Close()
}

func toPayload(payload any) map[string]any {
	typed, ok := payload.(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return typed
}
