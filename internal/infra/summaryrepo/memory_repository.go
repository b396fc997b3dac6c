package summaryrepo

import (
	"context"
	"sync"

	"github.com/yanqian/video-summarizer/internal/domain/video"
)

// MemoryRepository keeps summaries in process memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]video.Record
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]video.Record)}
}

func (r *MemoryRepository) Find(_ context.Context, videoID string) (video.Record, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[videoID]
	if !ok {
		return video.Record{}, false, nil
	}
	rec.Summary = append([]string(nil), rec.Summary...)
	return rec, true, nil
}

func (r *MemoryRepository) Upsert(_ context.Context, rec video.Record) error {
	rec.Summary = append([]string(nil), rec.Summary...)
	r.mu.Lock()
	r.records[rec.VideoID] = rec
	r.mu.Unlock()
	return nil
}

var _ video.SummaryRepository = (*MemoryRepository)(nil)
