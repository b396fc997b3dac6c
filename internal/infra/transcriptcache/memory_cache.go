package transcriptcache

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/video-summarizer/internal/domain/video"
	"github.com/yanqian/video-summarizer/pkg/util"
)

type entry struct {
	transcript video.Transcript
	expiresAt  time.Time
}

// MemoryCache is an in-process transcript cache for tests/dev.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     util.Clock
}

// NewMemoryCache constructs an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]entry), now: util.NowUTC}
}

// Get implements video.TranscriptCache.
func (c *MemoryCache) Get(_ context.Context, videoID string) (video.Transcript, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[videoID]
	c.mu.RUnlock()
	if !ok {
		return video.Transcript{}, false, nil
	}
	if c.expired(e) {
		c.evict(videoID)
		return video.Transcript{}, false, nil
	}
	return e.transcript, true, nil
}

func (c *MemoryCache) expired(e entry) bool {
	return !e.expiresAt.IsZero() && c.now().After(e.expiresAt)
}

// evict removes videoID unless a concurrent Save refreshed it after the read.
func (c *MemoryCache) evict(videoID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if current, ok := c.entries[videoID]; ok && c.expired(current) {
		delete(c.entries, videoID)
	}
}

// Save stores the transcript; ttl <= 0 keeps it forever.
func (c *MemoryCache) Save(_ context.Context, transcript video.Transcript, ttl time.Duration) error {
	e := entry{transcript: transcript}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[transcript.VideoID] = e
	c.mu.Unlock()
	return nil
}

var _ video.TranscriptCache = (*MemoryCache)(nil)
