package transcriptcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/video-summarizer/internal/domain/video"
)

func TestMemoryCacheExpiry(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := NewMemoryCache()
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, cache.Save(ctx, video.Transcript{VideoID: "a", Text: "short lived"}, time.Minute))
	require.NoError(t, cache.Save(ctx, video.Transcript{VideoID: "b", Text: "forever"}, 0))

	got, ok, err := cache.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "short lived", got.Text)

	now = now.Add(2 * time.Minute)
	_, ok, err = cache.Get(ctx, "a")
	require.NoError(t, err)
	require.False(t, ok)

	got, ok, err = cache.Get(ctx, "b")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "forever", got.Text)

	_, ok, err = cache.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryCacheEvictKeepsRefreshedEntry(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := NewMemoryCache()
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, cache.Save(ctx, video.Transcript{VideoID: "a", Text: "stale"}, time.Minute))
	now = now.Add(2 * time.Minute)

	// A Save lands between Get's read of the stale entry and its eviction.
	require.NoError(t, cache.Save(ctx, video.Transcript{VideoID: "a", Text: "fresh"}, time.Minute))
	cache.evict("a")

	got, ok, err := cache.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "fresh", got.Text)

	now = now.Add(2 * time.Minute)
	cache.evict("a")
	cache.mu.RLock()
	_, present := cache.entries["a"]
	cache.mu.RUnlock()
	require.False(t, present)
}
