package summaryrepo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/video-summarizer/internal/domain/video"
)

func TestMemoryRepositoryUpsertReplacesAndCopies(t *testing.T) {
	t.Parallel()
	repo := NewMemoryRepository()
	ctx := context.Background()

	summary := []string{"one"}
	require.NoError(t, repo.Upsert(ctx, video.Record{VideoID: "v", Summary: summary, Attempts: 1}))
	summary[0] = "mutated"

	got, ok, err := repo.Find(ctx, "v")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []string{"one"}, got.Summary)

	got.Summary[0] = "mutated again"
	require.NoError(t, repo.Upsert(ctx, video.Record{VideoID: "v", Summary: []string{"two"}, Attempts: 2}))
	got, ok, err = repo.Find(ctx, "v")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []string{"two"}, got.Summary)
	require.Equal(t, 2, got.Attempts)

	_, ok, err = repo.Find(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)
}
