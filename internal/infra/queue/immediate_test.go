package queue

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestImmediateQueueDeliversAfterCallerCancels(t *testing.T) {
	t.Parallel()
	var (
		mu   sync.Mutex
		got  []string
		errs []error
	)
	q := NewImmediateQueue(nil)
	q.SetHandler(func(ctx context.Context, name string, payload map[string]any) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, name+":"+payload["videoId"].(string))
		errs = append(errs, ctx.Err())
	})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, q.Enqueue(ctx, "video.summarize", map[string]any{"videoId": "a"}))
	cancel()
	require.NoError(t, q.Enqueue(context.Background(), "video.summarize", map[string]any{"videoId": "b"}))
	q.Close()

	require.ElementsMatch(t, []string{"video.summarize:a", "video.summarize:b"}, got)
	for _, err := range errs {
		require.NoError(t, err)
	}
}

func TestImmediateQueueWithoutHandler(t *testing.T) {
	t.Parallel()
	q := NewImmediateQueue(nil)
	require.NoError(t, q.Enqueue(context.Background(), "x", "not a map"))
	q.Close()
}

func TestToPayload(t *testing.T) {
	t.Parallel()
	require.Equal(t, map[string]any{"a": 1}, toPayload(map[string]any{"a": 1}))
	require.Equal(t, map[string]any{}, toPayload(42))
}
