package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollectorRecordsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.AttemptFinished(1, "invalid_summary")
	c.AttemptFinished(2, "ok")
	c.RunFinished("ok", 2, 3*time.Second)
	c.AddTokens(TokenUsage{PromptTokens: 10, CompletionTokens: 4, TotalTokens: 14})
	c.LLMRequest("ok", 200*time.Millisecond)
	c.BreakerState("open")

	require.Equal(t, 1.0, testutil.ToFloat64(c.attempts.WithLabelValues("ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.attempts.WithLabelValues("invalid_summary")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.runs.WithLabelValues("ok")))
	require.Equal(t, 10.0, testutil.ToFloat64(c.tokens.WithLabelValues("prompt")))
	require.Equal(t, 4.0, testutil.ToFloat64(c.tokens.WithLabelValues("completion")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.breakerState.WithLabelValues("open")))
	require.Equal(t, 0.0, testutil.ToFloat64(c.breakerState.WithLabelValues("closed")))
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	require.NotPanics(t, func() {
		c.AttemptFinished(1, "ok")
		c.RunFinished("ok", 1, time.Second)
		c.AddTokens(TokenUsage{TotalTokens: 1})
		c.LLMRequest("ok", time.Second)
		c.BreakerState("closed")
	})
}

func TestTokenUsageAdd(t *testing.T) {
	a := TokenUsage{PromptTokens: 1, CompletionTokens: 2, TotalTokens: 3}
	b := TokenUsage{PromptTokens: 4, CompletionTokens: 5, TotalTokens: 9}
	require.Equal(t, TokenUsage{PromptTokens: 5, CompletionTokens: 7, TotalTokens: 12}, a.Add(b))
	require.True(t, TokenUsage{}.IsZero())
}
