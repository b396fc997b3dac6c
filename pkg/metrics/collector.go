package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "video_summarizer"

// Circuit breaker states as reported by the LLM client.
const (
	BreakerClosed   = "closed"
	BreakerHalfOpen = "half-open"
	BreakerOpen     = "open"
)

// Collector groups the Prometheus instruments recorded by the summarization pipeline.
type Collector struct {
	attempts     *prometheus.CounterVec
	runs         *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	tokens       *prometheus.CounterVec
	llmRequests  *prometheus.CounterVec
	llmLatency   prometheus.Histogram
	breakerState *prometheus.GaugeVec
}

// NewCollector registers the instruments on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		attempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "summarizer",
				Name:      "attempts_total",
				Help:      "Chunk-sequence attempts by outcome",
			},
			[]string{"outcome"},
		),
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "summarizer",
				Name:      "runs_total",
				Help:      "Summarization runs by outcome",
			},
			[]string{"outcome"},
		),
		runDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "summarizer",
				Name:      "run_duration_seconds",
				Help:      "Wall time of a summarization run",
				Buckets:   []float64{1, 2, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"outcome"},
		),
		tokens: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "llm",
				Name:      "tokens_total",
				Help:      "Tokens reported by the LLM provider",
			},
			[]string{"kind"},
		),
		llmRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "llm",
				Name:      "requests_total",
				Help:      "Chat completion requests by status",
			},
			[]string{"status"},
		),
		llmLatency: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "llm",
				Name:      "request_duration_seconds",
				Help:      "Chat completion latency",
				Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
			},
		),
		breakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "llm",
				Name:      "breaker_state",
				Help:      "1 for the current circuit breaker state, 0 otherwise",
			},
			[]string{"state"},
		),
	}
}

// AttemptFinished records one pass over the chunk sequence.
func (c *Collector) AttemptFinished(_ int, outcome string) {
	if c == nil {
		return
	}
	c.attempts.WithLabelValues(outcome).Inc()
}

// RunFinished records a complete summarization call.
func (c *Collector) RunFinished(outcome string, _ int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.runs.WithLabelValues(outcome).Inc()
	c.runDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// AddTokens accumulates provider reported usage.
func (c *Collector) AddTokens(usage TokenUsage) {
	if c == nil || usage.IsZero() {
		return
	}
	c.tokens.WithLabelValues("prompt").Add(float64(usage.PromptTokens))
	c.tokens.WithLabelValues("completion").Add(float64(usage.CompletionTokens))
}

// LLMRequest records a chat completion round trip.
func (c *Collector) LLMRequest(status string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.llmRequests.WithLabelValues(status).Inc()
	c.llmLatency.Observe(elapsed.Seconds())
}

// BreakerState flips the gauge to the given state.
func (c *Collector) BreakerState(state string) {
	if c == nil {
		return
	}
	for _, s := range []string{BreakerClosed, BreakerHalfOpen, BreakerOpen} {
		value := 0.0
		if s == state {
			value = 1
		}
		c.breakerState.WithLabelValues(s).Set(value)
	}
}
