package summarizer

import (
	"context"
	"time"

	"github.com/yanqian/video-summarizer/pkg/metrics"
)

// Error codes surfaced by Summarize.
const (
	CodeModelInvocation     = "model_invocation_error"
	CodeValidationExhausted = "validation_exhausted"
)

const (
	DefaultChunkSize  = 2048
	DefaultMaxRetries = 3
	DefaultMinPoints  = 10
)

// Config configures chunking, retry and prompt wording.
type Config struct {
	ChunkSize  int
	MaxRetries int
	MinPoints  int
	System     string
	Goal       string
}

// DefaultConfig mirrors the values used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		ChunkSize:  DefaultChunkSize,
		MaxRetries: DefaultMaxRetries,
		MinPoints:  DefaultMinPoints,
		System:     "Youtube Video Summarizer",
		Goal:       "Summarize the transcript of a youtube video.",
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.ChunkSize <= 0 {
		c.ChunkSize = def.ChunkSize
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = def.MaxRetries
	}
	if c.MinPoints <= 0 {
		c.MinPoints = def.MinPoints
	}
	if c.System == "" {
		c.System = def.System
	}
	if c.Goal == "" {
		c.Goal = def.Goal
	}
	return c
}

// Chunk is one ordered slice of the transcript sent as a single turn.
type Chunk struct {
	Index int
	Text  string
	Words int
	Last  bool
}

// Turn is a prompt/reply pair that already validated within the current attempt.
type Turn struct {
	Prompt string
	Reply  string
}

// Invocation is everything an Invoker needs to produce the reply for one chunk.
type Invocation struct {
	History []Turn
	Prompt  string
	Chunk   Chunk
}

// Completion is the raw model reply plus provider reported usage.
type Completion struct {
	Text  string
	Usage metrics.TokenUsage
}

// Invoker sends one prompt to a language model.
type Invoker interface {
	Invoke(ctx context.Context, in Invocation) (Completion, error)
}

// InvokerFunc adapts a plain function to Invoker.
type InvokerFunc func(ctx context.Context, in Invocation) (Completion, error)

// Invoke implements Invoker.
func (f InvokerFunc) Invoke(ctx context.Context, in Invocation) (Completion, error) {
	return f(ctx, in)
}

// PromptFunc adapts a stateless prompt -> text capability. History is ignored.
type PromptFunc func(ctx context.Context, prompt string) (string, error)

// Invoke implements Invoker.
func (f PromptFunc) Invoke(ctx context.Context, in Invocation) (Completion, error) {
	text, err := f(ctx, in.Prompt)
	return Completion{Text: text}, err
}

// Result is a validated summary.
type Result struct {
	Summary  []string           `json:"summary"`
	Attempts int                `json:"attempts"`
	Chunks   int                `json:"chunks"`
	Usage    metrics.TokenUsage `json:"tokenUsage"`
}

// Attempt and run outcomes reported to the Observer.
const (
	OutcomeOK              = "ok"
	OutcomeInvalidAck      = "invalid_ack"
	OutcomeInvalidSummary  = "invalid_summary"
	OutcomeInvocationError = "invocation_error"
	OutcomeExhausted       = "exhausted"
	OutcomeCanceled        = "canceled"
)

// Observer receives progress notifications, typically for metrics.
type Observer interface {
	AttemptFinished(attempt int, outcome string)
	RunFinished(outcome string, attempts int, elapsed time.Duration)
}

type noopObserver struct{}

func (noopObserver) AttemptFinished(int, string) {}
func (noopObserver) RunFinished(string, int, time.Duration) {}
