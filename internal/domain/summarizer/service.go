package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/yanqian/video-summarizer/pkg/errors"
	"github.com/yanqian/video-summarizer/pkg/metrics"
)

// Service turns a long transcript into a validated bullet point summary.
type Service interface {
	Summarize(ctx context.Context, transcript string) (Result, error)
}

type service struct {
	cfg      Config
	invoker  Invoker
	observer Observer
	logger   *slog.Logger
}

// NewService is a wire provider for the chunked summarizer. observer may be nil.
func NewService(cfg Config, invoker Invoker, observer Observer, logger *slog.Logger) Service {
	if observer == nil {
		observer = noopObserver{}
	}
	return &service{
		cfg:      cfg.withDefaults(),
		invoker:  invoker,
		observer: observer,
		logger:   logger.With("component", "summarizer.service"),
	}
}

// validationFailure marks a reply that did not match the shape expected for its position.
type validationFailure struct {
	chunk   int
	outcome string
	err     error
}

func (v *validationFailure) Error() string {
	return fmt.Sprintf("chunk %d: %v", v.chunk, v.err)
}

func (v *validationFailure) Unwrap() error { return v.err }

type invocationFailure struct {
	chunk int
	err   error
}

func (f *invocationFailure) Error() string {
	return fmt.Sprintf("chunk %d: %v", f.chunk, f.err)
}

func (f *invocationFailure) Unwrap() error { return f.err }

func (s *service) Summarize(ctx context.Context, transcript string) (Result, error) {
	chunks := SplitWords(normalize(transcript), s.cfg.ChunkSize)
	if len(chunks) == 0 {
		return Result{}, apperrors.Wrap(apperrors.CodeInvalidInput, "transcript cannot be empty", nil)
	}
	s.logger.Info("transcript split into chunks", "chunks", len(chunks), "chunkSize", s.cfg.ChunkSize)

	start := time.Now()
	var (
		usage   metrics.TokenUsage
		lastErr error
	)
	for attempt := 1; attempt <= s.cfg.MaxRetries; attempt++ {
		summary, attemptUsage, err := s.runAttempt(ctx, chunks)
		usage = usage.Add(attemptUsage)
		if err == nil {
			s.observer.AttemptFinished(attempt, OutcomeOK)
			s.observer.RunFinished(OutcomeOK, attempt, time.Since(start))
			s.logger.Info("summary generated", "attempt", attempt, "points", len(summary))
			return Result{Summary: summary, Attempts: attempt, Chunks: len(chunks), Usage: usage}, nil
		}

		var invalid *validationFailure
		if errors.As(err, &invalid) {
			s.observer.AttemptFinished(attempt, invalid.outcome)
			s.logger.Warn("summary attempt failed validation", "attempt", attempt, "maxRetries", s.cfg.MaxRetries, "error", err)
			lastErr = err
			continue
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			s.observer.AttemptFinished(attempt, OutcomeCanceled)
			s.observer.RunFinished(OutcomeCanceled, attempt, time.Since(start))
			return Result{}, apperrors.Wrap(apperrors.CodeCanceled, "summarization canceled", ctxErr)
		}
		s.observer.AttemptFinished(attempt, OutcomeInvocationError)
		s.observer.RunFinished(OutcomeInvocationError, attempt, time.Since(start))
		s.logger.Error("model invocation failed", "attempt", attempt, "error", err)
		return Result{}, apperrors.Wrap(CodeModelInvocation, "model invocation failed", err)
	}

	s.observer.RunFinished(OutcomeExhausted, s.cfg.MaxRetries, time.Since(start))
	return Result{}, apperrors.Wrap(CodeValidationExhausted, fmt.Sprintf("no valid summary after %d attempts", s.cfg.MaxRetries), lastErr)
}

// runAttempt feeds every chunk in order. Any invalid reply ends the attempt; the caller
// starts the next one from chunk 0 with an empty history.
func (s *service) runAttempt(ctx context.Context, chunks []Chunk) ([]string, metrics.TokenUsage, error) {
	var usage metrics.TokenUsage
	history := make([]Turn, 0, len(chunks)-1)
	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, usage, err
		}
		prompt, err := buildPrompt(s.cfg, chunk)
		if err != nil {
			return nil, usage, err
		}
		completion, err := s.invoker.Invoke(ctx, Invocation{History: history, Prompt: prompt, Chunk: chunk})
		if err != nil {
			return nil, usage, &invocationFailure{chunk: chunk.Index, err: err}
		}
		usage = usage.Add(completion.Usage)

		if !chunk.Last {
			if err := decodeAck(completion.Text); err != nil {
				return nil, usage, &validationFailure{chunk: chunk.Index, outcome: OutcomeInvalidAck, err: err}
			}
			history = append(history, Turn{Prompt: prompt, Reply: completion.Text})
			continue
		}

		summary, err := decodeSummary(completion.Text)
		if err != nil {
			return nil, usage, &validationFailure{chunk: chunk.Index, outcome: OutcomeInvalidSummary, err: err}
		}
		return summary, usage, nil
	}
	return nil, usage, errors.New("chunk sequence has no final chunk")
}
