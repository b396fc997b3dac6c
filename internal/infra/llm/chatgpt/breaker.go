package chatgpt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/yanqian/video-summarizer/pkg/metrics"
)

var errBreakerOpen = errors.New("chatgpt circuit breaker is open")

// BreakerConfig controls the circuit breaker guarding the API.
type BreakerConfig struct {
	Enabled          bool
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

type breaker struct {
	cb *gobreaker.CircuitBreaker
}

func newBreaker(cfg BreakerConfig, collector *metrics.Collector, logger *slog.Logger) *breaker {
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 0.5
	}
	if cfg.MinRequests == 0 {
		cfg.MinRequests = 5
	}
	collector.BreakerState(metrics.BreakerClosed)
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "chatgpt",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellations and 4xx say nothing about upstream health.
			var abandoned *callerAbandonedError
			if errors.As(err, &abandoned) {
				return true
			}
			var statusErr *StatusError
			if errors.As(err, &statusErr) {
				return statusErr.StatusCode < 500 && statusErr.StatusCode != 429
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			collector.BreakerState(to.String())
		},
	})
	return &breaker{cb: cb}
}

// callerAbandonedError marks a failure caused by the caller's context ending.
type callerAbandonedError struct {
	err error
}

func (e *callerAbandonedError) Error() string { return e.err.Error() }

func (e *callerAbandonedError) Unwrap() error { return e.err }

func (b *breaker) do(ctx context.Context, fn func() ([]byte, error)) ([]byte, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		body, err := fn()
		if err != nil && ctx.Err() != nil {
			return nil, &callerAbandonedError{err: err}
		}
		return body, err
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", errBreakerOpen, err)
	}
	var abandoned *callerAbandonedError
	if errors.As(err, &abandoned) {
		return nil, abandoned.err
	}
	if err != nil {
		return nil, err
	}
	body, _ := out.([]byte)
	return body, nil
}
