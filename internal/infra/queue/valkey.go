package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"
)

type jobEnvelope struct {
	Name    string         `json:"name"`
	Payload map[string]any `json:"payload"`
}

func encodeJob(name string, payload any) (string, error) {
	encoded, err := json.Marshal(jobEnvelope{Name: name, Payload: toPayload(payload)})
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func decodeJob(raw string) (jobEnvelope, error) {
	var job jobEnvelope
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return jobEnvelope{}, err
	}
	if job.Name == "" {
		return jobEnvelope{}, errors.New("job envelope missing name")
	}
	if job.Payload == nil {
		job.Payload = map[string]any{}
	}
	return job, nil
}

// ValkeyQueue persists jobs in a Valkey list and delivers them to a handler.
type ValkeyQueue struct {
	client      valkey.Client
	queueKey    string
	logger      *slog.Logger
	pollTimeout time.Duration
	cancel      context.CancelFunc
	done        chan struct{}
	once        sync.Once
}

// NewValkeyQueue constructs a Valkey-backed queue.
func NewValkeyQueue(client valkey.Client, queueKey string, logger *slog.Logger) *ValkeyQueue {
	if queueKey == "" {
		queueKey = "video-summarizer:jobs"
	}
	return &ValkeyQueue{
		client:      client,
		queueKey:    queueKey,
		logger:      logger.With("component", "queue.valkey"),
		pollTimeout: 5 * time.Second,
	}
}

// SetHandler starts the worker loop that pops jobs and invokes the handler. Only the
// first non-nil handler starts a worker.
func (q *ValkeyQueue) SetHandler(handler Handler) {
	if handler == nil {
		return
	}
	q.once.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		q.cancel = cancel
		q.done = make(chan struct{})
		go q.consume(ctx, handler)
	})
}

// Enqueue pushes a job onto the queue.
func (q *ValkeyQueue) Enqueue(ctx context.Context, name string, payload any) error {
	encoded, err := encodeJob(name, payload)
	if err != nil {
		return err
	}
	cmd := q.client.B().Lpush().Key(q.queueKey).Element(encoded).Build()
	return q.client.Do(ctx, cmd).Error()
}

// Close stops the worker after the current job finishes.
func (q *ValkeyQueue) Close() {
	if q.cancel == nil {
		return
	}
	q.cancel()
	<-q.done
}

func (q *ValkeyQueue) consume(ctx context.Context, handler Handler) {
	defer close(q.done)
	for ctx.Err() == nil {
		resp := q.client.Do(ctx, q.client.B().Brpop().Key(q.queueKey).Timeout(q.pollTimeout.Seconds()).Build())
		values, err := resp.ToArray()
		if err != nil {
			if !valkey.IsValkeyNil(err) && ctx.Err() == nil {
				q.logger.Warn("valkey queue pop failed", "error", err)
				sleep(ctx, time.Second)
			}
			continue
		}
		if len(values) < 2 {
			continue
		}
		raw, err := values[1].ToString()
		if err != nil {
			q.logger.Warn("valkey queue payload decode failed", "error", err)
			continue
		}
		job, err := decodeJob(raw)
		if err != nil {
			q.logger.Warn("valkey queue dropped malformed job", "error", err)
			continue
		}
		handler(context.WithoutCancel(ctx), job.Name, job.Payload)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

var _ HandlerQueue = (*ValkeyQueue)(nil)
