package queue

import (
	"context"
	"sync"
)

// ImmediateQueue runs the handler in a goroutine on enqueue.
type ImmediateQueue struct {
	mu      sync.RWMutex
	handler Handler
	wg      sync.WaitGroup
}

// NewImmediateQueue constructs the queue.
func NewImmediateQueue(handler Handler) *ImmediateQueue {
	return &ImmediateQueue{handler: handler}
}

// SetHandler replaces the handler used for queued jobs.
func (q *ImmediateQueue) SetHandler(handler Handler) {
	q.mu.Lock()
	q.handler = handler
	q.mu.Unlock()
}

// Enqueue invokes the handler asynchronously. The job outlives the caller's context.
func (q *ImmediateQueue) Enqueue(ctx context.Context, name string, payload any) error {
	q.mu.RLock()
	handler := q.handler
	q.mu.RUnlock()
	if handler == nil {
		return nil
	}
	jobCtx := context.WithoutCancel(ctx)
	typed := toPayload(payload)
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		handler(jobCtx, name, typed)
	}()
	return nil
}

// Close waits for in-flight jobs.
func (q *ImmediateQueue) Close() {
	q.wg.Wait()
}

var _ HandlerQueue = (*ImmediateQueue)(nil)
