// Package queue hands simulation work units from the producer to the workers.
//
// The queue is bounded: a producer that runs ahead of the workers blocks in
// Enqueue instead of dropping units, so every match id is simulated exactly once.
package queue

import (
	"context"
	"sync"

	"github.com/okian/matchsim/internal/domain/model"
	"github.com/okian/matchsim/pkg/metrics"
)

const defaultQueueCapacity = 64

// Unit is the payload type flowing through the queue.
type Unit = model.WorkUnit

// Queue provides blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a unit, waiting for room. It fails with ErrClosed after
	// Close, or with the context error when ctx is done first.
	Enqueue(ctx context.Context, u Unit) error

	// Dequeue returns a channel that will receive units as they become available.
	// The channel will be closed when the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Unit

	// Len returns the current number of queued units.
	Len() int

	// Close stops accepting units. Already queued units are still delivered.
	Close() error
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	units    chan Unit
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.units = make(chan Unit, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)

	return q
}

// Enqueue adds a unit to the queue. Close must not race a blocked Enqueue
// unless ctx is cancelled; the single producer closes after its last send.
func (q *InMemoryQueue) Enqueue(ctx context.Context, u Unit) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrClosed
	}

	select {
	case q.units <- u:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.units))
		return nil
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return ctx.Err()
	}
}

// Dequeue returns a channel that will receive units as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Unit {
	out := make(chan Unit)
	go func() {
		defer close(out)
		for u := range q.units {
			select {
			case out <- u:
				metrics.RecordQueueDequeue()
				metrics.UpdateQueueSize(len(q.units))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued units.
func (q *InMemoryQueue) Len() int {
	size := len(q.units)
	metrics.UpdateQueueSize(size)
	return size
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.units)
	q.closed = true
	return nil
}
