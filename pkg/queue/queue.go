package queue

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned when pushing to a closed queue.
var ErrClosed = errors.New("queue closed")

// ErrFull is returned by TryPush when the queue is at capacity.
var ErrFull = errors.New("queue full")

// Queue is a bounded FIFO hand-off between pipeline stages. Push applies
// backpressure when the queue is full; Close is the only cancellation
// signal a consuming loop observes: Pop drains remaining items and then
// reports closed.
type Queue[T any] struct {
	ch   chan T
	done chan struct{}
	once sync.Once
}

// New creates a queue with the given capacity (minimum 1).
func New[T any](capacity int) *Queue[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue[T]{
		ch:   make(chan T, capacity),
		done: make(chan struct{}),
	}
}

// Push enqueues item, blocking while the queue is full.
func (q *Queue[T]) Push(ctx context.Context, item T) error {
	select {
	case <-q.done:
		return ErrClosed
	default:
	}

	select {
	case q.ch <- item:
		return nil
	case <-q.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryPush enqueues item without blocking.
func (q *Queue[T]) TryPush(item T) error {
	select {
	case <-q.done:
		return ErrClosed
	default:
	}

	select {
	case q.ch <- item:
		return nil
	default:
		return ErrFull
	}
}

// Pop dequeues the next item, blocking until one is available. ok is false
// once the queue is closed and drained, or when ctx is cancelled.
func (q *Queue[T]) Pop(ctx context.Context) (item T, ok bool) {
	var zero T

	select {
	case item = <-q.ch:
		return item, true
	case <-q.done:
		// drain whatever was queued before the close
		select {
		case item = <-q.ch:
			return item, true
		default:
			return zero, false
		}
	case <-ctx.Done():
		return zero, false
	}
}

// Close marks the queue closed. Items already queued remain poppable.
// Safe to call more than once.
func (q *Queue[T]) Close() {
	q.once.Do(func() { close(q.done) })
}

// Closed reports whether Close has been called.
func (q *Queue[T]) Closed() bool {
	select {
	case <-q.done:
		return true
	default:
		return false
	}
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	return len(q.ch)
}

// Cap returns the queue capacity.
func (q *Queue[T]) Cap() int {
	return cap(q.ch)
}
