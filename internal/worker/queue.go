// Package worker runs side effects off the caller's path. A Queue accepts
// items without blocking and hands them to a single goroutine in the order
// they were pushed.
package worker

import (
	"context"
	"fmt"
	"sync"

	"fintrack/internal/log"
)

// Handler processes one item. Errors are logged and the queue moves on.
type Handler[T any] func(ctx context.Context, item T) error

// Queue is an unbounded FIFO drained by one goroutine.
type Queue[T any] struct {
	name    string
	handle  Handler[T]
	logger  *log.Logger
	onError func(error)

	mu     sync.Mutex
	cond   *sync.Cond
	items  []T
	busy   bool
	closed bool

	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// Option configures a Queue.
type Option func(*queueOptions)

type queueOptions struct {
	onError func(error)
}

// WithErrorHook is called after a handler error has been logged.
func WithErrorHook(fn func(error)) Option {
	return func(o *queueOptions) { o.onError = fn }
}

// NewQueue starts the draining goroutine. Close must be called to stop it.
func NewQueue[T any](name string, handle Handler[T], logger *log.Logger, opts ...Option) *Queue[T] {
	var o queueOptions
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = log.Discard()
	}
	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue[T]{
		name:    name,
		handle:  handle,
		logger:  logger.WithComponent(log.ComponentWorker).With(log.FieldQueue, name),
		onError: o.onError,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)
	go q.run()
	return q
}

// Push enqueues item. It never blocks and reports false once the queue is closed.
func (q *Queue[T]) Push(item T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.items = append(q.items, item)
	q.cond.Broadcast()
	return true
}

// Len returns the number of items waiting, excluding one in flight.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Flush blocks until every pushed item has been handled.
func (q *Queue[T]) Flush() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) > 0 || q.busy {
		q.cond.Wait()
	}
}

// Close stops accepting items, drains what is queued, and waits for the
// goroutine to exit.
func (q *Queue[T]) Close() {
	q.closeOnce.Do(func() {
		q.mu.Lock()
		q.closed = true
		q.cond.Broadcast()
		q.mu.Unlock()
		<-q.done
		q.cancel()
	})
}

func (q *Queue[T]) run() {
	defer close(q.done)
	for {
		q.mu.Lock()
		for len(q.items) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.items) == 0 {
			q.mu.Unlock()
			return
		}
		item := q.items[0]
		var zero T
		q.items[0] = zero
		q.items = q.items[1:]
		q.busy = true
		q.mu.Unlock()

		if err := q.safeHandle(item); err != nil {
			q.logger.Error("Queue handler failed", log.FieldError, err.Error())
			if q.onError != nil {
				q.onError(err)
			}
		}

		q.mu.Lock()
		q.busy = false
		q.cond.Broadcast()
		q.mu.Unlock()
	}
}

func (q *Queue[T]) safeHandle(item T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s handler panicked: %v", q.name, r)
		}
	}()
	return q.handle(q.ctx, item)
}
