package amqp

import (
	"context"

	"fintrack/internal/log"
	"fintrack/internal/store"
	"fintrack/internal/worker"
)

// Publisher sends change messages. *Client implements it.
type Publisher interface {
	PublishChange(ctx context.Context, msg *ChangeMessage) error
	Close() error
}

// Notifier turns store changes into broker messages. Notify only queues;
// publishing happens in dispatch order on a background goroutine.
type Notifier struct {
	publisher Publisher
	queue     *worker.Queue[*ChangeMessage]
	onPublish func(error)
}

// NotifierOption configures a Notifier.
type NotifierOption func(*Notifier)

// WithPublishHook observes the outcome of every publish.
func WithPublishHook(fn func(error)) NotifierOption {
	return func(n *Notifier) { n.onPublish = fn }
}

func NewNotifier(p Publisher, logger *log.Logger, opts ...NotifierOption) *Notifier {
	n := &Notifier{publisher: p}
	for _, opt := range opts {
		opt(n)
	}
	if logger == nil {
		logger = log.Discard()
	}
	n.queue = worker.NewQueue("amqp", n.publish, logger.WithComponent(log.ComponentAMQP))
	return n
}

// Notify matches the store.Subscribe callback signature.
func (n *Notifier) Notify(c store.Change) {
	n.queue.Push(NewChangeMessage(c))
}

func (n *Notifier) publish(ctx context.Context, msg *ChangeMessage) error {
	err := n.publisher.PublishChange(ctx, msg)
	if n.onPublish != nil {
		n.onPublish(err)
	}
	return err
}

// Flush waits until every queued message has been attempted.
func (n *Notifier) Flush() { n.queue.Flush() }

// Close drains queued messages and closes the publisher.
func (n *Notifier) Close() error {
	n.queue.Close()
	return n.publisher.Close()
}
