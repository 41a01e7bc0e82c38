package messaging

import (
	"context"
	"errors"
)

// ErrQueueFull is returned by queues that drop instead of blocking.
var ErrQueueFull = errors.New("messaging: queue full")

// Queue carries payloads of type T between a producer and its consumers.
type Queue[T any] interface {
	// Publish adds a message with payload t.
	Publish(ctx context.Context, t *T) error

	// Consume retrieves a single message, blocking until one is available.
	Consume(ctx context.Context) (Message[T], error)
}

// Message is a payload retrieved from a queue.
type Message[T any] interface {
	// T returns the payload.
	T() *T

	// Ack marks the message processed.
	Ack() error

	// Nack marks the message failed; the queue may redeliver it.
	Nack(err error) error
}
