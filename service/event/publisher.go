package event

import (
	"context"

	"github.com/viant/kcore/service/messaging"
)

// Publisher publishes typed events and mirrors them onto the untyped stream.
type Publisher[T any] struct {
	queue    messaging.Queue[Event[T]]
	anyQueue messaging.Queue[Event[any]]
}

// NewPublisher creates a publisher over queue.
func NewPublisher[T any](queue messaging.Queue[Event[T]]) *Publisher[T] {
	return &Publisher[T]{
		queue: queue,
	}
}

// Publish queues event. With a drop-on-full queue it never blocks.
func (p *Publisher[T]) Publish(ctx context.Context, event *Event[T]) error {
	if p.anyQueue != nil {
		_ = p.anyQueue.Publish(ctx, &Event[any]{
			Context:   event.Context,
			CreatedAt: event.CreatedAt,
			Data:      event.Data,
		})
	}
	return p.queue.Publish(ctx, event)
}

// Consume returns the next event, acknowledged.
func (p *Publisher[T]) Consume(ctx context.Context) (*Event[T], error) {
	msg, err := p.queue.Consume(ctx)
	if err != nil || msg == nil {
		return nil, err
	}
	if err = msg.Ack(); err != nil {
		return nil, err
	}
	return msg.T(), nil
}
