package event

import (
	"context"
)

// Listener drains a publisher's queue into a handler on its own goroutine.
type Listener[T any] struct {
	publisher *Publisher[T]
	handler   func(*Event[T])
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewListener creates a stopped listener.
func NewListener[T any](publisher *Publisher[T], handler func(*Event[T])) *Listener[T] {
	ctx, cancel := context.WithCancel(context.Background())
	return &Listener[T]{
		publisher: publisher,
		handler:   handler,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Stop ends the consume loop and waits for it to return.
func (l *Listener[T]) Stop() {
	l.cancel()
	if l.done != nil {
		<-l.done
	}
}

// Start runs the consume loop. A listener is started at most once.
func (l *Listener[T]) Start() {
	l.done = make(chan struct{})
	go func() {
		defer close(l.done)
		for {
			evt, err := l.publisher.Consume(l.ctx)
			if l.ctx.Err() != nil {
				return
			}
			if err != nil {
				logger.Errorf("consume event: %v", err)
				continue
			}
			if evt != nil {
				l.handler(evt)
			}
		}
	}()
}
