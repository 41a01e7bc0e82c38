package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/viant/kcore/internal/clock"
	"github.com/viant/kcore/internal/idgen"
	"github.com/viant/kcore/service/messaging"
)

var errProcessed = errors.New("memory: message already processed")

// Config for the in-memory queue.
type Config struct {
	MaxRetries  int           `json:"maxRetries" yaml:"maxRetries" toml:"maxRetries"`
	RetryDelay  time.Duration `json:"retryDelay" yaml:"retryDelay" toml:"retryDelay"`
	DeadLetter  bool          `json:"deadLetter" yaml:"deadLetter" toml:"deadLetter"`
	QueueBuffer int           `json:"queueBuffer" yaml:"queueBuffer" toml:"queueBuffer"`
	// DropOnFull makes Publish fail with messaging.ErrQueueFull instead of
	// blocking when the buffer is full.
	DropOnFull bool `json:"dropOnFull" yaml:"dropOnFull" toml:"dropOnFull"`
}

// DefaultConfig returns a 1024 message buffer that never blocks publishers.
func DefaultConfig() Config {
	return Config{
		MaxRetries:  3,
		RetryDelay:  100 * time.Millisecond,
		DeadLetter:  true,
		QueueBuffer: 1024,
		DropOnFull:  true,
	}
}

// Message is a queued payload.
type Message[T any] struct {
	id         string
	payload    T
	queue      *Queue[T]
	retryCount int
	mu         sync.Mutex
	processed  bool
	createdAt  time.Time
}

// ID returns the message id.
func (m *Message[T]) ID() string { return m.id }

// CreatedAt returns the time the message was queued.
func (m *Message[T]) CreatedAt() time.Time { return m.createdAt }

// T returns the payload.
func (m *Message[T]) T() *T {
	return &m.payload
}

// Ack marks the message processed.
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return errProcessed
	}
	m.processed = true
	return nil
}

// Nack redelivers the message after RetryDelay until MaxRetries is reached,
// then moves it to the dead letter list when enabled.
func (m *Message[T]) Nack(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return errProcessed
	}
	m.processed = true
	m.retryCount++
	if m.retryCount <= m.queue.config.MaxRetries {
		retry := &Message[T]{
			id:         m.id,
			payload:    m.payload,
			queue:      m.queue,
			retryCount: m.retryCount,
		}
		time.AfterFunc(m.queue.config.RetryDelay, func() {
			retry.createdAt = clock.Now()
			if !m.queue.offer(retry) {
				m.queue.dropped.Add(1)
			}
		})
		return nil
	}
	if m.queue.config.DeadLetter {
		m.queue.dlqMu.Lock()
		m.queue.dlq = append(m.queue.dlq, m)
		m.queue.dlqMu.Unlock()
	}
	return nil
}

// Queue is an in-memory messaging.Queue backed by a buffered channel.
type Queue[T any] struct {
	messages chan *Message[T]
	dlq      []*Message[T]
	config   Config
	dropped  atomic.Uint64
	dlqMu    sync.Mutex
}

// NewQueue creates a queue.
func NewQueue[T any](config Config) *Queue[T] {
	if config.QueueBuffer <= 0 {
		config.QueueBuffer = DefaultConfig().QueueBuffer
	}
	return &Queue[T]{
		messages: make(chan *Message[T], config.QueueBuffer),
		config:   config,
	}
}

// Publish queues a copy of t.
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := &Message[T]{
		id:        idgen.New(),
		payload:   *t,
		queue:     q,
		createdAt: clock.Now(),
	}
	if q.config.DropOnFull {
		if !q.offer(msg) {
			q.dropped.Add(1)
			return messaging.ErrQueueFull
		}
		return nil
	}
	select {
	case q.messages <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue[T]) offer(msg *Message[T]) bool {
	select {
	case q.messages <- msg:
		return true
	default:
		return false
	}
}

// Consume blocks until a message is available or ctx is done.
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	select {
	case msg := <-q.messages:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Size returns the number of queued messages.
func (q *Queue[T]) Size() int {
	return len(q.messages)
}

// Dropped returns the number of messages discarded on a full buffer.
func (q *Queue[T]) Dropped() uint64 {
	return q.dropped.Load()
}

// DLQSize returns the number of dead letters.
func (q *Queue[T]) DLQSize() int {
	q.dlqMu.Lock()
	defer q.dlqMu.Unlock()
	return len(q.dlq)
}

var _ messaging.Queue[any] = (*Queue[any])(nil)
