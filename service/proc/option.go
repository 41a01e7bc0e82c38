package proc

import (
	"context"

	"github.com/tliron/commonlog"
	"github.com/viant/kcore/service/mlfq"
)

// Option configures the process table.
type Option func(t *Table)

// WithConfig sets the table settings.
func WithConfig(config Config) Option {
	return func(t *Table) {
		t.config = config
	}
}

// WithCapacity sets the number of process slots.
func WithCapacity(capacity int) Option {
	return func(t *Table) {
		t.config.Capacity = capacity
	}
}

// WithPolicy sets the scheduling table.
func WithPolicy(policy mlfq.Config) Option {
	return func(t *Table) {
		t.policy = policy
	}
}

// WithPublisher sets the event publisher.
func WithPublisher(publisher Publisher) Option {
	return func(t *Table) {
		t.publisher = publisher
	}
}

// WithContext sets the context used for tracing and publishing.
func WithContext(ctx context.Context) Option {
	return func(t *Table) {
		t.ctx = ctx
	}
}

// WithBootID tags published events with the boot session.
func WithBootID(bootID string) Option {
	return func(t *Table) {
		t.bootID = bootID
	}
}

// WithLogger sets the logger.
func WithLogger(logger commonlog.Logger) Option {
	return func(t *Table) {
		t.logger = logger
	}
}
