package event

import (
	"time"

	"github.com/viant/kcore/internal/clock"
	"github.com/viant/kcore/internal/idgen"
)

// Context identifies where an event came from.
type Context struct {
	ID        string `json:"id" cbor:"id"`
	BootID    string `json:"bootID" cbor:"bootID"`
	Source    string `json:"source" cbor:"source"`
	EventType string `json:"eventType" cbor:"eventType"`
}

// Event is a typed kernel event.
type Event[T any] struct {
	Context   *Context  `json:"context" cbor:"context"`
	CreatedAt time.Time `json:"createdAt" cbor:"createdAt"`
	Data      T         `json:"data" cbor:"data"`
}

// NewEvent creates an event with a fresh id.
func NewEvent[T any](context *Context, data T) *Event[T] {
	if context == nil {
		context = &Context{}
	}
	if context.ID == "" {
		context.ID = idgen.New()
	}
	return &Event[T]{
		Context:   context,
		CreatedAt: clock.Now(),
		Data:      data,
	}
}
