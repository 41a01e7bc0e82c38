package event

import (
	"reflect"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/viant/kcore/service/messaging"
	"github.com/viant/kcore/service/messaging/memory"
)

var logger = commonlog.GetLogger("kcore.event")

// Service owns one queue per event payload type plus an untyped stream that
// receives a copy of every event.
type Service struct {
	publisher       *Publisher[any]
	listener        *Listener[any]
	queues          map[string]dropCounter
	typedPublishers map[reflect.Type]any
	typedListener   map[reflect.Type]any
	mux             *sync.RWMutex
	newQueueConfig  func(name string) memory.Config
}

type dropCounter interface {
	Dropped() uint64
}

// New creates an event service.
func New(opts ...Option) *Service {
	ret := &Service{
		queues:          make(map[string]dropCounter),
		typedPublishers: make(map[reflect.Type]any),
		typedListener:   make(map[reflect.Type]any),
		mux:             &sync.RWMutex{},
		newQueueConfig:  func(string) memory.Config { return memory.DefaultConfig() },
	}
	for _, opt := range opts {
		opt(ret)
	}
	ret.publisher = NewPublisher[any](QueueOf[Event[any]](ret, "any"))
	return ret
}

// SetListener consumes the untyped stream.
func (s *Service) SetListener(handler func(*Event[any])) {
	if s.listener != nil {
		s.listener.Stop()
	}
	s.listener = NewListener[any](s.publisher, handler)
	s.listener.Start()
}

// Dropped returns the number of events discarded on full queues.
func (s *Service) Dropped() uint64 {
	s.mux.RLock()
	defer s.mux.RUnlock()
	var ret uint64
	for _, queue := range s.queues {
		ret += queue.Dropped()
	}
	return ret
}

// Close stops every listener.
func (s *Service) Close() {
	if s.listener != nil {
		s.listener.Stop()
	}
	s.mux.Lock()
	listeners := s.typedListener
	s.typedListener = make(map[reflect.Type]any)
	s.mux.Unlock()
	for _, listener := range listeners {
		listener.(interface{ Stop() }).Stop()
	}
}

// QueueOf creates a named memory queue.
func QueueOf[T any](s *Service, name string) messaging.Queue[T] {
	queue := memory.NewQueue[T](s.newQueueConfig(name))
	s.mux.Lock()
	s.queues[name] = queue
	s.mux.Unlock()
	return queue
}

func keyOf[T any]() reflect.Type {
	var t T
	rType := reflect.TypeOf(t)
	if rType.Kind() == reflect.Ptr {
		rType = rType.Elem()
	}
	return rType
}

// SetListenerOf consumes events of type T, replacing any earlier listener.
func SetListenerOf[T any](s *Service, handler func(*Event[T])) {
	key := keyOf[T]()
	s.mux.RLock()
	ret, ok := s.typedListener[key]
	s.mux.RUnlock()
	if ok {
		ret.(*Listener[T]).Stop()
	}
	listener := NewListener[T](PublisherOf[T](s), handler)
	s.mux.Lock()
	s.typedListener[key] = listener
	s.mux.Unlock()
	listener.Start()
}

// PublisherOf returns the publisher for events of type T.
func PublisherOf[T any](s *Service) *Publisher[T] {
	key := keyOf[T]()
	s.mux.RLock()
	ret, ok := s.typedPublishers[key]
	s.mux.RUnlock()
	if ok {
		return ret.(*Publisher[T])
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	if ret, ok = s.typedPublishers[key]; ok {
		return ret.(*Publisher[T])
	}
	queue := memory.NewQueue[Event[T]](s.newQueueConfig(key.String()))
	s.queues[key.String()] = queue
	publisher := NewPublisher[T](queue)
	publisher.anyQueue = s.publisher.queue
	s.typedPublishers[key] = publisher
	return publisher
}
