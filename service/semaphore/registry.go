package semaphore

import (
	"fmt"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/viant/kcore/service/proc"
)

// Sleeper is the calling process.
type Sleeper interface {
	Sleep(ch proc.Channel, lk sync.Locker)
	Killed() bool
}

// Waker wakes processes sleeping on a channel.
type Waker interface {
	Wakeup(ch proc.Channel)
}

type semaphore struct {
	mux        sync.Mutex
	count      int
	used       bool
	generation uint64
}

// Registry holds the semaphores. Lock order: registry, semaphore, then the
// process table.
type Registry struct {
	config Config
	waker  Waker
	logger commonlog.Logger
	mux    sync.Mutex
	sems   []*semaphore
}

// Option configures the registry.
type Option func(r *Registry)

// WithLogger sets the logger.
func WithLogger(logger commonlog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// New creates a registry that wakes waiters through waker.
func New(waker Waker, config Config, opts ...Option) (*Registry, error) {
	if waker == nil {
		return nil, fmt.Errorf("semaphore: waker is required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	r := &Registry{
		config: config,
		waker:  waker,
		logger: commonlog.GetLogger("kcore.semaphore"),
		sems:   make([]*semaphore, config.Capacity),
	}
	for _, opt := range opts {
		opt(r)
	}
	for i := range r.sems {
		r.sems[i] = &semaphore{}
	}
	return r, nil
}

// Capacity returns the number of slots.
func (r *Registry) Capacity() int {
	return len(r.sems)
}

// Init allocates a semaphore with count and returns its id.
func (r *Registry) Init(count int) (int, error) {
	if count < 0 {
		return -1, ErrInvalidCount
	}
	r.mux.Lock()
	defer r.mux.Unlock()
	for id, s := range r.sems {
		s.mux.Lock()
		if s.used {
			s.mux.Unlock()
			continue
		}
		s.used = true
		s.count = count
		s.mux.Unlock()
		return id, nil
	}
	r.logger.Warningf("no free semaphore among %d", len(r.sems))
	return -1, ErrRegistryFull
}

func (r *Registry) get(id int) (*semaphore, error) {
	if id < 0 || id >= len(r.sems) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidID, id)
	}
	return r.sems[id], nil
}

// Wait decrements semaphore id, sleeping while its count is not positive.
// It fails when the semaphore is destroyed or the caller killed meanwhile.
func (r *Registry) Wait(caller Sleeper, id int) error {
	s, err := r.get(id)
	if err != nil {
		return err
	}
	s.mux.Lock()
	if !s.used {
		s.mux.Unlock()
		return fmt.Errorf("%w: %d", ErrInvalidID, id)
	}
	generation := s.generation
	for s.count <= 0 {
		if caller.Killed() {
			s.mux.Unlock()
			return ErrKilled
		}
		caller.Sleep(proc.ChanOf(s), &s.mux)
		if s.generation != generation {
			s.mux.Unlock()
			return fmt.Errorf("%w: %d", ErrDestroyed, id)
		}
	}
	s.count--
	s.mux.Unlock()
	return nil
}

// Post increments semaphore id and wakes its waiters.
func (r *Registry) Post(id int) error {
	s, err := r.get(id)
	if err != nil {
		return err
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	if !s.used {
		return fmt.Errorf("%w: %d", ErrInvalidID, id)
	}
	s.count++
	r.waker.Wakeup(proc.ChanOf(s))
	return nil
}

// Destroy frees semaphore id. Processes blocked in Wait are woken and fail
// with ErrDestroyed.
func (r *Registry) Destroy(id int) error {
	s, err := r.get(id)
	if err != nil {
		return err
	}
	r.mux.Lock()
	defer r.mux.Unlock()
	s.mux.Lock()
	defer s.mux.Unlock()
	if !s.used {
		return fmt.Errorf("%w: %d", ErrInvalidID, id)
	}
	s.used = false
	s.count = 0
	s.generation++
	r.waker.Wakeup(proc.ChanOf(s))
	return nil
}

// Value returns the count of semaphore id.
func (r *Registry) Value(id int) (int, error) {
	s, err := r.get(id)
	if err != nil {
		return 0, err
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	if !s.used {
		return 0, fmt.Errorf("%w: %d", ErrInvalidID, id)
	}
	return s.count, nil
}

// InUse returns the number of allocated semaphores.
func (r *Registry) InUse() int {
	r.mux.Lock()
	defer r.mux.Unlock()
	ret := 0
	for _, s := range r.sems {
		s.mux.Lock()
		if s.used {
			ret++
		}
		s.mux.Unlock()
	}
	return ret
}
