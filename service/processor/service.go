package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tliron/commonlog"
	"github.com/viant/kcore/service/proc"
)

// Dispatcher is the process table as seen by a CPU.
type Dispatcher interface {
	Dispatch(c *proc.CPU) bool
	Tick()
}

// Config represents CPU pool settings.
type Config struct {
	// CPUs is the number of dispatch loops.
	CPUs int `json:"cpus" yaml:"cpus" toml:"cpus"`
	// IdleInterval is how long a CPU waits when nothing is runnable.
	IdleInterval time.Duration `json:"idleInterval" yaml:"idleInterval" toml:"idleInterval"`
}

// DefaultConfig returns two CPUs idling for a millisecond.
func DefaultConfig() Config {
	return Config{
		CPUs:         2,
		IdleInterval: time.Millisecond,
	}
}

// Validate checks the settings.
func (c Config) Validate() error {
	if c.CPUs <= 0 {
		return fmt.Errorf("processor: cpus must be > 0")
	}
	if c.IdleInterval < 0 {
		return fmt.Errorf("processor: idle interval must not be negative")
	}
	return nil
}

// Service runs the CPU dispatch loops.
type Service struct {
	config Config
	table  Dispatcher
	logger commonlog.Logger

	mux        sync.Mutex
	started    bool
	workers    []*worker
	workerWg   sync.WaitGroup
	shutdownCh chan struct{}
	shutdown   sync.Once
}

type worker struct {
	cpu      *proc.CPU
	service  *Service
	ctx      context.Context
	cancelFn context.CancelFunc
	runs     uint64
}

// New creates a CPU pool over table.
func New(table Dispatcher, options ...Option) (*Service, error) {
	s := &Service{
		config:     DefaultConfig(),
		table:      table,
		logger:     commonlog.GetLogger("kcore.processor"),
		shutdownCh: make(chan struct{}),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.table == nil {
		return nil, fmt.Errorf("processor: dispatcher is required")
	}
	if err := s.config.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Start launches one loop per CPU.
func (s *Service) Start(ctx context.Context) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.started {
		return fmt.Errorf("processor: already started")
	}
	s.started = true
	for i := 0; i < s.config.CPUs; i++ {
		workerCtx, cancel := context.WithCancel(ctx)
		w := &worker{
			cpu:      proc.NewCPU(i),
			service:  s,
			ctx:      workerCtx,
			cancelFn: cancel,
		}
		s.workers = append(s.workers, w)
		s.workerWg.Add(1)
		go w.run()
	}
	s.logger.Infof("started %d cpus", s.config.CPUs)
	return nil
}

func (w *worker) run() {
	defer w.service.workerWg.Done()
	idle := w.service.config.IdleInterval
	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.service.shutdownCh:
			return
		default:
		}
		ran := w.service.table.Dispatch(w.cpu)
		if w.cpu.ID() == 0 {
			w.service.table.Tick()
		}
		if ran {
			w.runs++
			continue
		}
		if idle == 0 {
			continue
		}
		timer := time.NewTimer(idle)
		select {
		case <-w.ctx.Done():
			timer.Stop()
			return
		case <-w.service.shutdownCh:
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// Shutdown stops the loops and waits for them. A CPU finishes the tick it
// is running first.
func (s *Service) Shutdown() {
	s.shutdown.Do(func() { close(s.shutdownCh) })
	s.mux.Lock()
	workers := s.workers
	s.mux.Unlock()
	for _, w := range workers {
		w.cancelFn()
	}
	s.workerWg.Wait()
	for _, w := range workers {
		s.logger.Debugf("cpu %d dispatched %d times", w.cpu.ID(), w.runs)
	}
}
