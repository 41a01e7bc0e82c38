package kcore

import (
	"context"

	"github.com/tliron/commonlog"
	"github.com/viant/afs"
	"github.com/viant/kcore/internal/idgen"
	"github.com/viant/kcore/model/pstat"
	"github.com/viant/kcore/service/allocator"
	"github.com/viant/kcore/service/event"
	"github.com/viant/kcore/service/messaging/memory"
	"github.com/viant/kcore/service/meta"
	"github.com/viant/kcore/service/proc"
	"github.com/viant/kcore/service/processor"
	"github.com/viant/kcore/service/semaphore"
	"github.com/viant/kcore/service/snapshot"

	_ "github.com/tliron/commonlog/simple"
)

// Service builds a kernel from its configuration.
type Service struct {
	config       *Config
	random       allocator.Random
	eventService *event.Service
	metaService  *meta.Service
	fs           afs.Service
	bootID       string
	runtime      *Runtime
}

// New creates the kernel services. Nothing runs until Runtime.Boot and
// Runtime.Start.
func New(options ...Option) (*Service, error) {
	s := &Service{}
	for _, option := range options {
		option(s)
	}
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if err := s.config.Validate(); err != nil {
		return nil, err
	}
	s.configureLog()
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) configureLog() {
	var path *string
	if s.config.Log.Path != "" {
		path = &s.config.Log.Path
	}
	commonlog.Configure(s.config.Log.Verbosity, path)
}

func (s *Service) init() error {
	if s.fs == nil {
		s.fs = afs.New()
	}
	if s.metaService == nil {
		s.metaService = meta.New(s.fs)
	}
	if s.bootID == "" {
		s.bootID = idgen.New()
	}
	if s.eventService == nil && s.config.Events.Enabled {
		buffer := s.config.Events.QueueBuffer
		s.eventService = event.New(event.WithQueueConfig(func(string) memory.Config {
			config := memory.DefaultConfig()
			config.QueueBuffer = buffer
			return config
		}))
	}

	var allocatorOptions []allocator.Option
	if s.random != nil {
		allocatorOptions = append(allocatorOptions, allocator.WithRandom(s.random))
	}
	pages, err := allocator.New(s.config.Allocator, allocatorOptions...)
	if err != nil {
		return err
	}
	procOptions := []proc.Option{
		proc.WithConfig(s.config.Proc),
		proc.WithPolicy(s.config.Scheduler),
		proc.WithBootID(s.bootID),
	}
	if s.eventService != nil {
		procOptions = append(procOptions, proc.WithPublisher(event.PublisherOf[pstat.Event](s.eventService)))
	}
	table, err := proc.New(pages, procOptions...)
	if err != nil {
		return err
	}
	semaphores, err := semaphore.New(table, s.config.Semaphore)
	if err != nil {
		return err
	}
	cpus, err := processor.New(table, processor.WithConfig(s.config.Processor))
	if err != nil {
		return err
	}
	snapshots, err := snapshot.New(s.fs)
	if err != nil {
		return err
	}
	s.runtime = &Runtime{
		bootID:     s.bootID,
		pages:      pages,
		table:      table,
		semaphores: semaphores,
		processor:  cpus,
		snapshots:  snapshots,
		events:     s.eventService,
		logger:     commonlog.GetLogger("kcore"),
	}
	return nil
}

// Config returns the effective configuration.
func (s *Service) Config() *Config {
	return s.config
}

// Runtime returns the kernel runtime.
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// LoadConfig loads a configuration document through the service's meta
// loader.
func (s *Service) LoadConfig(ctx context.Context, URL string) (*Config, error) {
	return loadConfig(ctx, s.metaService, URL)
}
