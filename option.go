package kcore

import (
	"github.com/viant/afs"
	"github.com/viant/kcore/service/allocator"
	"github.com/viant/kcore/service/event"
	"github.com/viant/kcore/service/meta"
	"github.com/viant/kcore/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option configures the kernel service.
type Option func(s *Service)

// WithConfig sets the kernel configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithRandom sets the random source of the page allocator.
func WithRandom(random allocator.Random) Option {
	return func(s *Service) {
		s.random = random
	}
}

// WithEventService sets the event service lifecycle events are published on.
// It enables publishing regardless of Config.Events.
func WithEventService(service *event.Service) Option {
	return func(s *Service) {
		s.eventService = service
	}
}

// WithMetaService sets the configuration loader.
func WithMetaService(service *meta.Service) Option {
	return func(s *Service) {
		s.metaService = service
	}
}

// WithFileSystem sets the storage used for snapshots and configuration.
func WithFileSystem(fs afs.Service) Option {
	return func(s *Service) {
		s.fs = fs
	}
}

// WithBootID sets the boot session identifier.
func WithBootID(bootID string) Option {
	return func(s *Service) {
		s.bootID = bootID
	}
}

// WithTracing configures OpenTelemetry tracing with the stdout exporter, or
// a file when outputFile is set. A later call replaces the earlier exporter.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing with exporter.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
