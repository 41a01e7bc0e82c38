package processor

import "github.com/tliron/commonlog"

// Option configures the service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithCPUs sets the number of dispatch loops.
func WithCPUs(count int) Option {
	return func(s *Service) {
		s.config.CPUs = count
	}
}

// WithLogger sets the logger.
func WithLogger(logger commonlog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}
