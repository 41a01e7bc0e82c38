package allocator

import "github.com/tliron/commonlog"

// Option configures the allocator.
type Option func(s *Service)

// WithRandom replaces the page selection generator.
func WithRandom(random Random) Option {
	return func(s *Service) {
		s.random = random
	}
}

// WithLogger sets the logger.
func WithLogger(logger commonlog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}
