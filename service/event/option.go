package event

import (
	"github.com/viant/kcore/service/messaging/memory"
)

// Option configures the event service.
type Option func(s *Service)

// WithQueueConfig sets the memory queue configuration per stream name.
func WithQueueConfig(newConfig func(name string) memory.Config) Option {
	return func(s *Service) {
		s.newQueueConfig = newConfig
	}
}
