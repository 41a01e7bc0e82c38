package kcore

import (
	"context"
	"fmt"

	"github.com/viant/kcore/service/allocator"
	"github.com/viant/kcore/service/meta"
	"github.com/viant/kcore/service/mlfq"
	"github.com/viant/kcore/service/proc"
	"github.com/viant/kcore/service/processor"
	"github.com/viant/kcore/service/semaphore"
)

// Config is the serialisable kernel configuration. It can be loaded from
// YAML, TOML or JSON with LoadConfig; omitted sections keep their defaults.
type Config struct {
	Allocator allocator.Config `json:"allocator" yaml:"allocator" toml:"allocator"`
	Proc      proc.Config      `json:"proc" yaml:"proc" toml:"proc"`
	Scheduler mlfq.Config      `json:"scheduler" yaml:"scheduler" toml:"scheduler"`
	Semaphore semaphore.Config `json:"semaphore" yaml:"semaphore" toml:"semaphore"`
	Processor processor.Config `json:"processor" yaml:"processor" toml:"processor"`
	Events    EventsConfig     `json:"events" yaml:"events" toml:"events"`
	Log       LogConfig        `json:"log" yaml:"log" toml:"log"`
}

// EventsConfig controls lifecycle event publishing.
type EventsConfig struct {
	Enabled     bool `json:"enabled" yaml:"enabled" toml:"enabled"`
	QueueBuffer int  `json:"queueBuffer" yaml:"queueBuffer" toml:"queueBuffer"`
}

// LogConfig controls the commonlog backend. Verbosity 0 keeps only errors;
// an empty Path logs to stderr.
type LogConfig struct {
	Verbosity int    `json:"verbosity" yaml:"verbosity" toml:"verbosity"`
	Path      string `json:"path" yaml:"path" toml:"path"`
}

// DefaultConfig returns the package defaults of every service.
func DefaultConfig() *Config {
	return &Config{
		Allocator: allocator.DefaultConfig(),
		Proc:      proc.DefaultConfig(),
		Scheduler: mlfq.DefaultConfig(),
		Semaphore: semaphore.DefaultConfig(),
		Processor: processor.DefaultConfig(),
		Events:    EventsConfig{QueueBuffer: 1024},
		Log:       LogConfig{Verbosity: 1},
	}
}

// Validate returns the first invalid setting.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("kcore: config is nil")
	}
	if err := c.Allocator.Validate(); err != nil {
		return err
	}
	if err := c.Proc.Validate(); err != nil {
		return err
	}
	if err := c.Scheduler.Validate(); err != nil {
		return err
	}
	if err := c.Semaphore.Validate(); err != nil {
		return err
	}
	if err := c.Processor.Validate(); err != nil {
		return err
	}
	if c.Events.Enabled && c.Events.QueueBuffer <= 0 {
		return fmt.Errorf("kcore: events.queueBuffer must be > 0")
	}
	return nil
}

// LoadConfig loads the document at URL over the defaults.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	return loadConfig(ctx, meta.New(nil), URL)
}

func loadConfig(ctx context.Context, metaService *meta.Service, URL string) (*Config, error) {
	ret := DefaultConfig()
	if err := metaService.Load(ctx, URL, ret); err != nil {
		return nil, err
	}
	if err := ret.Validate(); err != nil {
		return nil, fmt.Errorf("kcore: invalid config %s: %w", URL, err)
	}
	return ret, nil
}
