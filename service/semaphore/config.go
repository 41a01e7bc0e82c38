package semaphore

import "fmt"

// Config represents registry settings.
type Config struct {
	Capacity int `json:"capacity" yaml:"capacity" toml:"capacity"`
}

// DefaultConfig returns a 32 slot registry.
func DefaultConfig() Config {
	return Config{Capacity: 32}
}

// Validate checks the settings.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("semaphore: capacity must be > 0")
	}
	return nil
}
