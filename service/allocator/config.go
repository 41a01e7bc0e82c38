package allocator

import (
	"fmt"

	"github.com/viant/kcore/internal/xorshift"
	"github.com/viant/kcore/model/mem"
)

// Config represents the managed physical range and history settings.
type Config struct {
	// Base is the first managed physical address (end of the kernel image).
	Base mem.Addr `json:"base" yaml:"base" toml:"base"`
	// Limit is the first address past the managed range (PHYSTOP).
	Limit mem.Addr `json:"limit" yaml:"limit" toml:"limit"`
	// HistorySize bounds the allocation history.
	HistorySize int `json:"historySize" yaml:"historySize" toml:"historySize"`
	// Seed seeds the default page selection generator.
	Seed uint32 `json:"seed" yaml:"seed" toml:"seed"`
	// Sentinel is the byte written over every released page.
	Sentinel byte `json:"sentinel" yaml:"sentinel" toml:"sentinel"`
}

// DefaultConfig returns a 4MiB pool starting at 4MiB, a 512-entry history and
// the boot seed.
func DefaultConfig() Config {
	return Config{
		Base:        0x400000,
		Limit:       0x800000,
		HistorySize: 512,
		Seed:        xorshift.DefaultSeed,
		Sentinel:    0x01,
	}
}

// Pages returns the number of pages in the managed range.
func (c Config) Pages() int {
	return int((c.Limit - c.Base) / mem.PageSize)
}

// Validate checks the managed range.
func (c Config) Validate() error {
	if !c.Base.Aligned() || !c.Limit.Aligned() {
		return fmt.Errorf("allocator: range [%v, %v) must be page aligned", c.Base, c.Limit)
	}
	if c.Base >= c.Limit {
		return fmt.Errorf("allocator: empty range [%v, %v)", c.Base, c.Limit)
	}
	if c.HistorySize <= 0 {
		return fmt.Errorf("allocator: historySize must be > 0")
	}
	return nil
}
