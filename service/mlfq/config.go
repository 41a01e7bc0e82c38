package mlfq

import (
	"fmt"

	"github.com/viant/kcore/model/pstat"
)

// Top is the highest priority level; new processes start there.
const Top = pstat.Levels - 1

// Config represents per-level scheduling limits.
type Config struct {
	// TotalQuantum is the run ticks a member may spend at a level before demotion.
	TotalQuantum [pstat.Levels]int `json:"totalQuantum" yaml:"totalQuantum" toml:"totalQuantum"`
	// Slice is the round robin requeue interval per level.
	Slice [pstat.Levels]int `json:"slice" yaml:"slice" toml:"slice"`
	// StarvationFactor multiplies the quantum to get the promotion threshold.
	StarvationFactor int `json:"starvationFactor" yaml:"starvationFactor" toml:"starvationFactor"`
	// InheritLevel places forked children at their parent's level instead of Top.
	InheritLevel bool `json:"inheritLevel" yaml:"inheritLevel" toml:"inheritLevel"`
}

// DefaultConfig returns the boot scheduling table.
func DefaultConfig() Config {
	return Config{
		TotalQuantum:     [pstat.Levels]int{64, 32, 16, 8},
		Slice:            [pstat.Levels]int{64, 4, 2, 1},
		StarvationFactor: 10,
	}
}

// Validate checks that every limit is positive.
func (c Config) Validate() error {
	for level := 0; level < pstat.Levels; level++ {
		if c.TotalQuantum[level] <= 0 {
			return fmt.Errorf("mlfq: totalQuantum[%d] must be > 0", level)
		}
		if c.Slice[level] <= 0 {
			return fmt.Errorf("mlfq: slice[%d] must be > 0", level)
		}
	}
	if c.StarvationFactor <= 0 {
		return fmt.Errorf("mlfq: starvationFactor must be > 0")
	}
	return nil
}

// StarvationLimit returns the wait spell that triggers promotion at level.
func (c Config) StarvationLimit(level int) int {
	return c.StarvationFactor * c.TotalQuantum[level]
}
