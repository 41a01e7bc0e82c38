package mlfq

import "github.com/viant/kcore/model/pstat"

// Stats carries the scheduling counters of one member.
type Stats struct {
	Level     int
	Ticks     [pstat.Levels]int
	WaitTicks [pstat.Levels]int
	// SpellTicks and SpellWaitTicks count the current spell at Level.
	SpellTicks     int
	SpellWaitTicks int
}

// NewStats returns zeroed counters at level.
func NewStats(level int) Stats {
	return Stats{Level: level}
}

func (s *Stats) enter(level int) {
	s.Level = level
	s.SpellTicks = 0
	s.SpellWaitTicks = 0
}
