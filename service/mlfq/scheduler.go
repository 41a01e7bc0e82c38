package mlfq

import "github.com/viant/kcore/model/pstat"

// Member is a schedulable entity.
type Member interface {
	comparable
	Stats() *Stats
	Runnable() bool
}

// Outcome is the bookkeeping applied after a member ran for a tick.
type Outcome int

const (
	// Stayed leaves the member at its queue position.
	Stayed Outcome = iota
	// Requeued moves the member to the tail of its level.
	Requeued
	// Demoted moves the member to the tail of the next lower level.
	Demoted
	// Gone means the member left the queues while running.
	Gone
)

// Report describes one dispatch.
type Report[T Member] struct {
	Selected T
	Outcome  Outcome
	// Level is the level the selected member ran at.
	Level    int
	Promoted []T
}

// Scheduler owns the level queues.
type Scheduler[T Member] struct {
	config Config
	queues [pstat.Levels]*Queue[T]
}

// New creates a scheduler with empty queues.
func New[T Member](config Config) *Scheduler[T] {
	s := &Scheduler[T]{config: config}
	for level := range s.queues {
		s.queues[level] = NewQueue[T]()
	}
	return s
}

// Config returns the scheduling table.
func (s *Scheduler[T]) Config() Config {
	return s.config
}

// Add appends m to the tail of the queue matching its recorded level.
func (s *Scheduler[T]) Add(m T) {
	s.queues[m.Stats().Level].PushBack(m)
}

// Remove takes m out of its queue.
func (s *Scheduler[T]) Remove(m T) bool {
	return s.queues[m.Stats().Level].Remove(m)
}

// Contains reports whether m is queued at its recorded level.
func (s *Scheduler[T]) Contains(m T) bool {
	return s.queues[m.Stats().Level].Contains(m)
}

// Level returns the members of level in queue order.
func (s *Scheduler[T]) Level(level int) []T {
	return s.queues[level].Items()
}

// Each visits every queued member from level 3 down, in queue order.
func (s *Scheduler[T]) Each(fn func(m T) bool) {
	for level := Top; level >= 0; level-- {
		stop := false
		s.queues[level].Each(func(m T) bool {
			if !fn(m) {
				stop = true
			}
			return !stop
		})
		if stop {
			return
		}
	}
}

// Pick returns the first runnable member scanning levels 3 to 0.
func (s *Scheduler[T]) Pick() (T, bool) {
	var ret T
	found := false
	s.Each(func(m T) bool {
		if m.Runnable() {
			ret, found = m, true
			return false
		}
		return true
	})
	return ret, found
}

// Age adds a wait tick to every runnable member other than selected.
func (s *Scheduler[T]) Age(selected T) {
	s.Each(func(m T) bool {
		if m != selected && m.Runnable() {
			stats := m.Stats()
			stats.WaitTicks[stats.Level]++
			stats.SpellWaitTicks++
		}
		return true
	})
}

// Charge records one run tick for m.
func (s *Scheduler[T]) Charge(m T) {
	stats := m.Stats()
	stats.Ticks[stats.Level]++
	stats.SpellTicks++
	stats.SpellWaitTicks = 0
}

// Settle applies demotion or round robin requeue to m after its tick.
func (s *Scheduler[T]) Settle(m T) Outcome {
	stats := m.Stats()
	level := stats.Level
	if !s.queues[level].Contains(m) {
		return Gone
	}
	if level > 0 && stats.SpellTicks >= s.config.TotalQuantum[level] {
		s.move(m, level-1)
		return Demoted
	}
	if stats.SpellTicks%s.config.Slice[level] == 0 {
		s.queues[level].MoveToBack(m)
		return Requeued
	}
	return Stayed
}

func (s *Scheduler[T]) move(m T, level int) {
	stats := m.Stats()
	s.queues[stats.Level].Remove(m)
	stats.enter(level)
	s.queues[level].PushBack(m)
}

// PromoteStarving moves every member whose wait spell reached the starvation
// limit of its level one level up. Members at Top are left in place.
func (s *Scheduler[T]) PromoteStarving() []T {
	var promoted []T
	for level := Top - 1; level >= 0; level-- {
		limit := s.config.StarvationLimit(level)
		for _, m := range s.queues[level].Items() {
			if m.Stats().SpellWaitTicks >= limit {
				s.move(m, level+1)
				promoted = append(promoted, m)
			}
		}
	}
	return promoted
}

// Boost moves m one level up. It returns false when m is already at Top.
func (s *Scheduler[T]) Boost(m T) bool {
	level := m.Stats().Level
	if level >= Top {
		return false
	}
	s.move(m, level+1)
	return true
}

// Dispatch selects the next runnable member, ages the others, charges and
// runs the selected one, then settles it and promotes starving members.
// It returns false when nothing is runnable.
func (s *Scheduler[T]) Dispatch(run func(m T)) (Report[T], bool) {
	m, ok := s.Pick()
	if !ok {
		return Report[T]{}, false
	}
	s.Age(m)
	report := Report[T]{Selected: m, Level: m.Stats().Level}
	s.Charge(m)
	run(m)
	report.Outcome = s.Settle(m)
	report.Promoted = s.PromoteStarving()
	return report, true
}
