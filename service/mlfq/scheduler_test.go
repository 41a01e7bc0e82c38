package mlfq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type task struct {
	name     string
	stats    Stats
	sleeping bool
}

func (t *task) Stats() *Stats  { return &t.stats }
func (t *task) Runnable() bool { return !t.sleeping }

func newTasks(s *Scheduler[*task], names ...string) []*task {
	var ret []*task
	for _, name := range names {
		t := &task{name: name, stats: NewStats(Top)}
		s.Add(t)
		ret = append(ret, t)
	}
	return ret
}

func names(tasks []*task) []string {
	var ret []string
	for _, t := range tasks {
		ret = append(ret, t.name)
	}
	return ret
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	cfg := DefaultConfig()
	cfg.Slice[2] = 0
	assert.Error(t, cfg.Validate())
	cfg = DefaultConfig()
	cfg.StarvationFactor = 0
	assert.Error(t, cfg.Validate())
	assert.Equal(t, 640, DefaultConfig().StarvationLimit(0))
}

func TestScheduler_DemotionOrder(t *testing.T) {
	s := New[*task](DefaultConfig())
	tasks := newTasks(s, "P0", "P1", "P2", "P3")

	var ran []string
	for i := 0; i < 4*DefaultConfig().TotalQuantum[Top]; i++ {
		report, ok := s.Dispatch(func(t *task) { ran = append(ran, t.name) })
		require.True(t, ok)
		assert.Empty(t, report.Promoted)
	}
	assert.Equal(t, []string{"P0", "P1", "P2", "P3", "P0"}, ran[:5], "slice of 1 at level 3 is round robin")
	assert.Empty(t, s.Level(Top))
	assert.Equal(t, []string{"P0", "P1", "P2", "P3"}, names(s.Level(2)))
	for i, tk := range tasks {
		assert.Equal(t, 2, tk.stats.Level)
		assert.Equal(t, 8, tk.stats.Ticks[Top])
		assert.Equal(t, 0, tk.stats.SpellTicks)
		// demoted members wait at level 2 while the rest finish their quantum
		assert.Equal(t, 3-i, tk.stats.SpellWaitTicks)
	}
}

func TestScheduler_Settle(t *testing.T) {
	cfg := DefaultConfig()
	s := New[*task](cfg)
	tasks := newTasks(s, "A", "B", "C")
	for _, tk := range tasks {
		s.Remove(tk)
		tk.stats.enter(2)
		s.Add(tk)
	}
	require.Equal(t, 2, cfg.Slice[2])
	// slice[2] is 2: A stays at the head for two ticks
	report, ok := s.Dispatch(func(*task) {})
	require.True(t, ok)
	assert.Equal(t, "A", report.Selected.name)
	assert.Equal(t, Stayed, report.Outcome)
	report, _ = s.Dispatch(func(*task) {})
	assert.Equal(t, "A", report.Selected.name)
	assert.Equal(t, Requeued, report.Outcome)
	assert.Equal(t, []string{"B", "C", "A"}, names(s.Level(2)))
	assert.Equal(t, 2, tasks[1].stats.WaitTicks[2])
	assert.Equal(t, 2, tasks[1].stats.SpellWaitTicks)
}

func TestScheduler_SkipsSleeping(t *testing.T) {
	s := New[*task](DefaultConfig())
	tasks := newTasks(s, "A", "B")
	tasks[0].sleeping = true
	report, ok := s.Dispatch(func(*task) {})
	require.True(t, ok)
	assert.Equal(t, "B", report.Selected.name)
	assert.Equal(t, 0, tasks[0].stats.SpellWaitTicks, "sleepers do not age")

	tasks[1].sleeping = true
	_, ok = s.Dispatch(func(*task) {})
	assert.False(t, ok)
}

func TestScheduler_Gone(t *testing.T) {
	s := New[*task](DefaultConfig())
	newTasks(s, "A")
	report, ok := s.Dispatch(func(t *task) { s.Remove(t) })
	require.True(t, ok)
	assert.Equal(t, Gone, report.Outcome)
	_, ok = s.Pick()
	assert.False(t, ok)
}

func TestScheduler_Starvation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TotalQuantum = [4]int{4, 3, 2, 100}
	cfg.Slice = [4]int{1, 1, 1, 1}
	cfg.StarvationFactor = 2
	s := New[*task](cfg)
	tasks := newTasks(s, "hog", "low")
	low := tasks[1]
	s.Remove(low)
	low.stats.enter(0)
	s.Add(low)

	limit := cfg.StarvationLimit(0)
	for i := 1; i < limit; i++ {
		report, ok := s.Dispatch(func(*task) {})
		require.True(t, ok)
		require.Equal(t, "hog", report.Selected.name)
		require.Empty(t, report.Promoted)
		assert.Equal(t, i, low.stats.SpellWaitTicks)
	}
	report, _ := s.Dispatch(func(*task) {})
	assert.Equal(t, "hog", report.Selected.name)
	require.Len(t, report.Promoted, 1)
	assert.Equal(t, "low", report.Promoted[0].name)
	assert.Equal(t, 1, low.stats.Level)
	assert.Equal(t, 0, low.stats.SpellWaitTicks)
	assert.Equal(t, limit, low.stats.WaitTicks[0])
}

func TestScheduler_TopIsNotPromoted(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StarvationFactor = 1
	cfg.TotalQuantum[Top] = 1000
	cfg.Slice[Top] = 1000
	s := New[*task](cfg)
	tasks := newTasks(s, "A", "B")
	for i := 0; i < 20; i++ {
		s.Dispatch(func(*task) {})
	}
	assert.Equal(t, Top, tasks[1].stats.Level)
	assert.Equal(t, 20, tasks[1].stats.SpellWaitTicks)
}

func TestScheduler_Boost(t *testing.T) {
	s := New[*task](DefaultConfig())
	tasks := newTasks(s, "A", "B")
	a := tasks[0]
	assert.False(t, s.Boost(a))

	s.Remove(a)
	a.stats.enter(1)
	a.stats.SpellTicks = 5
	s.Add(a)
	assert.True(t, s.Boost(a))
	assert.Equal(t, 2, a.stats.Level)
	assert.Equal(t, 0, a.stats.SpellTicks)
	assert.True(t, s.Contains(a))
	assert.Equal(t, []string{"A"}, names(s.Level(2)))
}

func TestQueue(t *testing.T) {
	q := NewQueue[string]()
	assert.True(t, q.PushBack("a"))
	assert.True(t, q.PushBack("b"))
	assert.True(t, q.PushBack("c"))
	assert.False(t, q.PushBack("b"))
	assert.True(t, q.Remove("b"))
	assert.False(t, q.Remove("b"))
	assert.Equal(t, []string{"a", "c"}, q.Items())
	assert.True(t, q.MoveToBack("a"))
	assert.Equal(t, []string{"c", "a"}, q.Items())
	assert.False(t, q.MoveToBack("x"))
	assert.Equal(t, 2, q.Len())
	assert.True(t, q.Contains("c"))
}
