package proc

import (
	"sync"

	"github.com/viant/kcore/model/pstat"
)

// Sleep atomically releases lk and suspends the caller on ch; lk is held
// again on return. lk is either the table lock (Table.Locker) or a lock
// acquired before the table lock in the lock order. With an external lock the
// table lock is taken before lk is released, so a Wakeup issued under the
// table lock cannot slip in between. Callers must not release either lock in a
// deferred call: a halted table ends parked goroutines with runtime.Goexit.
func (c *Context) Sleep(ch Channel, lk sync.Locker) {
	t, p := c.table, c.proc
	if lk == nil {
		panic("sleep without lk")
	}
	external := lk != t.Locker()
	if external {
		t.lock()
		lk.Unlock()
	}
	p.channel = ch
	p.state = pstat.Sleeping
	t.sched(p)
	p.channel = Channel{}
	if external {
		t.unlock()
		lk.Lock()
	}
}

// Wakeup makes every process sleeping on ch runnable.
func (t *Table) Wakeup(ch Channel) {
	t.lock()
	t.wakeup(ch)
	t.unlock()
}

// wakeup requires the table lock.
func (t *Table) wakeup(ch Channel) {
	if ch.IsZero() {
		return
	}
	for _, p := range t.procs {
		if p.state == pstat.Sleeping && p.channel == ch {
			p.state = pstat.Runnable
		}
	}
}

// SleepTicks suspends the caller for n ticks of the table clock. It fails
// with ErrKilled when the caller is killed while waiting.
func (c *Context) SleepTicks(n uint64) error {
	t, p := c.table, c.proc
	t.lock()
	start := t.ticks
	for t.ticks-start < n {
		if p.killed {
			t.unlock()
			return ErrKilled
		}
		c.Sleep(ChanOf(&t.ticks), t.Locker())
	}
	t.unlock()
	return nil
}
