package proc

import (
	"runtime"

	"github.com/viant/kcore/model/pstat"
	"github.com/viant/kcore/service/mlfq"
)

// CPU is an execution unit that dispatches processes from the table.
type CPU struct {
	id   int
	ch   chan struct{}
	proc *Process
}

// NewCPU returns execution unit id.
func NewCPU(id int) *CPU {
	return &CPU{id: id, ch: make(chan struct{})}
}

// ID returns the CPU number.
func (c *CPU) ID() int { return c.id }

// Dispatch runs one scheduling pass on c: it picks the first runnable process
// from level 3 down, ages the other runnable processes, runs the pick for one
// tick, then applies demotion or requeue and the starvation promotion pass.
// It returns false when nothing was runnable.
func (t *Table) Dispatch(c *CPU) bool {
	if t.isHalted() {
		return false
	}
	t.lock()
	defer t.unlock()
	report, ok := t.queues.Dispatch(func(p *Process) { t.run(c, p) })
	if !ok {
		return false
	}
	if report.Outcome == mlfq.Demoted {
		t.emit(pstat.EventDemoted, report.Selected)
	}
	for _, p := range report.Promoted {
		t.emit(pstat.EventPromoted, p)
	}
	return true
}

// run switches from c to p and back. The table lock is held on entry and
// again on return; p releases and reacquires it while it executes.
func (t *Table) run(c *CPU, p *Process) {
	p.state = pstat.Running
	p.cpu = c
	c.proc = p
	if !p.started {
		p.started = true
		go t.start(p)
	}
	select {
	case p.ch <- struct{}{}:
		<-c.ch
	case <-t.halted:
	}
	c.proc = nil
}

// start is the body of a process goroutine.
func (t *Table) start(p *Process) {
	t.park(p)
	// first dispatch: release the lock the CPU acquired
	t.unlock()
	ctx := &Context{table: t, proc: p}
	p.entry(ctx)
	ctx.Exit()
}

// park blocks the calling process goroutine until a CPU switches to it.
func (t *Table) park(p *Process) {
	select {
	case <-p.ch:
	case <-t.halted:
		runtime.Goexit()
	}
}

func (t *Table) checkSched(p *Process) {
	if !t.locked.Load() {
		panic("sched ptable.lock")
	}
	if p.state == pstat.Running {
		panic("sched running")
	}
	if p.cpu == nil {
		panic("sched no cpu")
	}
}

// sched switches from the calling process back to its CPU. The caller holds
// the table lock and has already changed its state.
func (t *Table) sched(p *Process) {
	t.checkSched(p)
	c := p.cpu
	c.ch <- struct{}{}
	t.park(p)
}

// schedExit hands the CPU back for the last time.
func (t *Table) schedExit(p *Process) {
	t.checkSched(p)
	c := p.cpu
	c.ch <- struct{}{}
	runtime.Goexit()
}
