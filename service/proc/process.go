package proc

import (
	"github.com/viant/kcore/model/mem"
	"github.com/viant/kcore/model/pstat"
	"github.com/viant/kcore/service/fd"
	"github.com/viant/kcore/service/mlfq"
	"github.com/viant/kcore/service/vm"
)

// Entry is the code a process runs once it is first dispatched. Returning
// from it exits the process.
type Entry func(ctx *Context)

// TrapFrame holds the user registers saved on kernel entry.
type TrapFrame struct {
	EAX uint32
	ESP uint32
	EBP uint32
}

// Process is one slot of the process table.
type Process struct {
	slot    int
	pid     int
	name    string
	state   pstat.State
	stats   mlfq.Stats
	space   *vm.Space
	kstack  mem.Addr
	channel Channel
	killed  bool
	parent  *Process
	files   fd.Table
	cwd     *fd.Inode
	tf      TrapFrame
	ustack  mem.Addr
	entry   Entry

	started bool
	ch      chan struct{}
	cpu     *CPU
}

// Stats returns the scheduling counters; callers hold the table lock.
func (p *Process) Stats() *mlfq.Stats { return &p.stats }

// Runnable reports whether the process may be dispatched.
func (p *Process) Runnable() bool { return p.state == pstat.Runnable }

func (p *Process) info() pstat.Info {
	return pstat.Info{
		Pid:       p.pid,
		Name:      p.name,
		State:     p.state,
		Level:     p.stats.Level,
		Ticks:     p.stats.Ticks,
		WaitTicks: p.stats.WaitTicks,
	}
}

func (p *Process) reset() {
	*p = Process{slot: p.slot}
}
