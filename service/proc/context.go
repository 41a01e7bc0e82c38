package proc

import (
	"errors"
	"fmt"

	"github.com/viant/kcore/model/mem"
	"github.com/viant/kcore/model/pstat"
	"github.com/viant/kcore/service/fd"
	"github.com/viant/kcore/service/mlfq"
	"github.com/viant/kcore/service/vm"
	"github.com/viant/kcore/tracing"
)

// Context is the system call surface of a running process. It is only valid
// on the goroutine of the process it was created for.
type Context struct {
	table *Table
	proc  *Process
}

// Pid returns the caller's pid.
func (c *Context) Pid() int { return c.proc.pid }

// Name returns the caller's name.
func (c *Context) Name() string { return c.proc.name }

// TrapFrame returns the caller's saved registers. A forked child sees EAX 0.
func (c *Context) TrapFrame() TrapFrame { return c.proc.tf }

// Table returns the process table the caller lives in.
func (c *Context) Table() *Table { return c.table }

// Killed reports whether the caller has been killed.
func (c *Context) Killed() bool {
	c.table.lock()
	defer c.table.unlock()
	return c.proc.killed
}

// Yield gives up the CPU for the rest of the tick.
func (c *Context) Yield() {
	t, p := c.table, c.proc
	t.lock()
	p.state = pstat.Runnable
	t.sched(p)
	t.unlock()
}

// Tick ends the caller's scheduling tick, as the timer interrupt would. A
// killed caller exits instead of returning.
func (c *Context) Tick() {
	if c.Killed() {
		c.Exit()
	}
	c.Yield()
	if c.Killed() {
		c.Exit()
	}
}

// Exit terminates the caller. Open descriptors are closed, children are given
// to the reaper and the parent is woken. Exit does not return.
func (c *Context) Exit() {
	t, p := c.table, c.proc
	t.lock()
	if p == t.initProc {
		t.unlock()
		panic("init exiting")
	}
	p.files.CloseAll()
	if p.cwd != nil {
		p.cwd.Put()
		p.cwd = nil
	}
	t.wakeup(ChanOf(p.parent))
	for _, child := range t.procs {
		if child.parent != p || child.state == pstat.Unused {
			continue
		}
		child.parent = t.initProc
		if child.state == pstat.Zombie {
			t.wakeup(ChanOf(t.initProc))
		}
	}
	p.state = pstat.Zombie
	t.queues.Remove(p)
	t.emit(pstat.EventExited, p)
	t.schedExit(p)
}

// Kill kills the process holding pid.
func (c *Context) Kill(pid int) error {
	return c.table.Kill(pid)
}

// Fork creates a child with a copy of the caller's address space and
// descriptors. The child runs entry and observes EAX 0 in its trap frame.
func (c *Context) Fork(entry Entry) (pid int, err error) {
	t, p := c.table, c.proc
	_, span := tracing.StartSpan(t.ctx, "proc.Fork", "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()
	np, err := t.allocProc(p.name)
	if err != nil {
		return -1, err
	}
	space, err := p.space.Copy()
	if err != nil {
		t.freeEmbryo(np)
		return -1, fmt.Errorf("%w: %v", ErrNoMemory, err)
	}
	np.space = space
	np.parent = p
	np.tf = p.tf
	np.tf.EAX = 0
	np.entry = entry

	t.lock()
	np.files = p.files.Dup()
	np.cwd = p.cwd.Dup()
	level := mlfq.Top
	if t.policy.InheritLevel {
		level = p.stats.Level
	}
	t.enqueue(np, level)
	pid = np.pid
	t.unlock()
	return pid, nil
}

// Clone creates a thread sharing the caller's address space. The thread
// starts in fn on the one page stack at stack, which holds arg2, arg1 and a
// fake return address from the top down.
func (c *Context) Clone(fn Entry, arg1, arg2 uint32, stack mem.Addr) (pid int, err error) {
	t, p := c.table, c.proc
	_, span := tracing.StartSpan(t.ctx, "proc.Clone", "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()
	if !stack.Aligned() || p.space.Size() < stack+mem.PageSize {
		return -1, fmt.Errorf("%w: %v", ErrBadStack, stack)
	}
	np, err := t.allocProc(p.name)
	if err != nil {
		return -1, err
	}
	sp := stack + mem.PageSize
	words := []uint32{arg2, arg1, 0xffffffff}
	for _, word := range words {
		sp -= 4
		if err = p.space.WriteUint32(sp, word); err != nil {
			t.freeEmbryo(np)
			return -1, fmt.Errorf("%w: %v", ErrBadStack, err)
		}
	}
	np.space = p.space.Share()
	np.parent = p
	np.tf = p.tf
	np.tf.ESP = uint32(sp)
	np.tf.EBP = 0
	np.ustack = stack
	np.entry = fn

	t.lock()
	np.files = p.files.Dup()
	np.cwd = p.cwd.Dup()
	t.enqueue(np, mlfq.Top)
	pid = np.pid
	t.unlock()
	return pid, nil
}

// Args returns the two thread arguments from the caller's stack.
func (c *Context) Args() (arg1, arg2 uint32, err error) {
	esp := mem.Addr(c.proc.tf.ESP)
	if arg1, err = c.proc.space.ReadUint32(esp + 4); err != nil {
		return 0, 0, err
	}
	if arg2, err = c.proc.space.ReadUint32(esp + 8); err != nil {
		return 0, 0, err
	}
	return arg1, arg2, nil
}

// Wait reaps a zombie child and returns its pid, blocking while children are
// alive.
func (c *Context) Wait() (pid int, err error) {
	_, span := tracing.StartSpan(c.table.ctx, "proc.Wait", "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()
	pid, _, err = c.reap(false)
	return pid, err
}

// Join reaps a zombie thread of the caller and returns its pid and the stack
// it was cloned with.
func (c *Context) Join() (pid int, stack mem.Addr, err error) {
	_, span := tracing.StartSpan(c.table.ctx, "proc.Join", "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()
	return c.reap(true)
}

func (c *Context) reap(threads bool) (int, mem.Addr, error) {
	t, p := c.table, c.proc
	t.lock()
	for {
		haveKids := false
		for _, child := range t.procs {
			if child.parent != p || child.state == pstat.Unused {
				continue
			}
			if threads && child.space != p.space {
				continue
			}
			haveKids = true
			if child.state != pstat.Zombie {
				continue
			}
			pid, stack := child.pid, child.ustack
			t.pages.Release(child.kstack)
			child.space.Release()
			t.emit(pstat.EventReaped, child)
			child.reset()
			t.unlock()
			return pid, stack, nil
		}
		if !haveKids {
			t.unlock()
			return -1, 0, ErrNoChildren
		}
		if p.killed {
			t.unlock()
			return -1, 0, ErrKilled
		}
		c.Sleep(ChanOf(p), t.Locker())
	}
}

// Boost moves the caller one scheduling level up.
func (c *Context) Boost() bool {
	t, p := c.table, c.proc
	t.lock()
	defer t.unlock()
	if !t.queues.Boost(p) {
		return false
	}
	t.emit(pstat.EventBoosted, p)
	return true
}

// Level returns the caller's scheduling level.
func (c *Context) Level() int {
	c.table.lock()
	defer c.table.unlock()
	return c.proc.stats.Level
}

// Protect write-protects pages pages of the caller's memory starting at addr.
func (c *Context) Protect(addr mem.Addr, pages int) error {
	return c.proc.space.Protect(addr, pages)
}

// Unprotect makes pages pages starting at addr writable again.
func (c *Context) Unprotect(addr mem.Addr, pages int) error {
	return c.proc.space.Unprotect(addr, pages)
}

// Grow changes the caller's memory size by n bytes and returns the old size.
func (c *Context) Grow(n int) (mem.Addr, error) {
	return c.proc.space.Grow(n)
}

// Store writes a word of user memory. A faulting store kills the caller.
func (c *Context) Store(va mem.Addr, v uint32) error {
	return c.fault(va, c.proc.space.WriteUint32(va, v))
}

// Load reads a word of user memory. A faulting load kills the caller.
func (c *Context) Load(va mem.Addr) (uint32, error) {
	v, err := c.proc.space.ReadUint32(va)
	return v, c.fault(va, err)
}

func (c *Context) fault(va mem.Addr, err error) error {
	if err == nil || !errors.Is(err, vm.ErrPageFault) {
		return err
	}
	t, p := c.table, c.proc
	t.logger.Warningf("pid %d %s: trap 14 addr %v--kill proc", p.pid, p.name, va)
	t.lock()
	p.killed = true
	t.unlock()
	return err
}

// Open opens name on the lowest free descriptor.
func (c *Context) Open(name string, perms int) (int, error) {
	t := c.table
	t.lock()
	defer t.unlock()
	return c.proc.files.Insert(fd.Open(name, perms))
}

// Dup duplicates descriptor n onto the lowest free descriptor.
func (c *Context) Dup(n int) (int, error) {
	t := c.table
	t.lock()
	defer t.unlock()
	if n < 0 || n >= fd.NOFILE || c.proc.files[n] == nil {
		return -1, fmt.Errorf("%w: %d", fd.ErrBadDescriptor, n)
	}
	f := c.proc.files[n].Dup()
	ret, err := c.proc.files.Insert(f)
	if err != nil {
		f.Close()
	}
	return ret, err
}

// Close closes descriptor n.
func (c *Context) Close(n int) error {
	t := c.table
	t.lock()
	defer t.unlock()
	f, err := c.proc.files.Remove(n)
	if err != nil {
		return err
	}
	f.Close()
	return nil
}
