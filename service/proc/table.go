package proc

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/tliron/commonlog"
	"github.com/viant/kcore/model/mem"
	"github.com/viant/kcore/model/pstat"
	"github.com/viant/kcore/service/event"
	"github.com/viant/kcore/service/fd"
	"github.com/viant/kcore/service/mlfq"
	"github.com/viant/kcore/service/vm"
	"github.com/viant/kcore/tracing"
)

// Publisher receives process table events.
type Publisher interface {
	Publish(ctx context.Context, e *event.Event[pstat.Event]) error
}

// Config represents process table settings.
type Config struct {
	// Capacity is the number of process slots (NPROC).
	Capacity int `json:"capacity" yaml:"capacity" toml:"capacity"`
}

// DefaultConfig returns a 64 slot table.
func DefaultConfig() Config {
	return Config{Capacity: 64}
}

// Validate checks the table settings.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("proc: capacity must be > 0")
	}
	return nil
}

// Table is the process table. One lock guards the slots, the level queues and
// the tick clock.
type Table struct {
	config    Config
	policy    mlfq.Config
	pages     vm.Pages
	publisher Publisher
	ctx       context.Context
	bootID    string
	logger    commonlog.Logger

	mux      sync.Mutex
	locked   atomic.Bool
	locker   *tableLocker
	procs    []*Process
	queues   *mlfq.Scheduler[*Process]
	nextPid  int
	initProc *Process
	ticks    uint64
	halted   chan struct{}
	halt     sync.Once
}

// New creates a process table whose kernel stacks and address spaces are
// drawn from pages.
func New(pages vm.Pages, options ...Option) (*Table, error) {
	t := &Table{
		config:  DefaultConfig(),
		policy:  mlfq.DefaultConfig(),
		pages:   pages,
		ctx:     context.Background(),
		logger:  commonlog.GetLogger("kcore.proc"),
		nextPid: 1,
		halted:  make(chan struct{}),
	}
	for _, opt := range options {
		opt(t)
	}
	if pages == nil {
		return nil, fmt.Errorf("proc: page allocator is required")
	}
	if err := t.config.Validate(); err != nil {
		return nil, err
	}
	if err := t.policy.Validate(); err != nil {
		return nil, err
	}
	t.locker = &tableLocker{table: t}
	t.queues = mlfq.New[*Process](t.policy)
	t.procs = make([]*Process, t.config.Capacity)
	for i := range t.procs {
		t.procs[i] = &Process{slot: i}
	}
	return t, nil
}

func (t *Table) lock() {
	t.mux.Lock()
	t.locked.Store(true)
}

func (t *Table) unlock() {
	t.locked.Store(false)
	t.mux.Unlock()
}

type tableLocker struct {
	table *Table
}

func (l *tableLocker) Lock()   { l.table.lock() }
func (l *tableLocker) Unlock() { l.table.unlock() }

// Locker returns the table lock for use with Context.Sleep.
func (t *Table) Locker() sync.Locker {
	return t.locker
}

// Policy returns the scheduling table.
func (t *Table) Policy() mlfq.Config {
	return t.policy
}

// allocProc claims an unused slot and a kernel stack. The slot is Embryo on
// return and not yet queued.
func (t *Table) allocProc(name string) (*Process, error) {
	t.lock()
	var p *Process
	for _, candidate := range t.procs {
		if candidate.state == pstat.Unused {
			p = candidate
			break
		}
	}
	if p == nil {
		t.unlock()
		return nil, ErrNoSlot
	}
	p.state = pstat.Embryo
	p.pid = t.nextPid
	t.nextPid++
	p.name = name
	p.ch = make(chan struct{})
	t.unlock()

	kstack, ok := t.pages.Acquire()
	if !ok {
		t.lock()
		p.reset()
		t.unlock()
		return nil, ErrNoMemory
	}
	p.kstack = kstack
	return p, nil
}

// freeEmbryo undoes allocProc after a later creation step failed.
func (t *Table) freeEmbryo(p *Process) {
	t.pages.Release(p.kstack)
	t.lock()
	p.reset()
	t.unlock()
}

// enqueue makes an embryo runnable at level; callers hold the table lock.
func (t *Table) enqueue(p *Process, level int) {
	p.stats = mlfq.NewStats(level)
	p.state = pstat.Runnable
	t.queues.Add(p)
	t.emit(pstat.EventCreated, p)
}

// UserInit creates the first process, which becomes the reaper of orphans.
// It owns one zeroed user page, a root working directory and the console on
// descriptors 0, 1 and 2.
func (t *Table) UserInit(name string, entry Entry) (pid int, err error) {
	_, span := tracing.StartSpan(t.ctx, "proc.UserInit", "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()
	t.lock()
	exists := t.initProc != nil
	t.unlock()
	if exists {
		return 0, fmt.Errorf("proc: init process already created")
	}
	p, err := t.allocProc(name)
	if err != nil {
		return 0, err
	}
	space := vm.New(t.pages)
	if _, err = space.Grow(mem.PageSize); err != nil {
		space.Release()
		t.freeEmbryo(p)
		return 0, ErrNoMemory
	}
	p.space = space
	p.cwd = fd.NewInode("/")
	console := fd.Open("console", fd.Read|fd.Write)
	p.files[0] = console
	p.files[1] = console.Dup()
	p.files[2] = console.Dup()
	p.entry = entry

	t.lock()
	t.initProc = p
	t.enqueue(p, mlfq.Top)
	pid = p.pid
	t.unlock()
	t.logger.Infof("init process %q started as pid %d", name, pid)
	return pid, nil
}

// Spawn creates a kernel initiated child of the reaper with its own one page
// address space and the reaper's descriptors.
func (t *Table) Spawn(name string, entry Entry) (pid int, err error) {
	_, span := tracing.StartSpan(t.ctx, "proc.Spawn", "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()
	t.lock()
	parent := t.initProc
	t.unlock()
	if parent == nil {
		return 0, ErrNoInit
	}
	p, err := t.allocProc(name)
	if err != nil {
		return 0, err
	}
	space := vm.New(t.pages)
	if _, err = space.Grow(mem.PageSize); err != nil {
		space.Release()
		t.freeEmbryo(p)
		return 0, ErrNoMemory
	}
	p.space = space
	p.entry = entry
	p.parent = parent

	t.lock()
	p.files = parent.files.Dup()
	p.cwd = parent.cwd.Dup()
	t.enqueue(p, mlfq.Top)
	pid = p.pid
	t.unlock()
	return pid, nil
}

// Kill marks the process killed and wakes it when sleeping. The process exits
// the next time it checks the flag. The init process cannot be killed.
func (t *Table) Kill(pid int) (err error) {
	_, span := tracing.StartSpan(t.ctx, "proc.Kill", "INTERNAL")
	span.WithAttributes(map[string]string{"pid": fmt.Sprint(pid)})
	defer func() { tracing.EndSpan(span, err) }()
	t.lock()
	defer t.unlock()
	for _, p := range t.procs {
		if p.state == pstat.Unused || p.pid != pid {
			continue
		}
		if p == t.initProc {
			return fmt.Errorf("%w: %d", ErrKillInit, pid)
		}
		p.killed = true
		if p.state == pstat.Sleeping {
			p.state = pstat.Runnable
		}
		t.emit(pstat.EventKilled, p)
		return nil
	}
	return fmt.Errorf("%w: %d", ErrNoProcess, pid)
}

// Info returns a snapshot of every queued process, level 3 first, each level
// in queue order.
func (t *Table) Info() []pstat.Info {
	t.lock()
	defer t.unlock()
	var ret []pstat.Info
	t.queues.Each(func(p *Process) bool {
		ret = append(ret, p.info())
		return true
	})
	return ret
}

// Get returns the snapshot of the process holding pid in any state but Unused.
func (t *Table) Get(pid int) (pstat.Info, bool) {
	t.lock()
	defer t.unlock()
	if p := t.lookup(pid); p != nil {
		return p.info(), true
	}
	return pstat.Info{}, false
}

func (t *Table) lookup(pid int) *Process {
	for _, p := range t.procs {
		if p.state != pstat.Unused && p.pid == pid {
			return p
		}
	}
	return nil
}

// FileNum returns the number of open descriptors of pid.
func (t *Table) FileNum(pid int) (int, error) {
	if pid <= 0 {
		return -1, fmt.Errorf("%w: %d", ErrInvalidPid, pid)
	}
	t.lock()
	defer t.unlock()
	p := t.lookup(pid)
	if p == nil {
		return -1, fmt.Errorf("%w: %d", ErrNoProcess, pid)
	}
	return p.files.Count(), nil
}

// Level returns the pids queued at level in queue order.
func (t *Table) Level(level int) []int {
	t.lock()
	defer t.unlock()
	var ret []int
	for _, p := range t.queues.Level(level) {
		ret = append(ret, p.pid)
	}
	return ret
}

// Ticks returns the tick clock.
func (t *Table) Ticks() uint64 {
	t.lock()
	defer t.unlock()
	return t.ticks
}

// Tick advances the clock by one and wakes tick sleepers.
func (t *Table) Tick() {
	t.lock()
	t.ticks++
	t.wakeup(ChanOf(&t.ticks))
	t.unlock()
}

// Halt stops dispatching. Parked process goroutines terminate.
func (t *Table) Halt() {
	t.halt.Do(func() { close(t.halted) })
}

func (t *Table) isHalted() bool {
	select {
	case <-t.halted:
		return true
	default:
		return false
	}
}

// emit publishes a table event; callers hold the table lock.
func (t *Table) emit(eventType pstat.EventType, p *Process) {
	if t.publisher == nil {
		return
	}
	payload := pstat.Event{Type: eventType, Pid: p.pid, Name: p.name, Level: p.stats.Level, Tick: t.ticks}
	evt := event.NewEvent(&event.Context{BootID: t.bootID, Source: "proc", EventType: string(eventType)}, payload)
	if err := t.publisher.Publish(t.ctx, evt); err != nil {
		t.logger.Debugf("dropped %s event for pid %d: %v", eventType, p.pid, err)
	}
}
