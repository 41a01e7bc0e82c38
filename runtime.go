package kcore

import (
	"context"
	"errors"
	"fmt"

	"github.com/tliron/commonlog"
	"github.com/viant/kcore/internal/clock"
	"github.com/viant/kcore/model/mem"
	"github.com/viant/kcore/model/pstat"
	"github.com/viant/kcore/service/allocator"
	"github.com/viant/kcore/service/event"
	"github.com/viant/kcore/service/proc"
	"github.com/viant/kcore/service/processor"
	"github.com/viant/kcore/service/semaphore"
	"github.com/viant/kcore/service/snapshot"
	"github.com/viant/kcore/tracing"
)

// ErrNotBooted is returned by operations that need the init process.
var ErrNotBooted = errors.New("kcore: not booted")

// Runtime is a running kernel.
type Runtime struct {
	bootID     string
	pages      *allocator.Service
	table      *proc.Table
	semaphores *semaphore.Registry
	processor  *processor.Service
	snapshots  *snapshot.Service
	events     *event.Service
	logger     commonlog.Logger
	initPid    int
}

// BootID returns the boot session identifier.
func (r *Runtime) BootID() string {
	return r.bootID
}

// Boot creates the init process running entry, usually proc.Reaper.
func (r *Runtime) Boot(ctx context.Context, name string, entry proc.Entry) (pid int, err error) {
	_, span := tracing.StartSpan(ctx, "kcore.Boot", "INTERNAL")
	span.WithAttributes(map[string]string{"boot.id": r.bootID})
	defer func() { tracing.EndSpan(span, err) }()
	if pid, err = r.table.UserInit(name, entry); err != nil {
		return 0, err
	}
	r.initPid = pid
	if msg := commonlog.NewInfoMessage(0, "kcore"); msg != nil {
		msg.Set("message", "booted").Set("boot", r.bootID).Set("pages", r.pages.Capacity()).Send()
	}
	return pid, nil
}

// Spawn creates a child of init running entry.
func (r *Runtime) Spawn(name string, entry proc.Entry) (int, error) {
	if r.initPid == 0 {
		return 0, ErrNotBooted
	}
	return r.table.Spawn(name, entry)
}

// Start runs the CPU loops.
func (r *Runtime) Start(ctx context.Context) error {
	if r.initPid == 0 {
		return ErrNotBooted
	}
	return r.processor.Start(ctx)
}

// Shutdown stops the CPUs and halts the table. Processes that have not
// exited are abandoned.
func (r *Runtime) Shutdown(ctx context.Context) error {
	r.processor.Shutdown()
	r.table.Halt()
	if r.events != nil {
		r.events.Close()
		if dropped := r.events.Dropped(); dropped > 0 {
			r.logger.Warningf("%d events dropped", dropped)
		}
	}
	if err := tracing.Shutdown(ctx); err != nil {
		r.logger.Warningf("failed to flush traces: %v", err)
	}
	return ctx.Err()
}

// Dispatch runs one scheduling pass on cpu and advances the clock. It is the
// single step of deterministic drivers that do not Start the CPU loops.
func (r *Runtime) Dispatch(cpu *proc.CPU) bool {
	ran := r.table.Dispatch(cpu)
	r.table.Tick()
	return ran
}

// Ticks returns the tick clock.
func (r *Runtime) Ticks() uint64 {
	return r.table.Ticks()
}

// ProcInfo returns every scheduled process, level 3 first.
func (r *Runtime) ProcInfo() []pstat.Info {
	return r.table.Info()
}

// DumpAllocated returns the n most recently allocated pages, most recent
// first.
func (r *Runtime) DumpAllocated(n int) ([]mem.Addr, error) {
	return r.pages.History(n)
}

// FreePages returns the number of free pages.
func (r *Runtime) FreePages() int {
	return r.pages.Free()
}

// FileNum returns the number of open descriptors of pid.
func (r *Runtime) FileNum(pid int) (int, error) {
	return r.table.FileNum(pid)
}

// Kill kills pid.
func (r *Runtime) Kill(pid int) error {
	return r.table.Kill(pid)
}

// Semaphores returns the semaphore registry.
func (r *Runtime) Semaphores() *semaphore.Registry {
	return r.semaphores
}

// Table returns the process table.
func (r *Runtime) Table() *proc.Table {
	return r.table
}

// Events returns the event service, nil when publishing is disabled.
func (r *Runtime) Events() *event.Service {
	return r.events
}

// Snapshot captures the process table and the full allocation history.
func (r *Runtime) Snapshot(ctx context.Context) (*snapshot.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	history, err := r.pages.History(r.pages.Retained())
	if err != nil {
		return nil, fmt.Errorf("kcore: snapshot history: %w", err)
	}
	return &snapshot.Snapshot{
		BootID:     r.bootID,
		TakenAt:    clock.Now(),
		Ticks:      r.table.Ticks(),
		Processes:  r.table.Info(),
		History:    history,
		FreePages:  r.pages.Free(),
		Semaphores: r.semaphores.InUse(),
	}, nil
}

// SaveSnapshot captures a snapshot and stores it at URL.
func (r *Runtime) SaveSnapshot(ctx context.Context, URL string) (*snapshot.Snapshot, error) {
	ret, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if err = r.snapshots.Save(ctx, URL, ret); err != nil {
		return nil, err
	}
	r.logger.Infof("snapshot saved to %s", URL)
	return ret, nil
}

// LoadSnapshot reads a snapshot saved by SaveSnapshot.
func (r *Runtime) LoadSnapshot(ctx context.Context, URL string) (*snapshot.Snapshot, error) {
	return r.snapshots.Load(ctx, URL)
}
