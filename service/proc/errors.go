package proc

import "errors"

var (
	// ErrNoSlot is returned when every process slot is in use.
	ErrNoSlot = errors.New("proc: no free process slot")
	// ErrNoMemory is returned when no page is left for a kernel stack or an
	// address space copy.
	ErrNoMemory = errors.New("proc: out of memory")
	// ErrNoProcess is returned when no process holds the requested pid.
	ErrNoProcess = errors.New("proc: no such process")
	// ErrInvalidPid is returned for a non-positive pid.
	ErrInvalidPid = errors.New("proc: invalid pid")
	// ErrNoChildren is returned by wait and join when there is nothing to reap.
	ErrNoChildren = errors.New("proc: no children")
	// ErrKilled is returned by blocking calls of a killed process.
	ErrKilled = errors.New("proc: killed")
	// ErrBadStack is returned by clone for a misaligned or unmapped stack.
	ErrBadStack = errors.New("proc: bad thread stack")
	// ErrKillInit is returned when asked to kill the init process.
	ErrKillInit = errors.New("proc: init process cannot be killed")
	// ErrNoInit is returned when a process is spawned before the reaper exists.
	ErrNoInit = errors.New("proc: init process not started")
)
