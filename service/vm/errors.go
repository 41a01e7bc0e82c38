package vm

import "errors"

var (
	// ErrNoMemory is returned when the page allocator is exhausted.
	ErrNoMemory = errors.New("vm: out of memory")

	// ErrPageFault is returned when an access hits a page that is not present,
	// not user accessible, or not writable for a store.
	ErrPageFault = errors.New("vm: page fault")

	// ErrInvalidRange is returned for a misaligned address or a non-positive
	// page count.
	ErrInvalidRange = errors.New("vm: invalid range")

	// ErrNotMapped is returned when a page in the requested range has no
	// present entry.
	ErrNotMapped = errors.New("vm: page not mapped")
)
