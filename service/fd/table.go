package fd

import (
	"errors"
	"fmt"
)

// NOFILE is the number of descriptors a process may hold.
const NOFILE = 16

var (
	// ErrTooMany is returned when every descriptor slot is in use.
	ErrTooMany = errors.New("fd: too many open files")
	// ErrBadDescriptor is returned for a closed or out of range descriptor.
	ErrBadDescriptor = errors.New("fd: bad descriptor")
)

// Table is a per-process descriptor table.
type Table [NOFILE]*File

// Insert stores f in the lowest free slot.
func (t *Table) Insert(f *File) (int, error) {
	for i, cur := range t {
		if cur == nil {
			t[i] = f
			return i, nil
		}
	}
	return -1, ErrTooMany
}

// Remove clears descriptor fd and returns the file it held.
func (t *Table) Remove(fd int) (*File, error) {
	if fd < 0 || fd >= NOFILE || t[fd] == nil {
		return nil, fmt.Errorf("%w: %d", ErrBadDescriptor, fd)
	}
	f := t[fd]
	t[fd] = nil
	return f, nil
}

// Dup returns a copy of the table with every open file referenced again.
func (t *Table) Dup() Table {
	var ret Table
	for i, f := range t {
		if f != nil {
			ret[i] = f.Dup()
		}
	}
	return ret
}

// CloseAll closes every open descriptor.
func (t *Table) CloseAll() {
	for i, f := range t {
		if f != nil {
			f.Close()
			t[i] = nil
		}
	}
}

// Count returns the number of open descriptors.
func (t *Table) Count() int {
	ret := 0
	for _, f := range t {
		if f != nil {
			ret++
		}
	}
	return ret
}
