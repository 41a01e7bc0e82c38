package vm

import (
	"encoding/binary"
	"fmt"
	"sort"
	"sync"

	"github.com/viant/kcore/model/mem"
)

// Pages is the physical page source backing an address space.
type Pages interface {
	Acquire() (mem.Addr, bool)
	Release(addr mem.Addr)
	Page(addr mem.Addr) []byte
}

// Space is a reference counted user address space mapped from virtual
// address 0 up to Size.
type Space struct {
	pages   Pages
	mux     sync.Mutex
	entries table
	size    mem.Addr
	refs    int
}

// New returns an empty address space holding one reference.
func New(pages Pages) *Space {
	return &Space{pages: pages, entries: table{}, refs: 1}
}

// Size returns the current top of user memory.
func (s *Space) Size() mem.Addr {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.size
}

// Refs returns the number of holders.
func (s *Space) Refs() int {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.refs
}

// Grow changes the size of user memory by n bytes and returns the previous
// size. New pages are zeroed and mapped user writable.
func (s *Space) Grow(n int) (mem.Addr, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	old := s.size
	if n == 0 {
		return old, nil
	}
	if n < 0 {
		shrink := mem.Addr(-n)
		if shrink > old {
			return old, fmt.Errorf("%w: shrink by %d below zero", ErrInvalidRange, -n)
		}
		s.unmap(mem.RoundUp(old-shrink), mem.RoundUp(old))
		s.size = old - shrink
		return old, nil
	}
	top := old + mem.Addr(n)
	for va := mem.RoundUp(old); va < top; va += mem.PageSize {
		pa, ok := s.pages.Acquire()
		if !ok {
			s.unmap(mem.RoundUp(old), va)
			return old, ErrNoMemory
		}
		clear(s.pages.Page(pa))
		s.entries[va] = &PTE{Page: pa, Flags: Present | Writable | User}
	}
	s.size = top
	return old, nil
}

func (s *Space) unmap(from, to mem.Addr) {
	for va := from; va < to; va += mem.PageSize {
		if pte, ok := s.entries[va]; ok {
			s.pages.Release(pte.Page)
			delete(s.entries, va)
		}
	}
}

// Copy duplicates the address space into fresh physical pages. Entry flags,
// including write protection, carry over to the copy.
func (s *Space) Copy() (*Space, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	ret := New(s.pages)
	for _, va := range s.sortedPages() {
		src := s.entries[va]
		pa, ok := s.pages.Acquire()
		if !ok {
			ret.unmap(0, mem.RoundUp(s.size))
			return nil, ErrNoMemory
		}
		copy(s.pages.Page(pa), s.pages.Page(src.Page))
		ret.entries[va] = &PTE{Page: pa, Flags: src.Flags}
	}
	ret.size = s.size
	return ret, nil
}

func (s *Space) sortedPages() []mem.Addr {
	ret := make([]mem.Addr, 0, len(s.entries))
	for va := range s.entries {
		ret = append(ret, va)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i] < ret[j] })
	return ret
}

// Share adds a holder for a thread running in the same address space.
func (s *Space) Share() *Space {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.refs++
	return s
}

// Release drops a holder and frees every mapped page once the last holder is
// gone. It reports whether the space was freed.
func (s *Space) Release() bool {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.refs--
	if s.refs > 0 {
		return false
	}
	if s.refs < 0 {
		panic("freevm: released too many times")
	}
	s.unmap(0, mem.RoundUp(s.size))
	s.size = 0
	return true
}

// Lookup returns a copy of the entry covering va.
func (s *Space) Lookup(va mem.Addr) (PTE, bool) {
	s.mux.Lock()
	defer s.mux.Unlock()
	pte, ok := s.entries.Walk(va)
	if !ok {
		return PTE{}, false
	}
	return *pte, true
}

// Protect write-protects pages pages starting at addr.
func (s *Space) Protect(addr mem.Addr, pages int) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	return Protect(s.entries, addr, pages)
}

// Unprotect makes pages pages starting at addr writable again.
func (s *Space) Unprotect(addr mem.Addr, pages int) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	return Unprotect(s.entries, addr, pages)
}

// Read copies len(dst) bytes of user memory starting at va.
func (s *Space) Read(va mem.Addr, dst []byte) error {
	return s.access(va, len(dst), Present|User, func(page []byte, off int, done int, n int) {
		copy(dst[done:done+n], page[off:off+n])
	})
}

// Write copies src into user memory starting at va. A store to a page without
// the writable bit is a page fault.
func (s *Space) Write(va mem.Addr, src []byte) error {
	return s.access(va, len(src), Present|User|Writable, func(page []byte, off int, done int, n int) {
		copy(page[off:off+n], src[done:done+n])
	})
}

func (s *Space) access(va mem.Addr, size int, need Flags, fn func(page []byte, off, done, n int)) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	for cur := va; cur < va+mem.Addr(size); cur = mem.RoundDown(cur) + mem.PageSize {
		pte, ok := s.entries.Walk(cur)
		if !ok || !pte.Has(need) {
			return fmt.Errorf("%w: addr %v", ErrPageFault, cur)
		}
	}
	done := 0
	for done < size {
		cur := va + mem.Addr(done)
		pte, _ := s.entries.Walk(cur)
		off := int(cur - mem.RoundDown(cur))
		n := min(mem.PageSize-off, size-done)
		fn(s.pages.Page(pte.Page), off, done, n)
		done += n
	}
	return nil
}

// ReadUint32 loads a little-endian word from user memory.
func (s *Space) ReadUint32(va mem.Addr) (uint32, error) {
	var buf [4]byte
	if err := s.Read(va, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// WriteUint32 stores a little-endian word into user memory.
func (s *Space) WriteUint32(va mem.Addr, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return s.Write(va, buf[:])
}
