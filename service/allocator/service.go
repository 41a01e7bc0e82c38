package allocator

import (
	"fmt"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/viant/kcore/internal/xorshift"
	"github.com/viant/kcore/model/mem"
)

// Random picks an index in [0, n).
type Random interface {
	Intn(n int) int
}

const nilPage = -1

// Service is a randomized physical page allocator.
type Service struct {
	config Config
	random Random
	logger commonlog.Logger

	mux     sync.Mutex
	arena   []byte
	next    []int // free list links by page index
	isFree  []bool
	head    int
	free    int
	history []mem.Addr
	allocs  int
}

// New creates an allocator and releases every page of the managed range onto
// the free list.
func New(config Config, options ...Option) (*Service, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	pages := config.Pages()
	s := &Service{
		config:  config,
		logger:  commonlog.GetLogger("kcore.allocator"),
		arena:   make([]byte, pages*mem.PageSize),
		next:    make([]int, pages),
		isFree:  make([]bool, pages),
		head:    nilPage,
		history: make([]mem.Addr, config.HistorySize),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.random == nil {
		s.random = xorshift.New(config.Seed)
	}
	for addr := config.Base; addr+mem.PageSize <= config.Limit; addr += mem.PageSize {
		s.Release(addr)
	}
	s.logger.Debugf("managing %d pages in [%v, %v)", pages, config.Base, config.Limit)
	return s, nil
}

func (s *Service) index(addr mem.Addr, op string) int {
	if !addr.Aligned() || addr < s.config.Base || addr >= s.config.Limit {
		panic(fmt.Sprintf("%s: bad page address %v", op, addr))
	}
	return addr.PageIndex(s.config.Base)
}

func (s *Service) addr(index int) mem.Addr {
	return s.config.Base + mem.Addr(index)*mem.PageSize
}

// Release returns the page at addr to the free list. The page is filled with
// the sentinel byte first so stale writers are visible.
func (s *Service) Release(addr mem.Addr) {
	idx := s.index(addr, "kfree")
	page := s.arena[idx*mem.PageSize : (idx+1)*mem.PageSize]
	for i := range page {
		page[i] = s.config.Sentinel
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.isFree[idx] {
		panic(fmt.Sprintf("kfree: page %v already free", addr))
	}
	s.isFree[idx] = true
	s.next[idx] = s.head
	s.head = idx
	s.free++
}

// Acquire removes a randomly chosen page from the free list. It returns false
// when no page is free.
func (s *Service) Acquire() (mem.Addr, bool) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.free == 0 {
		return 0, false
	}
	rd := s.random.Intn(s.free)
	idx, prev := s.head, nilPage
	for i := 0; i < rd; i++ {
		prev = idx
		idx = s.next[idx]
	}
	if prev == nilPage {
		s.head = s.next[idx]
	} else {
		s.next[prev] = s.next[idx]
	}
	s.next[idx] = nilPage
	s.isFree[idx] = false
	s.free--

	addr := s.addr(idx)
	s.history[s.allocs%len(s.history)] = addr
	s.allocs++
	return addr, true
}

// History returns the n most recently acquired addresses, most recent first.
func (s *Service) History(n int) ([]mem.Addr, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if n < 0 || n > s.allocs {
		return nil, fmt.Errorf("%w: requested %d of %d", ErrInvalidCount, n, s.allocs)
	}
	if n > len(s.history) {
		return nil, fmt.Errorf("%w: requested %d, retained %d", ErrHistoryTruncated, n, len(s.history))
	}
	ret := make([]mem.Addr, n)
	for i := 0; i < n; i++ {
		ret[i] = s.history[(s.allocs-1-i)%len(s.history)]
	}
	return ret, nil
}

// Page returns the contents of the page at addr. It panics when addr is not a
// managed page address.
func (s *Service) Page(addr mem.Addr) []byte {
	idx := s.index(addr, "p2v")
	return s.arena[idx*mem.PageSize : (idx+1)*mem.PageSize : (idx+1)*mem.PageSize]
}

// Free returns the size of the free list.
func (s *Service) Free() int {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.free
}

// Allocations returns the number of acquisitions ever performed.
func (s *Service) Allocations() int {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.allocs
}

// Capacity returns the number of managed pages.
func (s *Service) Capacity() int {
	return len(s.next)
}

// Retained returns how many allocations History can still report.
func (s *Service) Retained() int {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.allocs < len(s.history) {
		return s.allocs
	}
	return len(s.history)
}
