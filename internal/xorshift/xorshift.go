// Package xorshift implements the 32-bit xorshift generator used to pick
// pages from the allocator free list.
package xorshift

import "sync"

// DefaultSeed matches the seed the kernel boots with when none is configured.
const DefaultSeed uint32 = 1

// Source is a seedable xorshift32 generator. The zero value is not usable; call New.
type Source struct {
	mux   sync.Mutex
	state uint32
}

// New returns a generator seeded with seed. A zero seed would make the
// sequence constant, so it is replaced with DefaultSeed.
func New(seed uint32) *Source {
	if seed == 0 {
		seed = DefaultSeed
	}
	return &Source{state: seed}
}

// Uint32 advances the generator and returns the next value.
func (s *Source) Uint32() uint32 {
	s.mux.Lock()
	defer s.mux.Unlock()
	x := s.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	s.state = x
	return x
}

// Intn returns a value in [0, n). It panics when n <= 0.
func (s *Source) Intn(n int) int {
	if n <= 0 {
		panic("xorshift: invalid argument to Intn")
	}
	return int(s.Uint32() % uint32(n))
}
