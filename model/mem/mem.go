package mem

import "fmt"

const (
	// PageShift is log2(PageSize).
	PageShift = 12
	// PageSize is the size of a physical page in bytes.
	PageSize = 1 << PageShift
)

// Addr is a physical or virtual byte address.
type Addr uint64

// Aligned reports whether a is on a page boundary.
func (a Addr) Aligned() bool {
	return a&(PageSize-1) == 0
}

// PageIndex returns the page number of a relative to base.
func (a Addr) PageIndex(base Addr) int {
	return int((a - base) >> PageShift)
}

func (a Addr) String() string {
	return fmt.Sprintf("0x%x", uint64(a))
}

// RoundDown returns a rounded down to a page boundary.
func RoundDown(a Addr) Addr {
	return a &^ (PageSize - 1)
}

// RoundUp returns a rounded up to a page boundary.
func RoundUp(a Addr) Addr {
	return (a + PageSize - 1) &^ (PageSize - 1)
}
