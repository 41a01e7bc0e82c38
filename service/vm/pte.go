package vm

import "github.com/viant/kcore/model/mem"

// Flags holds page table entry permission bits.
type Flags uint32

const (
	Present  Flags = 1 << 0
	Writable Flags = 1 << 1
	User     Flags = 1 << 2
)

// PTE maps one virtual page to a physical page.
type PTE struct {
	Page  mem.Addr
	Flags Flags
}

// Has reports whether all bits of f are set.
func (p *PTE) Has(f Flags) bool {
	return p.Flags&f == f
}

// PageTable looks up the entry covering a virtual address.
type PageTable interface {
	Walk(va mem.Addr) (*PTE, bool)
}

type table map[mem.Addr]*PTE

func (t table) Walk(va mem.Addr) (*PTE, bool) {
	pte, ok := t[mem.RoundDown(va)]
	return pte, ok
}
