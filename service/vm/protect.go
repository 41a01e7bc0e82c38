package vm

import (
	"fmt"

	"github.com/viant/kcore/model/mem"
)

// Protect clears the writable bit on pages consecutive pages starting at addr.
// The whole range is validated before any entry changes.
func Protect(pt PageTable, addr mem.Addr, pages int) error {
	return toggle(pt, addr, pages, func(pte *PTE) { pte.Flags &^= Writable })
}

// Unprotect sets the writable bit on pages consecutive pages starting at addr.
func Unprotect(pt PageTable, addr mem.Addr, pages int) error {
	return toggle(pt, addr, pages, func(pte *PTE) { pte.Flags |= Writable })
}

func toggle(pt PageTable, addr mem.Addr, pages int, apply func(pte *PTE)) error {
	if !addr.Aligned() || pages <= 0 {
		return fmt.Errorf("%w: addr %v, pages %d", ErrInvalidRange, addr, pages)
	}
	entries := make([]*PTE, 0, pages)
	for i := 0; i < pages; i++ {
		va := addr + mem.Addr(i)*mem.PageSize
		pte, ok := pt.Walk(va)
		if !ok || !pte.Has(Present) {
			return fmt.Errorf("%w: %v", ErrNotMapped, va)
		}
		entries = append(entries, pte)
	}
	for _, pte := range entries {
		apply(pte)
	}
	return nil
}
