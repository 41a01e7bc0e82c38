// Package vm provides the simulated user address space consumed by the
// process table: page table entries keyed by virtual page, growth, fork-time
// duplication, sharing between threads, and the write-protect toggles behind
// mprotect and munprotect.
package vm
