// Package snapshot captures the process table and the allocator history in
// canonical CBOR and stores it through afs, so two snapshots of the same
// kernel state are byte-identical.
package snapshot
