// Package allocator manages the pool of 4096-byte physical pages that back
// kernel stacks and process address spaces.
//
// Free pages are kept on a singly linked free list. Acquire does not hand out
// the head of the list; it draws a uniformly random index into the list and
// walks to it, so page reuse is not predictable. Every acquired address is
// appended to a bounded allocation history that can be dumped most recent
// first. Releasing a misaligned, out of range or already free page is a kernel
// invariant violation and panics.
package allocator
