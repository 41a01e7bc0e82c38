// Package proc implements the process table, the per-CPU dispatch of the
// multi-level feedback queue and the sleep/wakeup channel layer.
//
// Every process runs on its own goroutine, but only while a CPU has handed it
// control: the CPU and the process exchange an unbuffered channel signal on
// each switch, so exactly one of them executes at a time. The table lock is
// held across a switch and released by whichever side resumes, which is what
// makes sleep and wakeup free of lost wakeups.
//
// Lock order: semaphore registry, semaphore, table, address space, allocator.
package proc
