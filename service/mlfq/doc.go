// Package mlfq implements the four level multi-level feedback queue policy.
//
// Level 3 is the highest priority. A member runs at a level until its
// running spell reaches the level's total quantum, at which point it is
// demoted one level; every slice ticks it is requeued at the tail of its
// level. Members that wait StarvationFactor times the quantum of their level
// without running are promoted one level. The Scheduler holds no lock of its
// own: callers serialize access with the process table lock.
package mlfq
