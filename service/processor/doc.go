// Package processor runs one dispatch loop per simulated CPU. Each loop
// repeatedly asks the process table to run its next process for one tick;
// CPU 0 also drives the tick clock.
package processor
