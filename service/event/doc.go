// Package event publishes kernel lifecycle events (process creation, exit,
// reaping, kills and level changes) on in-memory queues. Publishing never
// blocks: when a queue is full the event is dropped and counted.
package event
