// Package semaphore provides a fixed-capacity registry of counting
// semaphores built on proc sleep and wakeup. A waiter sleeps on the identity
// of its semaphore; destroying a semaphore wakes every waiter and fails it.
package semaphore
