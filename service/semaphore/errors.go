package semaphore

import "errors"

var (
	// ErrInvalidID is returned for an id outside the registry or a free slot.
	ErrInvalidID = errors.New("semaphore: invalid id")
	// ErrRegistryFull is returned by Init when every slot is allocated.
	ErrRegistryFull = errors.New("semaphore: registry full")
	// ErrDestroyed is returned to waiters of a destroyed semaphore.
	ErrDestroyed = errors.New("semaphore: destroyed while waiting")
	// ErrKilled is returned by Wait when the caller is killed.
	ErrKilled = errors.New("semaphore: caller killed while waiting")
	// ErrInvalidCount is returned by Init for a negative count.
	ErrInvalidCount = errors.New("semaphore: negative initial count")
)
