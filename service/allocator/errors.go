package allocator

import "errors"

var (
	// ErrInvalidCount is returned by History when the requested count is negative
	// or exceeds the number of allocations ever performed.
	ErrInvalidCount = errors.New("allocator: invalid history count")

	// ErrHistoryTruncated is returned by History when the requested entries were
	// already evicted from the bounded history.
	ErrHistoryTruncated = errors.New("allocator: history truncated")
)
