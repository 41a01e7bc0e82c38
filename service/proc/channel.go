package proc

// Channel correlates a sleeping process with a future wakeup. The zero
// Channel matches nothing.
type Channel struct {
	ref any
	ns  string
	key uint64
}

// ChanOf returns a channel keyed by the identity of ptr.
func ChanOf[T any](ptr *T) Channel {
	return Channel{ref: ptr}
}

// KeyChan returns a channel keyed by a value shared through a descriptor,
// for example a pipe number or a lock word. Sleepers and wakers agree on the
// namespace and the value rather than on an address.
func KeyChan(ns string, key uint64) Channel {
	return Channel{ns: ns, key: key}
}

// IsZero reports whether c is the empty channel.
func (c Channel) IsZero() bool {
	return c == Channel{}
}
