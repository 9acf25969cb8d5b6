package buffer

// Discard is a buffer that never stores anything.
type Discard[T any] struct {
	dropped uint64
}

// None returns a buffer that discards every value put into it. It is the
// default for event channels, whose sources are expected to be drained
// promptly.
func None[T any]() *Discard[T] {
	return &Discard[T]{}
}

// IsEmpty always reports true.
func (d *Discard[T]) IsEmpty() bool { return true }

// Put discards v.
func (d *Discard[T]) Put(T) { d.dropped++ }

// Take panics; a Discard buffer is always empty.
func (d *Discard[T]) Take() T {
	panic("buffer: Take called on an empty buffer")
}

// Flush returns nil.
func (d *Discard[T]) Flush() []T { return nil }

// Len always returns 0.
func (d *Discard[T]) Len() int { return 0 }

// Dropped returns how many values were discarded.
func (d *Discard[T]) Dropped() uint64 { return d.dropped }
