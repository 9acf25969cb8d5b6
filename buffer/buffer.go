// Package buffer provides the storage strategies a channel falls back to
// when no taker is ready for a value.
//
// A channel only relies on the three methods of [Buffer]. Bounded buffers
// decide on their own whether an incoming value is kept; they never report
// rejection to the channel. The optional [Flusher], [Sizer] and
// [DropCounter] interfaces expose extra state for draining and
// observability.
//
// Strategies:
//
//   - [None]: stores nothing; every value is discarded.
//   - [Fixed] and [Dropping]: keep the first n values, discard newer ones
//     while full.
//   - [Sliding]: keep the newest n values, evicting the oldest while full.
//   - [Expanding]: start with n slots and grow as needed; never discards.
//
// Buffers are not goroutine-safe; the owning channel serializes access.
package buffer

// Buffer is the capability contract a channel consumes.
//
// Take must only be called when IsEmpty reports false.
type Buffer[T any] interface {
	IsEmpty() bool
	Put(v T)
	Take() T
}

// Flusher is implemented by buffers that can hand back every stored value
// at once, oldest first.
type Flusher[T any] interface {
	Flush() []T
}

// Sizer is implemented by buffers that report how many values they hold.
type Sizer interface {
	Len() int
}

// DropCounter is implemented by buffers that count the values they
// discarded because of their overflow policy.
type DropCounter interface {
	Dropped() uint64
}
