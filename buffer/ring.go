package buffer

type overflow int

const (
	dropNewest overflow = iota
	dropOldest
	grow
)

// Ring is a FIFO ring buffer with a fixed overflow policy. Construct one
// with [Fixed], [Dropping], [Sliding] or [Expanding].
type Ring[T any] struct {
	items   []T
	head    int // index of the oldest value
	size    int
	policy  overflow
	dropped uint64
}

func newRing[T any](limit int, policy overflow) *Ring[T] {
	return &Ring[T]{
		items:  make([]T, limit),
		policy: policy,
	}
}

// Fixed returns a buffer holding at most limit values. While full, new
// values are discarded and counted in [Ring.Dropped].
//
// Fixed panics if limit is not positive.
func Fixed[T any](limit int) *Ring[T] {
	if limit <= 0 {
		panic("buffer: Fixed requires limit > 0")
	}
	return newRing[T](limit, dropNewest)
}

// Dropping returns a buffer holding at most limit values that silently
// discards new values while full.
//
// Dropping panics if limit is not positive.
func Dropping[T any](limit int) *Ring[T] {
	if limit <= 0 {
		panic("buffer: Dropping requires limit > 0")
	}
	return newRing[T](limit, dropNewest)
}

// Sliding returns a buffer holding the newest limit values. While full, the
// oldest value is evicted to make room.
//
// Sliding panics if limit is not positive.
func Sliding[T any](limit int) *Ring[T] {
	if limit <= 0 {
		panic("buffer: Sliding requires limit > 0")
	}
	return newRing[T](limit, dropOldest)
}

// Expanding returns an unbounded buffer with an initial capacity of
// initial values. It doubles its capacity whenever it fills up.
//
// Expanding panics if initial is not positive.
func Expanding[T any](initial int) *Ring[T] {
	if initial <= 0 {
		panic("buffer: Expanding requires initial > 0")
	}
	return newRing[T](initial, grow)
}

// IsEmpty reports whether the buffer holds no values.
func (r *Ring[T]) IsEmpty() bool {
	return r.size == 0
}

// Put stores v according to the overflow policy.
func (r *Ring[T]) Put(v T) {
	if r.size == len(r.items) {
		switch r.policy {
		case dropNewest:
			r.dropped++
			return
		case dropOldest:
			var zero T
			r.items[r.head] = zero
			r.head = (r.head + 1) % len(r.items)
			r.size--
			r.dropped++
		case grow:
			r.resize(len(r.items) * 2)
		}
	}
	r.items[(r.head+r.size)%len(r.items)] = v
	r.size++
}

// Take removes and returns the oldest value. It panics if the buffer is
// empty.
func (r *Ring[T]) Take() T {
	if r.size == 0 {
		panic("buffer: Take called on an empty buffer")
	}
	var zero T
	v := r.items[r.head]
	r.items[r.head] = zero
	r.head = (r.head + 1) % len(r.items)
	r.size--
	return v
}

// Flush removes and returns every stored value, oldest first.
func (r *Ring[T]) Flush() []T {
	out := make([]T, 0, r.size)
	for r.size > 0 {
		out = append(out, r.Take())
	}
	return out
}

// Len returns the number of stored values.
func (r *Ring[T]) Len() int {
	return r.size
}

// Cap returns the current capacity.
func (r *Ring[T]) Cap() int {
	return len(r.items)
}

// Dropped returns how many values the overflow policy discarded.
func (r *Ring[T]) Dropped() uint64 {
	return r.dropped
}

func (r *Ring[T]) resize(n int) {
	items := make([]T, n)
	for i := 0; i < r.size; i++ {
		items[i] = r.items[(r.head+i)%len(r.items)]
	}
	r.items = items
	r.head = 0
}
