package evchan

// TakeFunc receives exactly one result from a channel: a value with a nil
// error, or the zero value with [End] once the channel is closed and
// drained.
type TakeFunc[T any] func(v T, err error)

// Matcher reports whether a taker accepts v. Matchers run while the
// channel is locked; they must be pure and must not call back into the
// channel.
type Matcher[T any] func(v T) bool

// Taker is a registered one-shot consumer. It is returned by every take
// call, including the ones answered immediately, in which case it is
// already done.
type Taker[T any] struct {
	ch    *Channel[T]
	fn    TakeFunc[T]
	match Matcher[T]
	done  bool // delivered or cancelled; guarded by ch.mu
}

// Cancel removes the taker from the channel's queue without invoking it.
// It reports whether the taker was still pending. Cancelling a taker that
// already received its value (or End) is a no-op and returns false.
func (t *Taker[T]) Cancel() bool {
	return t.ch.cancel(t)
}

// Pending reports whether the taker is still waiting for a value.
func (t *Taker[T]) Pending() bool {
	t.ch.mu.Lock()
	defer t.ch.mu.Unlock()
	return !t.done
}

func (t *Taker[T]) accepts(v T) bool {
	return t.match == nil || t.match(v)
}
