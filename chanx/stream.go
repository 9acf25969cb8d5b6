package chanx

import (
	"context"
	"sync"

	"github.com/baxromumarov/evchan"
)

// Stream receives from r in a goroutine and forwards every value to the
// returned channel, which has a buffer of size. The returned channel is
// closed when r ends, when a take fails, or when ctx is canceled.
//
// Between two receives no taker is registered, so r should have a buffer
// if values must not be lost while the consumer of the returned channel is
// busy. A value delivered at the moment ctx is canceled is dropped.
//
// Stream panics if size is negative.
func Stream[T any](ctx context.Context, r Receiver[T], size int) <-chan T {
	if size < 0 {
		panic("chanx: Stream requires size >= 0")
	}

	out := make(chan T, size)
	go func() {
		defer close(out)
		for {
			v, err := Recv(ctx, r)
			if err != nil {
				return
			}
			if err := Send(ctx, out, v); err != nil {
				return
			}
		}
	}()
	return out
}

// FromChan returns an [evchan.Source] that forwards every value received
// from in. When in is closed the source sends [evchan.End], which closes
// the event channel. Unsubscribing stops the forwarding goroutine; values
// it has not received yet are left in in. A value received at the moment of
// unsubscribing is dropped, as the event channel is already closed.
func FromChan[T any](in <-chan T) evchan.Source[T] {
	return func(sink evchan.Sink[T]) func() {
		done := make(chan struct{})
		go func() {
			for {
				select {
				case v, ok := <-in:
					select {
					case <-done:
						return
					default:
					}
					if !ok {
						var zero T
						sink(zero, evchan.End)
						return
					}
					sink(v, nil)
				case <-done:
					return
				}
			}
		}()

		var once sync.Once
		return func() {
			once.Do(func() { close(done) })
		}
	}
}
