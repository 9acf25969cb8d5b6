package chanx

import (
	"context"
	"errors"
	"time"

	"github.com/baxromumarov/evchan"
	"github.com/benbjohnson/clock"
)

// ErrTimeout is returned by [RecvTimeout] when the deadline passes before a
// value arrives.
var ErrTimeout = errors.New("chanx: receive timed out")

// Receiver is the take side of a channel. It is implemented by
// [*evchan.Channel] and [*evchan.EventChannel].
type Receiver[T any] interface {
	Take(fn evchan.TakeFunc[T]) (*evchan.Taker[T], error)
}

// Send sends v to ch, unblocking early if ctx is canceled.
// It returns nil on successful send, or the context error if canceled.
func Send[T any](ctx context.Context, ch chan<- T, v T) error {
	select {
	case ch <- v:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Recv takes the next value from r, blocking until it arrives.
// It returns [evchan.End] once r is closed and drained, or the context
// error if ctx is canceled first.
func Recv[T any](ctx context.Context, r Receiver[T]) (T, error) {
	return recv(r, ctx.Done(), ctx.Err)
}

// RecvTimeout takes the next value from r, giving up with [ErrTimeout]
// after d as measured by clk. Pass clock.New() in production and a
// clock.Mock in tests.
//
// RecvTimeout panics if d is not positive.
func RecvTimeout[T any](clk clock.Clock, r Receiver[T], d time.Duration) (T, error) {
	if d <= 0 {
		panic("chanx: RecvTimeout requires d > 0")
	}
	timer := clk.Timer(d)
	defer timer.Stop()
	return recv(r, timer.C, func() error { return ErrTimeout })
}

type result[T any] struct {
	v   T
	err error
}

func recv[T, S any](r Receiver[T], stop <-chan S, cause func() error) (T, error) {
	var zero T

	// Buffered so a delivery racing with cancellation never blocks the
	// producer.
	got := make(chan result[T], 1)
	tk, err := r.Take(func(v T, err error) {
		got <- result[T]{v, err}
	})
	if err != nil {
		return zero, err
	}

	select {
	case res := <-got:
		return res.v, res.err
	case <-stop:
		if tk.Cancel() {
			return zero, cause()
		}
		res := <-got
		return res.v, res.err
	}
}
