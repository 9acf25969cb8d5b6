package evchan

import (
	"sync"

	"github.com/baxromumarov/evchan/buffer"
	"github.com/sirupsen/logrus"
)

// Sink receives values pushed by a [Source]. Passing a nil error delivers
// v; passing [End] (or an error wrapping it) terminates the event channel.
// Any other non-nil error also terminates it and is logged.
type Sink[T any] func(v T, err error)

// Source subscribes sink to an external push-based event stream and
// returns the function that cancels the subscription. The source may call
// sink any number of times, from any goroutine, including from within the
// Source call itself.
//
// A Source must return a non-nil unsubscribe function.
type Source[T any] func(sink Sink[T]) (unsubscribe func())

// EventChannel exposes an external [Source] through the take/close
// protocol of [Channel]. Values can only enter it through the source.
type EventChannel[T any] struct {
	ch  *Channel[T]
	log logrus.FieldLogger

	mu      sync.Mutex
	unsub   func()
	stopped bool
}

// NewEventChannel subscribes to src and returns a channel fed by it.
//
// buf defaults to [buffer.None] when nil, so values pushed while no taker
// is waiting are lost unless a real buffer is given. filter, when non-nil,
// drops every value it rejects before it reaches the channel.
//
// The unsubscribe function returned by src is called exactly once, when
// the event channel closes, either because the source sent [End] or
// because [EventChannel.Close] was called.
func NewEventChannel[T any](src Source[T], buf buffer.Buffer[T], filter Matcher[T], opts ...Option) (*EventChannel[T], error) {
	if src == nil {
		return nil, usageErr("eventChannel", "source", src, ErrInvalidSource)
	}
	if buf == nil {
		buf = buffer.None[T]()
	} else if isAbsent(buf) {
		return nil, usageErr("eventChannel", "buffer", buf, ErrInvalidBuffer)
	}

	cfg := newConfig(opts)
	ch := newChannel(buf, cfg)
	ec := &EventChannel[T]{
		ch:  ch,
		log: ch.log,
	}

	unsub := src(ec.sink(filter))

	ec.mu.Lock()
	if unsub == nil {
		ec.stopped = true
		ec.mu.Unlock()
		if err := ch.Close(); err != nil {
			return nil, err
		}
		return nil, usageErr("eventChannel", "source", src, ErrInvalidSource)
	}
	if ec.stopped {
		// The source ended before it returned; tear it down now.
		ec.mu.Unlock()
		unsub()
		return ec, nil
	}
	ec.unsub = unsub
	ec.mu.Unlock()

	return ec, nil
}

func (ec *EventChannel[T]) sink(filter Matcher[T]) Sink[T] {
	return func(v T, err error) {
		if err != nil {
			if !IsEnd(err) {
				ec.log.WithError(err).Warn("event source failed, closing channel")
			}
			if cerr := ec.ch.Close(); cerr != nil {
				ec.log.WithError(cerr).Error("closing event channel")
			}
			ec.stop()
			return
		}
		if filter != nil && !filter(v) {
			return
		}
		if perr := ec.ch.Put(v); perr != nil {
			ec.log.WithError(perr).Error("event source produced an invalid value")
		}
	}
}

// Take registers fn for the next value, as [Channel.Take].
func (ec *EventChannel[T]) Take(fn TakeFunc[T]) (*Taker[T], error) {
	return ec.ch.Take(fn)
}

// TakeMatch registers fn for the next value accepted by m, as
// [Channel.TakeMatch].
func (ec *EventChannel[T]) TakeMatch(fn TakeFunc[T], m Matcher[T]) (*Taker[T], error) {
	return ec.ch.TakeMatch(fn, m)
}

// Close closes the channel, answering pending takers with [End], and then
// unsubscribes from the source. It is idempotent.
func (ec *EventChannel[T]) Close() error {
	err := ec.ch.Close()
	ec.stop()
	return err
}

// IsClosed reports whether the event channel is closed.
func (ec *EventChannel[T]) IsClosed() bool {
	return ec.ch.IsClosed()
}

// Name returns the channel name used in logs and metrics.
func (ec *EventChannel[T]) Name() string {
	return ec.ch.Name()
}

// Stats returns a snapshot of the underlying channel counters.
func (ec *EventChannel[T]) Stats() Stats {
	return ec.ch.Stats()
}

// stop unsubscribes from the source once. If the source has not returned
// its unsubscribe function yet, NewEventChannel calls it as soon as it
// does.
func (ec *EventChannel[T]) stop() {
	ec.mu.Lock()
	if ec.stopped {
		ec.mu.Unlock()
		return
	}
	ec.stopped = true
	unsub := ec.unsub
	ec.unsub = nil
	ec.mu.Unlock()

	if unsub != nil {
		unsub()
		ec.log.Debug("unsubscribed from event source")
	}
}
