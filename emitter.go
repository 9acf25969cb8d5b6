package evchan

import (
	"slices"
	"sync"
)

// Listener receives every value emitted while it is subscribed.
type Listener[T any] func(v T)

// Unsubscribe removes a subscription. Calling it more than once is
// harmless.
type Unsubscribe func()

type listener[T any] struct {
	fn Listener[T]
}

// Emitter broadcasts values to every subscribed listener. It does not
// buffer: a value emitted with no listeners is lost.
//
// Emitter is safe for concurrent use. Listeners run on the emitting
// goroutine without the emitter's lock held.
type Emitter[T any] struct {
	mu        sync.Mutex
	listeners []*listener[T]
}

// NewEmitter returns an emitter with no listeners.
func NewEmitter[T any]() *Emitter[T] {
	return &Emitter[T]{}
}

// Subscribe registers l and returns the function that removes this
// registration. Subscribing the same function twice creates two
// independent registrations.
//
// It returns a [*UsageError] wrapping [ErrInvalidListener] if l is nil.
func (e *Emitter[T]) Subscribe(l Listener[T]) (Unsubscribe, error) {
	if l == nil {
		return nil, usageErr("subscribe", "listener", l, ErrInvalidListener)
	}

	sub := &listener[T]{fn: l}
	e.mu.Lock()
	e.listeners = append(e.listeners, sub)
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { e.remove(sub) })
	}, nil
}

// Emit calls every listener subscribed at the time of the call, in
// subscription order. Listeners added or removed while Emit runs do not
// change who receives this value.
func (e *Emitter[T]) Emit(v T) {
	e.mu.Lock()
	snapshot := slices.Clone(e.listeners)
	e.mu.Unlock()

	for _, sub := range snapshot {
		sub.fn(v)
	}
}

// Len returns the number of current subscriptions.
func (e *Emitter[T]) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners)
}

// Source adapts the emitter into an event source for [NewEventChannel].
// Every emitted value is forwarded to the event channel; closing the event
// channel unsubscribes it.
func (e *Emitter[T]) Source() Source[T] {
	return func(sink Sink[T]) func() {
		unsub, err := e.Subscribe(func(v T) { sink(v, nil) })
		if err != nil {
			return nil
		}
		return unsub
	}
}

func (e *Emitter[T]) remove(sub *listener[T]) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i := slices.Index(e.listeners, sub); i >= 0 {
		e.listeners = slices.Delete(e.listeners, i, i+1)
	}
}
