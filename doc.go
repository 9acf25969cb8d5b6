// Package evchan provides synchronous, callback-based channels that
// decouple producers of discrete values from consumers that want exactly
// one matching value at a time.
//
// Unlike Go channels, an evchan [Channel] never blocks. A consumer registers
// a one-shot callback and the channel calls it, on the producer's
// goroutine, as soon as a value is available. This makes the channel a fit
// for event-driven code that must stay on a single call stack, such as
// effect interpreters, state machines, and adapters around callback APIs.
//
// # Put, Take and Close
//
//	ch := evchan.New[string]()
//
//	ch.Take(func(v string, err error) {
//	    if evchan.IsEnd(err) {
//	        return // closed
//	    }
//	    fmt.Println("got", v)
//	})
//	ch.Put("hello") // prints "got hello" before Put returns
//	ch.Close()
//
// A put goes to the first waiting taker, in registration order, whose
// [Matcher] accepts the value (see [Channel.TakeMatch]). When no taker is
// waiting the value goes to the channel's buffer. A take is answered at
// once from the buffer when it holds a value, and is queued otherwise.
//
// Closing a channel answers every queued taker with [End]. Takes on a
// closed channel drain the remaining buffered values and then receive End.
// Puts on a closed channel are ignored.
//
// Two invariants hold between calls: a closed channel has no queued
// takers, and a channel with queued takers has an empty buffer. They are
// checked before every operation; a violation is reported as an
// [*InternalError] and means the package has a bug. Invalid arguments are
// reported as [*UsageError].
//
// # Buffers
//
// The [github.com/baxromumarov/evchan/buffer] subpackage provides the
// storage strategies: None, Fixed, Dropping, Sliding and Expanding.
// [New] uses a single-slot Fixed buffer; [NewBuffered] takes any
// [buffer.Buffer].
//
// # Event Channels
//
// [NewEventChannel] wraps a callback-based [Source] (a timer, a socket
// reader, an [Emitter], a file tail, ...) as a channel. The source pushes
// values through a [Sink] and terminates the channel by pushing End.
// The source's unsubscribe function runs exactly once, when the event
// channel closes.
//
// # Emitter
//
// [Emitter] is a minimal broadcast registry: every subscribed [Listener]
// receives every emitted value. [Emitter.Source] turns an emitter into an
// event-channel source.
//
// # Observability
//
// Channels log through logrus ([WithLogger]) and export Prometheus
// counters through a shared [Metrics] collector ([WithMetrics]).
// [Channel.Stats] returns a snapshot of the same counters.
//
// # Blocking and Go Channels
//
// The [github.com/baxromumarov/evchan/chanx] subpackage bridges to
// ordinary Go code: blocking receives with context or timeout, streaming
// into a Go channel, and turning a Go channel into a Source.
package evchan
