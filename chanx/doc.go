// Package chanx bridges evchan channels and ordinary blocking Go code.
//
// evchan channels never block: a take registers a callback. chanx turns
// that protocol into the shapes Go programs usually want:
//
//   - [Recv]: block until a value, End, or context cancellation.
//   - [RecvTimeout]: block until a value or End, with a deadline measured
//     on an injectable [clock.Clock].
//   - [Stream]: pump values into a native Go channel that is closed once
//     the evchan channel ends.
//   - [FromChan]: expose a native Go channel as an [evchan.Source] for
//     [evchan.NewEventChannel].
//   - [Send]: context-aware send on a native channel.
//
// A receive that gives up (cancellation or timeout) cancels its taker, so
// no value is consumed on its behalf. If a value was delivered
// concurrently with the cancellation, the value wins and is returned.
package chanx
