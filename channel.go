package evchan

import (
	"slices"
	"sync"

	"github.com/baxromumarov/evchan/buffer"
	"github.com/sirupsen/logrus"
)

// Channel is a synchronous, callback-based channel. Producers call
// [Channel.Put]; consumers register one-shot callbacks with
// [Channel.Take] or [Channel.TakeMatch]. A put is handed directly to the
// first eligible waiting taker, or stored in the channel's buffer when no
// taker is waiting.
//
// All callbacks run on the caller's goroutine, after the channel's lock has
// been released, so a callback may call back into the same channel.
// Channel is safe for concurrent use.
type Channel[T any] struct {
	mu      sync.Mutex
	closed  bool
	takers  []*Taker[T]
	buf     buffer.Buffer[T]
	dropped uint64 // last buffer drop count seen
	stats   counters

	name    string
	log     logrus.FieldLogger
	metrics *Metrics
}

// New creates a channel backed by a single-slot [buffer.Fixed] buffer.
func New[T any](opts ...Option) *Channel[T] {
	return newChannel[T](buffer.Fixed[T](1), newConfig(opts))
}

// NewBuffered creates a channel backed by buf. The channel takes ownership
// of buf; no other code may use it afterwards.
//
// It returns a [*UsageError] wrapping [ErrInvalidBuffer] if buf is nil.
func NewBuffered[T any](buf buffer.Buffer[T], opts ...Option) (*Channel[T], error) {
	if isAbsent(buf) {
		return nil, usageErr("new", "buffer", buf, ErrInvalidBuffer)
	}
	return newChannel(buf, newConfig(opts)), nil
}

func newChannel[T any](buf buffer.Buffer[T], cfg config) *Channel[T] {
	return &Channel[T]{
		buf:     buf,
		name:    cfg.name,
		log:     cfg.logger.WithField("channel", cfg.name),
		metrics: cfg.metrics,
	}
}

// Put delivers v to the first waiting taker whose matcher accepts it. When
// no taker is waiting, v goes to the buffer, which may keep or drop it
// according to its policy. When takers are waiting but none accepts v, v
// is discarded.
//
// Put on a closed channel is a no-op. A nil pointer, map, channel, func or
// interface value is rejected with a [*UsageError] wrapping
// [ErrUndefinedValue].
//
// A panicking matcher propagates out of Put; the channel stays usable.
func (c *Channel[T]) Put(v T) error {
	r, err := c.put(v)
	if err != nil {
		return err
	}

	c.metrics.put(c.name, r.outcome)
	switch r.outcome {
	case putDelivered:
		c.metrics.setPending(c.name, r.pending)
		r.taker.fn(v, nil)
	case putDiscarded:
		c.log.WithField("pending", r.pending).Debug("no pending taker matched value, discarding")
	case putBuffered:
		if r.drops > 0 {
			c.metrics.drop(c.name, r.drops)
			if r.dropped%100 == 1 {
				c.log.WithField("dropped", r.dropped).Warn("buffer overflow, values dropped")
			}
		}
	}
	return nil
}

// putResult is what the locked part of Put decided.
type putResult[T any] struct {
	outcome string
	taker   *Taker[T] // set for putDelivered
	pending int
	drops   uint64 // buffer drops caused by this put
	dropped uint64 // buffer drops in total
}

func (c *Channel[T]) put(v T) (putResult[T], error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkForbiddenStates("put"); err != nil {
		return putResult[T]{}, err
	}
	if isAbsent(v) {
		return putResult[T]{}, usageErr("put", "value", v, ErrUndefinedValue)
	}
	c.stats.puts++

	if c.closed {
		return putResult[T]{outcome: putClosed}, nil
	}

	if len(c.takers) > 0 {
		for i, t := range c.takers {
			if !t.accepts(v) {
				continue
			}
			c.takers = slices.Delete(c.takers, i, i+1)
			t.done = true
			c.stats.delivered++
			return putResult[T]{outcome: putDelivered, taker: t, pending: len(c.takers)}, nil
		}

		// Storing v would leave pending takers next to a non-empty buffer.
		c.stats.discarded++
		return putResult[T]{outcome: putDiscarded, pending: len(c.takers)}, nil
	}

	c.buf.Put(v)
	c.stats.buffered++
	drops, dropped := c.observeDrops()
	return putResult[T]{outcome: putBuffered, drops: drops, dropped: dropped}, nil
}

// Take registers fn to receive the next value.
//
// If the channel is closed and its buffer is empty, fn is called at once
// with [End]. If the buffer holds values, fn is called at once with the
// oldest one. Otherwise fn is queued behind earlier takers until a put or
// close answers it; the returned [*Taker] can cancel it in the meantime.
func (c *Channel[T]) Take(fn TakeFunc[T]) (*Taker[T], error) {
	return c.take(fn, nil, false)
}

// TakeMatch is like [Channel.Take] but, while queued, the taker only
// accepts values for which m returns true.
//
// Buffered values are delivered to the next taker regardless of its
// matcher; do not mix matchers with buffering if every value has to be
// matched.
func (c *Channel[T]) TakeMatch(fn TakeFunc[T], m Matcher[T]) (*Taker[T], error) {
	return c.take(fn, m, true)
}

func (c *Channel[T]) take(fn TakeFunc[T], m Matcher[T], withMatcher bool) (*Taker[T], error) {
	t, v, outcome, pending, err := c.register(fn, m, withMatcher)
	if err != nil {
		return nil, err
	}

	c.metrics.take(c.name, outcome)
	switch outcome {
	case takeEnd:
		fn(v, End)
	case takeBuffered:
		fn(v, nil)
	case takePending:
		c.metrics.setPending(c.name, pending)
	}
	return t, nil
}

// register answers a take from the buffer or queues it. The returned value
// is meaningful for takeBuffered only.
func (c *Channel[T]) register(fn TakeFunc[T], m Matcher[T], withMatcher bool) (t *Taker[T], v T, outcome string, pending int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err = c.checkForbiddenStates("take"); err != nil {
		return nil, v, "", 0, err
	}
	if fn == nil {
		return nil, v, "", 0, usageErr("take", "callback", fn, ErrInvalidCallback)
	}
	if withMatcher && m == nil {
		return nil, v, "", 0, usageErr("take", "matcher", m, ErrInvalidMatcher)
	}
	c.stats.takes++

	t = &Taker[T]{ch: c, fn: fn, match: m}
	switch {
	case c.closed && c.buf.IsEmpty():
		t.done = true
		c.stats.ends++
		return t, v, takeEnd, 0, nil
	case !c.buf.IsEmpty():
		t.done = true
		return t, c.buf.Take(), takeBuffered, 0, nil
	}
	c.takers = append(c.takers, t)
	return t, v, takePending, len(c.takers), nil
}

// Close closes the channel. Every pending taker is called with [End], in
// registration order. Later puts are ignored; later takes drain the buffer
// and then receive End. Closing a closed channel is a no-op.
func (c *Channel[T]) Close() error {
	takers, closed, err := c.close()
	if err != nil || !closed {
		return err
	}

	c.metrics.close(c.name)
	c.metrics.setPending(c.name, 0)
	c.log.WithField("pending", len(takers)).Debug("channel closed")

	var zero T
	for _, t := range takers {
		t.fn(zero, End)
	}
	return nil
}

// close marks the channel closed and returns the takers to answer with End.
// closed is false when the channel was already closed.
func (c *Channel[T]) close() (takers []*Taker[T], closed bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkForbiddenStates("close"); err != nil {
		return nil, false, err
	}
	if c.closed {
		return nil, false, nil
	}
	c.closed = true
	takers = c.takers
	c.takers = nil
	for _, t := range takers {
		t.done = true
	}
	c.stats.ends += int64(len(takers))
	return takers, true, nil
}

// IsClosed reports whether [Channel.Close] has been called.
func (c *Channel[T]) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Pending returns the number of takers waiting for a value.
func (c *Channel[T]) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.takers)
}

// Name returns the channel name used in logs and metrics.
func (c *Channel[T]) Name() string {
	return c.name
}

// Stats returns a snapshot of the channel counters.
func (c *Channel[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Puts:      c.stats.puts,
		Delivered: c.stats.delivered,
		Buffered:  c.stats.buffered,
		Discarded: c.stats.discarded,
		Takes:     c.stats.takes,
		Ends:      c.stats.ends,
		Cancelled: c.stats.cancelled,
		Closed:    c.closed,
		Pending:   len(c.takers),
		BufferLen: -1,
	}
	if sz, ok := c.buf.(buffer.Sizer); ok {
		s.BufferLen = sz.Len()
	}
	if dc, ok := c.buf.(buffer.DropCounter); ok {
		s.BufferDropped = dc.Dropped()
	}
	return s
}

func (c *Channel[T]) cancel(t *Taker[T]) bool {
	c.mu.Lock()
	if t.done {
		c.mu.Unlock()
		return false
	}
	if i := slices.Index(c.takers, t); i >= 0 {
		c.takers = slices.Delete(c.takers, i, i+1)
	}
	t.done = true
	c.stats.cancelled++
	pending := len(c.takers)
	c.mu.Unlock()

	c.metrics.cancel(c.name)
	c.metrics.setPending(c.name, pending)
	return true
}

// observeDrops returns how many values the buffer dropped since the last
// call and its drop total. Callers must hold c.mu.
func (c *Channel[T]) observeDrops() (drops, total uint64) {
	dc, ok := c.buf.(buffer.DropCounter)
	if !ok {
		return 0, 0
	}
	total = dc.Dropped()
	if total <= c.dropped {
		return 0, total
	}
	drops = total - c.dropped
	c.dropped = total
	return drops, total
}

// checkForbiddenStates verifies the channel invariants. Callers must hold
// c.mu.
func (c *Channel[T]) checkForbiddenStates(op string) error {
	var msg string
	switch {
	case c.closed && len(c.takers) > 0:
		msg = "cannot have a closed channel with pending takers"
	case len(c.takers) > 0 && !c.buf.IsEmpty():
		msg = "cannot have pending takers with non empty buffer"
	default:
		return nil
	}
	err := &InternalError{Op: op, Msg: msg}
	c.log.WithError(err).Error("channel invariant violated")
	return err
}
