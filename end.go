package evchan

import "errors"

// End is delivered to takers once a channel is closed and its buffer is
// drained. It plays the role io.EOF plays for readers: it is not a failure,
// it means no further value will ever arrive.
var End = errors.New("evchan: channel end")

// IsEnd reports whether err is (or wraps) [End].
func IsEnd(err error) bool {
	return errors.Is(err, End)
}
