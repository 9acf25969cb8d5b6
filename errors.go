package evchan

import (
	"errors"
	"fmt"
)

// Sentinel causes carried by [*UsageError]. Match them with errors.Is.
var (
	ErrUndefinedValue  = errors.New("channel received an undefined value")
	ErrInvalidBuffer   = errors.New("invalid buffer passed to channel factory function")
	ErrInvalidCallback = errors.New("channel.take's callback must be a function")
	ErrInvalidMatcher  = errors.New("channel.take's matcher argument must be a function")
	ErrInvalidSource   = errors.New("in eventChannel: subscribe should return a function to unsubscribe")
	ErrInvalidListener = errors.New("emitter.subscribe's listener must be a function")
)

// UsageError reports a call that violated a precondition. It is returned
// synchronously by the offending call; fix the call site rather than
// retrying.
type UsageError struct {
	// Op is the operation that rejected the call ("put", "take", ...).
	Op string
	// Arg names the offending argument.
	Arg string
	// Value is the offending argument as received.
	Value any
	// Err is one of the Err* sentinels above.
	Err error
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("evchan: %s: invalid %s: %v", e.Op, e.Arg, e.Err)
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// InternalError reports that a channel reached a state its design declares
// unreachable. It always indicates a bug in this package.
type InternalError struct {
	Op  string
	Msg string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf(
		"evchan: inconsistent state detected during %s: %s "+
			"(this is likely a bug in evchan, not in your code; please report it)",
		e.Op, e.Msg,
	)
}

// IsUsageError reports whether err (or any error in its chain) is a
// [*UsageError].
func IsUsageError(err error) bool {
	if err == nil {
		return false
	}
	var ue *UsageError
	return errors.As(err, &ue)
}

// IsInternalError reports whether err (or any error in its chain) is an
// [*InternalError].
func IsInternalError(err error) bool {
	if err == nil {
		return false
	}
	var ie *InternalError
	return errors.As(err, &ie)
}

// OpOf returns the operation recorded in the first [*UsageError] or
// [*InternalError] in err's chain.
func OpOf(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	var ue *UsageError
	if errors.As(err, &ue) {
		return ue.Op, true
	}
	var ie *InternalError
	if errors.As(err, &ie) {
		return ie.Op, true
	}
	return "", false
}

func usageErr(op, arg string, value any, cause error) *UsageError {
	return &UsageError{Op: op, Arg: arg, Value: value, Err: cause}
}
