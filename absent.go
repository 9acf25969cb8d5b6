package evchan

import "reflect"

// isAbsent reports whether v is the Go counterpart of "no value": a nil
// interface, pointer, map, channel, func or unsafe pointer. Zero values and
// nil slices are ordinary payloads.
func isAbsent(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Chan,
		reflect.Func, reflect.UnsafePointer:
		return rv.IsNil()
	}
	return false
}
