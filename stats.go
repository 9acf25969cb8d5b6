package evchan

// Stats is a point-in-time snapshot of channel activity.
type Stats struct {
	Puts      int64 // Put calls that passed validation
	Delivered int64 // values handed directly to a waiting taker
	Buffered  int64 // values handed to the buffer
	Discarded int64 // values dropped because no pending taker matched
	Takes     int64 // Take/TakeMatch calls that passed validation
	Ends      int64 // End deliveries
	Cancelled int64 // takers removed by Cancel
	Closed    bool

	Pending int // takers currently waiting

	// BufferLen is the number of buffered values, or -1 when the buffer
	// does not implement buffer.Sizer.
	BufferLen int
	// BufferDropped is the number of values the buffer's overflow policy
	// discarded, or 0 when the buffer does not implement
	// buffer.DropCounter.
	BufferDropped uint64
}

type counters struct {
	puts      int64
	delivered int64
	buffered  int64
	discarded int64
	takes     int64
	ends      int64
	cancelled int64
}
