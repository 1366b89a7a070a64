package instance

import "errors"

// Store errors.
var (
	// ErrNilAdapter is returned by New when no buffer adapter is given.
	ErrNilAdapter = errors.New("instance: buffer adapter is nil")

	// ErrRecordLayout is returned by New when the record type is not a
	// fixed-size, pointer-free, padding-free value type.
	ErrRecordLayout = errors.New("instance: record type has no fixed layout")

	// ErrCapacityExhausted is returned when the device buffer cannot grow
	// to hold the live records.
	ErrCapacityExhausted = errors.New("instance: capacity exhausted")

	// ErrStoreFailed is returned by every Buffer call after a capacity
	// failure. The device mirror no longer matches the packed records and
	// the store must be rebuilt with Rebind.
	ErrStoreFailed = errors.New("instance: store failed")
)
