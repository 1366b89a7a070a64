package native

import "errors"

// Package errors for the HAL backend.
var (
	// ErrNoHAL is returned when a device provider does not expose HAL types.
	ErrNoHAL = errors.New("native: provider does not expose a HAL device")

	// ErrBufferNotFound is returned when an operation names an unknown buffer.
	ErrBufferNotFound = errors.New("native: buffer not found")

	// ErrBufferTooLarge is returned when a buffer exceeds the device limit.
	ErrBufferTooLarge = errors.New("native: buffer exceeds max buffer size")
)
