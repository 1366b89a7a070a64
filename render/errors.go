package render

import "errors"

var (
	// ErrNilDevice is returned when a renderer is created without a device
	// or queue.
	ErrNilDevice = errors.New("render: device or queue is nil")

	// ErrNilViewport is returned by Draw when no viewport is given.
	ErrNilViewport = errors.New("render: viewport is nil")

	// ErrMissingBuffer is returned by Draw when the instance buffer is not
	// known to the device adapter.
	ErrMissingBuffer = errors.New("render: instance buffer not found on device")
)
