package instance

import (
	"encoding/binary"
	"fmt"
	"unsafe"
)

// recordStride returns the byte size of T after checking that T can be
// copied to the device as raw memory.
//
// binary.Size reports -1 for anything holding pointers, slices, strings or
// platform-sized integers, and it counts only declared fields, so a mismatch
// with unsafe.Sizeof means the compiler inserted padding.
func recordStride[T any]() (int, error) {
	var zero T
	size := int(unsafe.Sizeof(zero))
	encoded := binary.Size(zero)
	switch {
	case size == 0:
		return 0, fmt.Errorf("%w: %T is zero-sized", ErrRecordLayout, zero)
	case encoded < 0:
		return 0, fmt.Errorf("%w: %T is not a fixed-size value type", ErrRecordLayout, zero)
	case encoded != size:
		return 0, fmt.Errorf("%w: %T has %d bytes of implicit padding", ErrRecordLayout, zero, size-encoded)
	}
	return size, nil
}

// recordBytes views a slice of records as raw bytes without copying.
func recordBytes[T any](recs []T) []byte {
	if len(recs) == 0 {
		return nil
	}
	var zero T
	n := len(recs) * int(unsafe.Sizeof(zero))
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(recs))), n)
}
