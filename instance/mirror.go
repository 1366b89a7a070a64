package instance

import (
	"fmt"
	"math/bits"

	"github.com/gogpu/wireboard/gpucore"
)

// mirror owns the device buffer that holds a copy of the packed records.
//
// Capacity is counted in records and only grows; growth reallocates at the
// next power of two at or above the live count and forces a full re-upload.
type mirror struct {
	adapter gpucore.BufferAdapter
	usage   gpucore.BufferUsage
	label   string
	stride  int
	minCap  int

	id       gpucore.BufferID
	capacity int
}

// ensure makes the device buffer large enough for live records. It reports
// whether a new buffer was created, in which case its contents are undefined
// until fully re-uploaded.
func (m *mirror) ensure(live int) (bool, error) {
	if m.id != gpucore.InvalidID && m.capacity >= live {
		return false, nil
	}

	capacity := growCapacity(live, m.minCap)
	limit := uint64(maxInt)
	if maxSize := m.adapter.MaxBufferSize(); maxSize > 0 {
		limit = min(limit, maxSize)
	}
	maxRecords := int(limit / uint64(m.stride))
	if capacity > maxRecords {
		// The power of two overshoots; settle for what the device allows.
		capacity = maxRecords
	}
	if capacity < live {
		return false, fmt.Errorf("%w: %d records of %d bytes exceed max buffer size %d",
			ErrCapacityExhausted, live, m.stride, m.adapter.MaxBufferSize())
	}

	size := capacity * m.stride
	id, err := m.adapter.CreateBuffer(size, m.usage)
	if err != nil {
		return false, fmt.Errorf("%w: create %d-byte buffer: %w", ErrCapacityExhausted, size, err)
	}

	old := m.id
	m.id = id
	m.capacity = capacity
	if old != gpucore.InvalidID {
		m.adapter.DestroyBuffer(old)
	}

	slogger().Debug("instance: device buffer allocated",
		"store", m.label,
		"records", capacity,
		"bytes", size,
		"live", live)
	return true, nil
}

// write uploads raw record bytes starting at packed position first.
func (m *mirror) write(first int, data []byte) {
	m.adapter.WriteBuffer(m.id, uint64(first*m.stride), data)
}

// release destroys the device buffer, if any.
func (m *mirror) release() {
	if m.id != gpucore.InvalidID {
		m.adapter.DestroyBuffer(m.id)
	}
	m.id = gpucore.InvalidID
	m.capacity = 0
}

// detach forgets the device buffer without destroying it. Used when the
// buffer belongs to a lost device.
func (m *mirror) detach(adapter gpucore.BufferAdapter) {
	m.adapter = adapter
	m.id = gpucore.InvalidID
	m.capacity = 0
}

const maxInt = int(^uint(0) >> 1)

// growCapacity returns the smallest power of two that is at least both live
// and floor.
func growCapacity(live, floor int) int {
	n := max(live, floor, 1)
	if n&(n-1) == 0 {
		return n
	}
	shift := bits.Len(uint(n))
	if shift >= bits.UintSize-1 {
		return maxInt
	}
	return 1 << shift
}
