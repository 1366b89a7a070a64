// Package memory provides a host-memory implementation of
// gpucore.BufferAdapter.
//
// It stands in for a graphics device in tests and headless runs: buffers are
// plain byte slices, writes land immediately, and ReadBuffer returns exactly
// what was written. An optional byte budget simulates device out-of-memory.
package memory

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/wireboard/gpucore"
)

// Adapter errors.
var (
	// ErrBudgetExceeded is returned when an allocation would exceed the budget.
	ErrBudgetExceeded = errors.New("memory: buffer budget exceeded")

	// ErrBufferNotFound is returned when reading an unknown buffer.
	ErrBufferNotFound = errors.New("memory: buffer not found")

	// ErrOutOfRange is returned when a read falls outside the buffer.
	ErrOutOfRange = errors.New("memory: range out of bounds")
)

// DefaultMaxBufferSize matches the WebGPU default maxBufferSize limit (256 MiB).
const DefaultMaxBufferSize = 256 << 20

// Stats counts adapter activity.
type Stats struct {
	// BuffersCreated is the number of successful CreateBuffer calls.
	BuffersCreated int

	// BuffersDestroyed is the number of buffers released.
	BuffersDestroyed int

	// Writes is the number of non-empty WriteBuffer calls.
	Writes int

	// BytesWritten is the total payload of all writes.
	BytesWritten uint64

	// LiveBytes is the total size of live buffers.
	LiveBytes uint64
}

type buffer struct {
	data  []byte
	usage gpucore.BufferUsage
}

// Adapter implements gpucore.BufferAdapter in host memory.
//
// Adapter is safe for concurrent use.
type Adapter struct {
	mu      sync.RWMutex
	buffers map[gpucore.BufferID]*buffer
	stats   Stats

	budget  uint64
	maxSize uint64

	nextID atomic.Uint64
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithBudget caps the total bytes of live buffers. Zero means unlimited.
func WithBudget(bytes uint64) Option {
	return func(a *Adapter) {
		a.budget = bytes
	}
}

// WithMaxBufferSize sets the per-buffer size limit reported by MaxBufferSize.
func WithMaxBufferSize(bytes uint64) Option {
	return func(a *Adapter) {
		if bytes > 0 {
			a.maxSize = bytes
		}
	}
}

// New creates an empty adapter.
func New(opts ...Option) *Adapter {
	a := &Adapter{
		buffers: make(map[gpucore.BufferID]*buffer),
		maxSize: DefaultMaxBufferSize,
	}
	for _, opt := range opts {
		opt(a)
	}
	// Start ID generation at 1 (0 is invalid)
	a.nextID.Store(1)
	return a
}

// MaxBufferSize returns the maximum buffer size in bytes.
func (a *Adapter) MaxBufferSize() uint64 {
	return a.maxSize
}

// CreateBuffer allocates a zeroed buffer of size bytes.
func (a *Adapter) CreateBuffer(size int, usage gpucore.BufferUsage) (gpucore.BufferID, error) {
	if size <= 0 {
		return gpucore.InvalidID, fmt.Errorf("buffer size must be positive")
	}
	if uint64(size) > a.maxSize {
		return gpucore.InvalidID, fmt.Errorf("%w: %d bytes exceeds max buffer size %d", ErrBudgetExceeded, size, a.maxSize)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.budget > 0 && a.stats.LiveBytes+uint64(size) > a.budget {
		return gpucore.InvalidID, fmt.Errorf("%w: %d live + %d requested > %d",
			ErrBudgetExceeded, a.stats.LiveBytes, size, a.budget)
	}

	id := gpucore.BufferID(a.nextID.Add(1) - 1)
	a.buffers[id] = &buffer{data: make([]byte, size), usage: usage}
	a.stats.BuffersCreated++
	a.stats.LiveBytes += uint64(size)
	return id, nil
}

// DestroyBuffer releases a buffer.
func (a *Adapter) DestroyBuffer(id gpucore.BufferID) {
	a.mu.Lock()
	defer a.mu.Unlock()

	b, ok := a.buffers[id]
	if !ok {
		return
	}
	delete(a.buffers, id)
	a.stats.BuffersDestroyed++
	a.stats.LiveBytes -= uint64(len(b.data))
}

// WriteBuffer copies data into the buffer at offset. Writes to unknown
// buffers or past the end are dropped, as a real queue would reject them.
func (a *Adapter) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) {
	if len(data) == 0 {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	b, ok := a.buffers[id]
	if !ok || offset+uint64(len(data)) > uint64(len(b.data)) {
		return
	}
	copy(b.data[offset:], data)
	a.stats.Writes++
	a.stats.BytesWritten += uint64(len(data))
}

// ReadBuffer returns a copy of size bytes starting at offset.
func (a *Adapter) ReadBuffer(id gpucore.BufferID, offset, size uint64) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	b, ok := a.buffers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrBufferNotFound, id)
	}
	if offset+size > uint64(len(b.data)) {
		return nil, fmt.Errorf("%w: [%d, %d) of %d", ErrOutOfRange, offset, offset+size, len(b.data))
	}
	out := make([]byte, size)
	copy(out, b.data[offset:offset+size])
	return out, nil
}

// Size returns the size of a live buffer, or 0 if it does not exist.
func (a *Adapter) Size(id gpucore.BufferID) int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if b, ok := a.buffers[id]; ok {
		return len(b.data)
	}
	return 0
}

// Usage returns the usage flags a live buffer was created with.
func (a *Adapter) Usage(id gpucore.BufferID) gpucore.BufferUsage {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if b, ok := a.buffers[id]; ok {
		return b.usage
	}
	return 0
}

// Stats returns a snapshot of adapter counters.
func (a *Adapter) Stats() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stats
}

// ResetStats zeroes the activity counters. LiveBytes is preserved.
func (a *Adapter) ResetStats() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats = Stats{LiveBytes: a.stats.LiveBytes}
}

var _ gpucore.BufferAdapter = (*Adapter)(nil)
