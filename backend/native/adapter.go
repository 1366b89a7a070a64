// Package native backs gpucore.BufferAdapter with a gogpu/wgpu HAL device.
package native

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/wireboard/gpucore"
)

// readbackTimeout bounds the fence wait in ReadBuffer.
const readbackTimeout = 5 * time.Second

// halBuffer is a live device buffer tracked by the adapter.
type halBuffer struct {
	buf   hal.Buffer
	size  uint64
	usage gpucore.BufferUsage
}

// HALAdapter implements gpucore.BufferAdapter using gogpu/wgpu/hal directly.
//
// Thread Safety: HALAdapter is safe for concurrent use from multiple goroutines.
// The buffer table is protected by a mutex; device and queue calls are made
// outside of it.
type HALAdapter struct {
	mu     sync.RWMutex
	device hal.Device
	queue  hal.Queue

	limits      gputypes.Limits
	maxBufferSz uint64

	// ID generation
	nextID atomic.Uint64

	// buffers maps gpucore IDs to hal buffers
	buffers map[gpucore.BufferID]halBuffer
}

// NewHALAdapter creates a new HALAdapter wrapping the given device and queue.
// The limits parameter provides the adapter's capability limits.
// If limits is nil, default limits are used.
func NewHALAdapter(device hal.Device, queue hal.Queue, limits *gputypes.Limits) *HALAdapter {
	var lim gputypes.Limits
	if limits != nil {
		lim = *limits
	} else {
		lim = gputypes.DefaultLimits()
	}

	adapter := &HALAdapter{
		device:      device,
		queue:       queue,
		limits:      lim,
		maxBufferSz: lim.MaxBufferSize,
		buffers:     make(map[gpucore.BufferID]halBuffer),
	}

	// Start ID generation at 1 (0 is invalid)
	adapter.nextID.Store(1)

	return adapter
}

// NewHALAdapterFromProvider creates a HALAdapter on the device shared by a
// host application. The provider must implement HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue.
func NewHALAdapterFromProvider(provider gpucontext.DeviceProvider) (*HALAdapter, error) {
	device, queue, err := HALFromProvider(provider)
	if err != nil {
		return nil, err
	}
	return NewHALAdapter(device, queue, nil), nil
}

// HALFromProvider extracts the HAL device and queue from a host provider.
func HALFromProvider(provider any) (hal.Device, hal.Queue, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, nil, fmt.Errorf("%w: provider does not expose HAL types", ErrNoHAL)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, nil, fmt.Errorf("%w: provider HalDevice is not hal.Device", ErrNoHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, nil, fmt.Errorf("%w: provider HalQueue is not hal.Queue", ErrNoHAL)
	}
	return device, queue, nil
}

// newID generates a unique resource ID.
func (a *HALAdapter) newID() gpucore.BufferID {
	return gpucore.BufferID(a.nextID.Add(1) - 1)
}

// Device returns the wrapped HAL device.
func (a *HALAdapter) Device() hal.Device { return a.device }

// Queue returns the wrapped HAL queue.
func (a *HALAdapter) Queue() hal.Queue { return a.queue }

// Limits returns the limits the adapter was created with.
func (a *HALAdapter) Limits() gputypes.Limits { return a.limits }

// MaxBufferSize returns the maximum buffer size in bytes.
func (a *HALAdapter) MaxBufferSize() uint64 {
	return a.maxBufferSz
}

// CreateBuffer creates a GPU buffer.
func (a *HALAdapter) CreateBuffer(size int, usage gpucore.BufferUsage) (gpucore.BufferID, error) {
	if size <= 0 {
		return gpucore.InvalidID, fmt.Errorf("native: buffer size must be positive, got %d", size)
	}
	if a.maxBufferSz > 0 && uint64(size) > a.maxBufferSz {
		return gpucore.InvalidID, fmt.Errorf("%w: %d bytes, limit %d", ErrBufferTooLarge, size, a.maxBufferSz)
	}

	buffer, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "wireboard-instances",
		Size:  uint64(size),
		Usage: convertBufferUsage(usage),
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create buffer: %w", err)
	}

	id := a.newID()

	a.mu.Lock()
	a.buffers[id] = halBuffer{buf: buffer, size: uint64(size), usage: usage}
	a.mu.Unlock()

	slogger().Debug("native: buffer created", "id", id, "size", size)
	return id, nil
}

// DestroyBuffer releases a GPU buffer.
func (a *HALAdapter) DestroyBuffer(id gpucore.BufferID) {
	a.mu.Lock()
	entry, ok := a.buffers[id]
	if ok {
		delete(a.buffers, id)
	}
	a.mu.Unlock()

	if ok {
		a.device.DestroyBuffer(entry.buf)
	}
}

// WriteBuffer writes data to a buffer through the queue. Writes to unknown
// buffers or past the end of the buffer are dropped.
func (a *HALAdapter) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) {
	a.mu.RLock()
	entry, ok := a.buffers[id]
	a.mu.RUnlock()

	if !ok || len(data) == 0 {
		return
	}
	if offset+uint64(len(data)) > entry.size {
		slogger().Warn("native: write past end of buffer dropped",
			"id", id, "offset", offset, "len", len(data), "size", entry.size)
		return
	}
	a.queue.WriteBuffer(entry.buf, offset, data)
}

// ReadBuffer copies a range of a buffer back to the host.
// This operation requires a staging buffer and GPU-CPU synchronization.
// The source buffer must have been created with BufferUsageCopySrc.
func (a *HALAdapter) ReadBuffer(id gpucore.BufferID, offset, size uint64) ([]byte, error) {
	a.mu.RLock()
	entry, ok := a.buffers[id]
	a.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrBufferNotFound, id)
	}
	if offset+size > entry.size {
		return nil, fmt.Errorf("native: read [%d, %d) outside %d-byte buffer", offset, offset+size, entry.size)
	}
	if size == 0 {
		return []byte{}, nil
	}

	staging, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "wireboard-readback",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create staging buffer: %w", err)
	}
	defer a.device.DestroyBuffer(staging)

	encoder, err := a.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "wireboard-readback"})
	if err != nil {
		return nil, fmt.Errorf("native: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("wireboard-readback"); err != nil {
		return nil, fmt.Errorf("native: begin encoding: %w", err)
	}
	encoder.CopyBufferToBuffer(entry.buf, staging, []hal.BufferCopy{
		{SrcOffset: offset, DstOffset: 0, Size: size},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("native: end encoding: %w", err)
	}
	defer a.device.FreeCommandBuffer(cmdBuf)

	fence, err := a.device.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("native: create fence: %w", err)
	}
	defer a.device.DestroyFence(fence)

	if err := a.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return nil, fmt.Errorf("native: submit: %w", err)
	}
	fenceOK, err := a.device.Wait(fence, 1, readbackTimeout)
	if err != nil || !fenceOK {
		return nil, fmt.Errorf("native: wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	out := make([]byte, size)
	if err := a.queue.ReadBuffer(staging, 0, out); err != nil {
		return nil, fmt.Errorf("native: readback: %w", err)
	}
	return out, nil
}

// HalBuffer returns the HAL buffer behind id, for binding it in a render
// pass.
func (a *HALAdapter) HalBuffer(id gpucore.BufferID) (hal.Buffer, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	entry, ok := a.buffers[id]
	return entry.buf, ok
}

// NumBuffers returns the number of live buffers.
func (a *HALAdapter) NumBuffers() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.buffers)
}

// Destroy releases every buffer still owned by the adapter. The device and
// queue belong to the caller and are left alone.
func (a *HALAdapter) Destroy() {
	a.mu.Lock()
	buffers := a.buffers
	a.buffers = make(map[gpucore.BufferID]halBuffer)
	a.mu.Unlock()

	for _, entry := range buffers {
		a.device.DestroyBuffer(entry.buf)
	}
	if len(buffers) > 0 {
		slogger().Debug("native: adapter destroyed", "buffers", len(buffers))
	}
}

// convertBufferUsage converts gpucore.BufferUsage to gputypes.BufferUsage.
func convertBufferUsage(usage gpucore.BufferUsage) gputypes.BufferUsage {
	var result gputypes.BufferUsage

	if usage&gpucore.BufferUsageMapRead != 0 {
		result |= gputypes.BufferUsageMapRead
	}
	if usage&gpucore.BufferUsageMapWrite != 0 {
		result |= gputypes.BufferUsageMapWrite
	}
	if usage&gpucore.BufferUsageCopySrc != 0 {
		result |= gputypes.BufferUsageCopySrc
	}
	if usage&gpucore.BufferUsageCopyDst != 0 {
		result |= gputypes.BufferUsageCopyDst
	}
	if usage&gpucore.BufferUsageIndex != 0 {
		result |= gputypes.BufferUsageIndex
	}
	if usage&gpucore.BufferUsageVertex != 0 {
		result |= gputypes.BufferUsageVertex
	}
	if usage&gpucore.BufferUsageUniform != 0 {
		result |= gputypes.BufferUsageUniform
	}
	if usage&gpucore.BufferUsageStorage != 0 {
		result |= gputypes.BufferUsageStorage
	}
	if usage&gpucore.BufferUsageIndirect != 0 {
		result |= gputypes.BufferUsageIndirect
	}

	return result
}

var _ gpucore.BufferAdapter = (*HALAdapter)(nil)
