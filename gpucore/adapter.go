package gpucore

// BufferAdapter abstracts the buffer half of a GPU device.
//
// This is the capability an instance store receives at construction time.
// Implementations must be safe for concurrent use, since several stores
// (one per visual category) typically share one adapter.
//
// Resource lifecycle:
//   - Buffers are created via CreateBuffer
//   - Buffers must be explicitly destroyed via DestroyBuffer
//   - Destroying a buffer while a submitted draw still reads it is undefined behavior
//   - IDs become invalid after destruction and must not be reused
type BufferAdapter interface {
	// MaxBufferSize returns the maximum buffer size in bytes.
	// Stores treat growth past this limit as capacity exhaustion.
	MaxBufferSize() uint64

	// CreateBuffer creates a GPU buffer.
	//
	// Parameters:
	//   - size: buffer size in bytes
	//   - usage: buffer usage flags (bitmask of BufferUsage*)
	//
	// Returns the buffer ID or an error if allocation fails.
	CreateBuffer(size int, usage BufferUsage) (BufferID, error)

	// DestroyBuffer releases a GPU buffer. Unknown IDs are ignored.
	DestroyBuffer(id BufferID)

	// WriteBuffer writes data to a buffer.
	// The write is submitted to the device queue and returns before the
	// device consumes it. Writes are observed in submission order.
	//
	// Parameters:
	//   - id: target buffer
	//   - offset: byte offset into the buffer
	//   - data: data to write
	WriteBuffer(id BufferID, offset uint64, data []byte)

	// ReadBuffer reads data from a buffer.
	// This may cause a GPU-CPU synchronization stall.
	//
	// Parameters:
	//   - id: source buffer
	//   - offset: byte offset into the buffer
	//   - size: number of bytes to read
	//
	// Returns the data or an error if reading fails.
	ReadBuffer(id BufferID, offset, size uint64) ([]byte, error)
}
