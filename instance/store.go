package instance

import (
	"fmt"
	"iter"

	"github.com/gogpu/wireboard/gpucore"
)

// View describes the device buffer holding a store's live records, ready to
// be bound as a per-instance vertex source.
type View struct {
	// Buffer holds the first Count records in packed order.
	Buffer gpucore.BufferID

	// Count is the number of live records, the instance count of the draw.
	Count uint32

	// Stride is the size of one record in bytes.
	Stride uint64
}

// Size returns the byte length of the live range.
func (v View) Size() uint64 {
	return uint64(v.Count) * v.Stride
}

// Store is a dynamic instance store for records of type T.
//
// See the package documentation for the structure and layout rules.
type Store[T any] struct {
	label  string
	stride int

	slots  slotTable
	packed packedStore[T]
	mirror mirror

	// failed is set by a capacity failure and returned by every Buffer call
	// until Rebind.
	failed error

	metrics storeMetrics
}

// New creates an empty store whose device mirror is allocated through
// adapter. No device memory is allocated until the first Buffer call with
// live records.
//
// Returns ErrNilAdapter if adapter is nil and ErrRecordLayout if T cannot be
// copied to the device as raw memory.
func New[T any](adapter gpucore.BufferAdapter, opts ...Option) (*Store[T], error) {
	if adapter == nil {
		return nil, ErrNilAdapter
	}
	stride, err := recordStride[T]()
	if err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var dirty dirtyTracker = &fullRange{}
	if o.dirtyTracking {
		dirty = newIndexRuns()
	}

	s := &Store[T]{
		label:  o.label,
		stride: stride,
		packed: packedStore[T]{
			data:   make([]T, 0, o.initialCapacity),
			owners: make([]uint32, 0, o.initialCapacity),
			dirty:  dirty,
		},
		mirror: mirror{
			adapter: adapter,
			usage:   o.usage,
			label:   o.label,
			stride:  stride,
			minCap:  o.initialCapacity,
		},
		metrics: newStoreMetrics(o.label),
	}
	return s, nil
}

// Insert adds a record and returns its handle. Insert never fails; device
// growth is deferred to Buffer.
func (s *Store[T]) Insert(rec T) Handle {
	slot, gen := s.slots.allocate()
	s.slots.setPackedIndex(slot, s.packed.push(slot, rec))
	s.metrics.live.Inc()
	return Handle{slot: slot, gen: gen}
}

// Update replaces the record of h in place. Updates through a stale handle
// are ignored.
func (s *Store[T]) Update(h Handle, rec T) {
	i, ok := s.slots.resolve(h)
	if !ok {
		s.metrics.staleUpdates.Inc()
		slogger().Debug("instance: update through stale handle", "store", s.label, "handle", h)
		return
	}
	s.packed.set(i, rec)
}

// Remove deletes the record of h and reports whether it was live. Removing
// a stale handle, including one already removed, returns false and changes
// nothing.
func (s *Store[T]) Remove(h Handle) bool {
	i, ok := s.slots.resolve(h)
	if !ok {
		s.metrics.staleRemoves.Inc()
		slogger().Debug("instance: remove through stale handle", "store", s.label, "handle", h)
		return false
	}
	if moved, ok := s.packed.swapRemove(i); ok {
		s.slots.setPackedIndex(moved, i)
	}
	s.slots.release(h.slot)
	s.metrics.live.Dec()
	return true
}

// Len returns the number of live records.
func (s *Store[T]) Len() int {
	return s.packed.len()
}

// Contains reports whether h refers to a live record.
func (s *Store[T]) Contains(h Handle) bool {
	_, ok := s.slots.resolve(h)
	return ok
}

// Get returns the record of h, or false if h is stale.
func (s *Store[T]) Get(h Handle) (T, bool) {
	i, ok := s.slots.resolve(h)
	if !ok {
		var zero T
		return zero, false
	}
	return s.packed.data[i], true
}

// Records returns the live records in packed order, the same order as the
// device buffer. The slice aliases store memory and is invalidated by the
// next Insert, Remove or Clear; do not modify it.
func (s *Store[T]) Records() []T {
	n := s.packed.len()
	return s.packed.data[:n:n]
}

// All returns an iterator over live handles and records in packed order.
// The store must not be modified during iteration.
func (s *Store[T]) All() iter.Seq2[Handle, T] {
	return func(yield func(Handle, T) bool) {
		for i, rec := range s.packed.data {
			if !yield(s.slots.handle(s.packed.owners[i]), rec) {
				return
			}
		}
	}
}

// Clear removes every record. All outstanding handles become stale. The
// device buffer is kept for reuse.
func (s *Store[T]) Clear() {
	n := s.packed.len()
	s.slots.releaseAll()
	s.packed.truncate()
	s.metrics.live.Sub(float64(n))
}

// Buffer synchronizes the device mirror with the packed records and returns
// a view of it.
//
// ok is false when the store is empty; callers must skip the draw entirely.
// Otherwise the view's buffer holds the first Len() records in packed order,
// reflecting every Insert, Update and Remove made before this call. Uploads
// are submitted, not awaited.
//
// A non-nil error means the device buffer could not grow. The error wraps
// ErrCapacityExhausted and ErrStoreFailed, and is returned again by every
// later call until Rebind.
func (s *Store[T]) Buffer() (View, bool, error) {
	if s.failed != nil {
		return View{}, false, s.failed
	}

	live := s.packed.len()
	if live == 0 {
		return View{}, false, nil
	}

	grown, err := s.mirror.ensure(live)
	if err != nil {
		s.failed = fmt.Errorf("%w: %w", ErrStoreFailed, err)
		slogger().Warn("instance: device buffer growth failed", "store", s.label, "live", live, "err", err)
		return View{}, false, s.failed
	}
	if grown {
		s.metrics.reallocations.Inc()
		s.packed.dirty.markAll()
	}

	raw := recordBytes(s.packed.data)
	s.packed.dirty.flush(live, func(start, end int) {
		chunk := raw[start*s.stride : end*s.stride]
		s.mirror.write(start, chunk)
		s.metrics.uploadedBytes.Add(float64(len(chunk)))
	})

	return View{
		Buffer: s.mirror.id,
		Count:  uint32(live),
		Stride: uint64(s.stride),
	}, true, nil
}

// Capacity returns how many records the current device buffer can hold.
// It is 0 before the first successful Buffer call.
func (s *Store[T]) Capacity() int {
	return s.mirror.capacity
}

// Rebind moves the store onto a new adapter after the previous device was
// lost or after a capacity failure. Host records and handles are untouched;
// the next Buffer call allocates a fresh device buffer and uploads
// everything.
//
// With a non-nil adapter the old buffer is abandoned, not destroyed, since
// it belongs to the previous device. Rebind(nil) keeps the current adapter
// and destroys the old buffer through it.
func (s *Store[T]) Rebind(adapter gpucore.BufferAdapter) {
	if adapter == nil {
		s.mirror.release()
	} else {
		s.mirror.detach(adapter)
	}
	s.packed.dirty.markAll()
	s.failed = nil
	slogger().Warn("instance: store rebound to new device", "store", s.label, "live", s.packed.len())
}

// Destroy releases the device buffer. The store can still be used; the next
// Buffer call allocates again.
func (s *Store[T]) Destroy() {
	s.mirror.release()
	s.packed.dirty.markAll()
}

// Label returns the name given with WithLabel.
func (s *Store[T]) Label() string {
	return s.label
}
