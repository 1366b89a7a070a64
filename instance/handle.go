package instance

import "fmt"

// Handle identifies a record in a Store without owning it.
//
// Handles are small values; copy, store and discard them freely. A handle
// stays valid until the record is removed, after which every operation on it
// is a silent no-op. Two handles are equal iff they refer to the same slot
// under the same generation.
//
// The zero Handle is not special: it is what the first Insert into a fresh
// store returns.
type Handle struct {
	slot uint32
	gen  uint32
}

// Slot returns the slot index the handle refers to.
func (h Handle) Slot() uint32 { return h.slot }

// Generation returns the slot generation the handle was issued under.
func (h Handle) Generation() uint32 { return h.gen }

// String returns a debug representation such as "Handle(3v1)".
func (h Handle) String() string {
	return fmt.Sprintf("Handle(%dv%d)", h.slot, h.gen)
}
