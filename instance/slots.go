package instance

import "math"

// slotState is the occupancy of one slot table entry.
type slotState uint8

const (
	slotFree slotState = iota
	slotOccupied
)

// slot is the metadata for one handle lineage. packed is only meaningful
// while the slot is occupied.
type slot struct {
	state  slotState
	gen    uint32
	packed uint32
}

// slotTable maps handle slots to packed positions.
//
// Freed slot indices are recycled LIFO through the free list. A slot's
// generation is bumped when it is freed, never when it is reused, so a fresh
// slot starts at generation 0 and every handle issued before a free is stale
// afterwards.
//
// Generations wrap at 2^32. A handle held across 2^32 frees of its slot would
// resolve again; that is accepted rather than prevented.
type slotTable struct {
	slots []slot
	free  []uint32
	live  int
}

// allocate returns an occupied slot and the generation to issue handles under.
func (t *slotTable) allocate() (uint32, uint32) {
	var index uint32
	if n := len(t.free); n > 0 {
		index = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		if uint64(len(t.slots)) > math.MaxUint32 {
			panic("instance: slot table overflow")
		}
		index = uint32(len(t.slots))
		t.slots = append(t.slots, slot{})
	}

	s := &t.slots[index]
	s.state = slotOccupied
	t.live++
	return index, s.gen
}

// release frees an occupied slot and invalidates its outstanding handles.
func (t *slotTable) release(index uint32) {
	s := &t.slots[index]
	if s.state != slotOccupied {
		panic("instance: release of free slot")
	}
	s.state = slotFree
	s.gen++
	s.packed = 0
	t.free = append(t.free, index)
	t.live--
}

// resolve returns the packed position of h, or false if h is stale or was
// never issued by this table.
func (t *slotTable) resolve(h Handle) (int, bool) {
	if uint64(h.slot) >= uint64(len(t.slots)) {
		return 0, false
	}
	s := t.slots[h.slot]
	if s.state != slotOccupied || s.gen != h.gen {
		return 0, false
	}
	return int(s.packed), true
}

// setPackedIndex records the packed position of an occupied slot.
func (t *slotTable) setPackedIndex(index uint32, packed int) {
	t.slots[index].packed = uint32(packed)
}

// handle returns the current handle for an occupied slot.
func (t *slotTable) handle(index uint32) Handle {
	return Handle{slot: index, gen: t.slots[index].gen}
}

// releaseAll frees every occupied slot.
func (t *slotTable) releaseAll() {
	for i := range t.slots {
		if t.slots[i].state == slotOccupied {
			t.release(uint32(i))
		}
	}
}

// occupied returns the number of occupied slots.
func (t *slotTable) occupied() int {
	return t.live
}
