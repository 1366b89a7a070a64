package instance

import "github.com/RoaringBitmap/roaring/v2"

// dirtyTracker decides which packed positions must be re-uploaded on the
// next Buffer call.
type dirtyTracker interface {
	// mark flags packed position i as changed.
	mark(i int)

	// markAll forces the next flush to cover the whole live range.
	markAll()

	// flush calls upload for every dirty run [start, end) inside [0, live)
	// in ascending order and clears the tracked state.
	flush(live int, upload func(start, end int))
}

// fullRange re-uploads all live records whenever anything changed.
type fullRange struct {
	changed bool
}

func (d *fullRange) mark(int) { d.changed = true }
func (d *fullRange) markAll() { d.changed = true }

func (d *fullRange) flush(live int, upload func(start, end int)) {
	if d.changed && live > 0 {
		upload(0, live)
	}
	d.changed = false
}

// indexRuns tracks individual dirty positions in a bitmap and uploads them
// as coalesced contiguous runs.
type indexRuns struct {
	set *roaring.Bitmap
	all bool
}

func newIndexRuns() *indexRuns {
	return &indexRuns{set: roaring.New()}
}

func (d *indexRuns) mark(i int) {
	if !d.all {
		d.set.Add(uint32(i))
	}
}

func (d *indexRuns) markAll() {
	d.all = true
	d.set.Clear()
}

func (d *indexRuns) flush(live int, upload func(start, end int)) {
	defer func() {
		d.all = false
		d.set.Clear()
	}()

	if live == 0 {
		return
	}
	if d.all {
		upload(0, live)
		return
	}

	start, end := -1, -1
	it := d.set.Iterator()
	for it.HasNext() {
		i := int(it.Next())
		if i >= live {
			break
		}
		if i == end {
			end++
			continue
		}
		if start >= 0 {
			upload(start, end)
		}
		start, end = i, i+1
	}
	if start >= 0 {
		upload(start, end)
	}
}
