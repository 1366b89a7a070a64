package instance

// packedStore holds live records densely in [0, len()).
//
// data and owners are parallel: owners[i] is the slot index of the record at
// data[i]. Order carries no meaning outside the store.
type packedStore[T any] struct {
	data   []T
	owners []uint32
	dirty  dirtyTracker
}

// push appends a record owned by slot and returns its packed position.
func (p *packedStore[T]) push(owner uint32, rec T) int {
	i := len(p.data)
	p.data = append(p.data, rec)
	p.owners = append(p.owners, owner)
	p.dirty.mark(i)
	return i
}

// set overwrites the record at packed position i.
func (p *packedStore[T]) set(i int, rec T) {
	p.data[i] = rec
	p.dirty.mark(i)
}

// swapRemove removes the record at packed position i by moving the last
// record into its place. It returns the slot of the record that now lives at
// i, or false if the removed record was already last.
func (p *packedStore[T]) swapRemove(i int) (uint32, bool) {
	last := len(p.data) - 1
	moved := i != last
	if moved {
		p.data[i] = p.data[last]
		p.owners[i] = p.owners[last]
		p.dirty.mark(i)
		p.dirty.mark(last)
	}

	var zero T
	p.data[last] = zero
	p.data = p.data[:last]
	p.owners = p.owners[:last]

	if !moved {
		return 0, false
	}
	return p.owners[i], true
}

// len returns the number of live records.
func (p *packedStore[T]) len() int {
	return len(p.data)
}

// truncate drops all records, keeping the backing arrays.
func (p *packedStore[T]) truncate() {
	clear(p.data)
	p.data = p.data[:0]
	p.owners = p.owners[:0]
	p.dirty.markAll()
}
