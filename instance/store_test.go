package instance

import (
	"bytes"
	"encoding/binary"
	"math/rand/v2"
	"testing"

	"github.com/gogpu/wireboard/backend/memory"
	"github.com/gogpu/wireboard/gpucore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rect has the layout of a wire instance: position, size, powered flag.
type rect struct {
	Position [2]float32
	Size     [2]float32
	Flag     uint32
}

const rectStride = 20

func rectN(n int) rect {
	return rect{
		Position: [2]float32{float32(n), float32(-n)},
		Size:     [2]float32{1, 0.125},
		Flag:     uint32(n),
	}
}

func newTestStore(t *testing.T, opts ...Option) (*Store[rect], *memory.Adapter) {
	t.Helper()
	a := memory.New()
	s, err := New[rect](a, opts...)
	require.NoError(t, err)
	t.Cleanup(s.Destroy)
	return s, a
}

// readBack decodes the live range of the store's device buffer.
func readBack(t *testing.T, a *memory.Adapter, v View) []rect {
	t.Helper()
	raw, err := a.ReadBuffer(v.Buffer, 0, v.Size())
	require.NoError(t, err)
	out := make([]rect, v.Count)
	require.NoError(t, binary.Read(bytes.NewReader(raw), binary.LittleEndian, out))
	return out
}

// mustBuffer syncs the store and returns the decoded device contents.
func mustBuffer(t *testing.T, s *Store[rect], a *memory.Adapter) []rect {
	t.Helper()
	v, ok, err := s.Buffer()
	require.NoError(t, err)
	if !ok {
		return nil
	}
	assert.Equal(t, uint64(rectStride), v.Stride)
	return readBack(t, a, v)
}

func TestStoreRemoveMiddleSwapsLast(t *testing.T) {
	s, a := newTestStore(t)
	A, B, C := rectN(1), rectN(2), rectN(3)

	hA := s.Insert(A)
	hB := s.Insert(B)
	hC := s.Insert(C)
	require.Equal(t, 3, s.Len())

	posB, ok := s.slots.resolve(hB)
	require.True(t, ok)

	assert.True(t, s.Remove(hB))
	assert.Equal(t, 2, s.Len())

	posC, ok := s.slots.resolve(hC)
	require.True(t, ok)
	assert.Equal(t, posB, posC, "C must move into B's packed position")

	assert.ElementsMatch(t, []rect{A, C}, mustBuffer(t, s, a))

	assert.False(t, s.Remove(hB))
	assert.Equal(t, 2, s.Len())
	assert.ElementsMatch(t, []rect{A, C}, mustBuffer(t, s, a))

	got, ok := s.Get(hA)
	require.True(t, ok)
	assert.Equal(t, A, got)
}

func TestStoreUpdateAfterRemoveIsNoop(t *testing.T) {
	s, a := newTestStore(t)
	hA := s.Insert(rectN(1))
	s.Insert(rectN(2))
	require.True(t, s.Remove(hA))
	before := mustBuffer(t, s, a)

	s.Update(hA, rectN(99))

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, before, mustBuffer(t, s, a))
	_, ok := s.Get(hA)
	assert.False(t, ok)
	assert.False(t, s.Contains(hA))
}

func TestStoreRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	handles := make([]Handle, 10)
	for i := range handles {
		handles[i] = s.Insert(rectN(i))
	}
	for i, h := range handles {
		want := rectN(1000 + i)
		s.Update(h, want)
		got, ok := s.Get(h)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestStoreStaleAfterRemove(t *testing.T) {
	s, _ := newTestStore(t)
	var handles []Handle
	for i := range 8 {
		handles = append(handles, s.Insert(rectN(i)))
	}
	for _, h := range handles {
		require.True(t, s.Remove(h))
		assert.False(t, s.Remove(h), "second remove of %v", h)
		s.Update(h, rectN(-1))
		assert.False(t, s.Contains(h))
	}
	assert.Equal(t, 0, s.Len())
}

func TestStoreHandlesSurviveSlotReuse(t *testing.T) {
	s, _ := newTestStore(t)
	old := s.Insert(rectN(1))
	require.True(t, s.Remove(old))

	reused := s.Insert(rectN(2))
	assert.Equal(t, old.Slot(), reused.Slot())
	assert.NotEqual(t, old, reused)

	s.Update(old, rectN(3))
	assert.False(t, s.Remove(old))

	got, ok := s.Get(reused)
	require.True(t, ok)
	assert.Equal(t, rectN(2), got)
}

func TestStoreBufferEmpty(t *testing.T) {
	s, a := newTestStore(t)

	_, ok, err := s.Buffer()
	require.NoError(t, err)
	assert.False(t, ok)

	h := s.Insert(rectN(1))
	s.Remove(h)
	_, ok, err = s.Buffer()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, a.Stats().BuffersCreated, "no device memory for an empty store")
}

// TestStoreRandomOps drives the store with a random workload and checks it
// against a map model after every batch.
func TestStoreRandomOps(t *testing.T) {
	s, a := newTestStore(t, WithInitialCapacity(2))
	rng := rand.New(rand.NewPCG(1, 2))

	model := make(map[Handle]rect)
	var issued []Handle

	for step := range 5000 {
		switch op := rng.IntN(10); {
		case op < 5 || len(issued) == 0:
			rec := rectN(step)
			h := s.Insert(rec)
			_, dup := model[h]
			require.False(t, dup, "insert returned live handle %v", h)
			model[h] = rec
			issued = append(issued, h)
		case op < 7:
			h := issued[rng.IntN(len(issued))]
			rec := rectN(-step)
			s.Update(h, rec)
			if _, live := model[h]; live {
				model[h] = rec
			}
		default:
			h := issued[rng.IntN(len(issued))]
			_, live := model[h]
			assert.Equal(t, live, s.Remove(h))
			delete(model, h)
		}

		if step%97 == 0 {
			require.Equal(t, len(model), s.Len())
			got := mustBuffer(t, s, a)
			want := make([]rect, 0, len(model))
			for _, rec := range model {
				want = append(want, rec)
			}
			require.ElementsMatch(t, want, got)
			if len(got) > 0 {
				require.Equal(t, s.Records(), got, "device buffer must follow packed order")
			}
		}
	}

	for h, want := range model {
		got, ok := s.Get(h)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestStoreCapacityGrowth(t *testing.T) {
	s, a := newTestStore(t, WithInitialCapacity(4))

	const n = 1000
	handles := make([]Handle, 0, n)
	for i := range n {
		handles = append(handles, s.Insert(rectN(i)))
		if i%37 == 0 {
			_, _, err := s.Buffer()
			require.NoError(t, err)
		}
	}

	got := mustBuffer(t, s, a)
	require.Len(t, got, n)
	assert.Equal(t, 1024, s.Capacity())

	i := 0
	for h, rec := range s.All() {
		assert.Equal(t, rec, got[i])
		viaHandle, ok := s.Get(h)
		require.True(t, ok)
		assert.Equal(t, rec, viaHandle)
		i++
	}
	assert.Equal(t, n, i)

	for i, h := range handles {
		rec, ok := s.Get(h)
		require.True(t, ok)
		assert.Equal(t, rectN(i), rec)
	}

	st := a.Stats()
	assert.Equal(t, st.BuffersCreated-1, st.BuffersDestroyed, "only the current buffer stays alive")
}

func TestStoreNeverShrinks(t *testing.T) {
	s, a := newTestStore(t, WithInitialCapacity(4))
	var handles []Handle
	for i := range 20 {
		handles = append(handles, s.Insert(rectN(i)))
	}
	mustBuffer(t, s, a)
	require.Equal(t, 32, s.Capacity())

	for _, h := range handles[:18] {
		s.Remove(h)
	}
	assert.Len(t, mustBuffer(t, s, a), 2)
	assert.Equal(t, 32, s.Capacity())
}

func TestStoreFullRangeUpload(t *testing.T) {
	s, a := newTestStore(t)
	handles := make([]Handle, 10)
	for i := range handles {
		handles[i] = s.Insert(rectN(i))
	}
	mustBuffer(t, s, a)
	a.ResetStats()

	_, _, err := s.Buffer()
	require.NoError(t, err)
	assert.Equal(t, 0, a.Stats().Writes, "nothing changed since last sync")

	s.Update(handles[3], rectN(33))
	mustBuffer(t, s, a)
	st := a.Stats()
	assert.Equal(t, 1, st.Writes)
	assert.Equal(t, uint64(10*rectStride), st.BytesWritten)
}

func TestStoreDirtyTracking(t *testing.T) {
	s, a := newTestStore(t, WithDirtyTracking())
	handles := make([]Handle, 10)
	for i := range handles {
		handles[i] = s.Insert(rectN(i))
	}
	mustBuffer(t, s, a)
	a.ResetStats()

	s.Update(handles[3], rectN(33))
	got := mustBuffer(t, s, a)
	st := a.Stats()
	assert.Equal(t, 1, st.Writes)
	assert.Equal(t, uint64(rectStride), st.BytesWritten)
	assert.Equal(t, s.Records(), got)

	// Removing from the middle rewrites only the hole; the old last slot
	// falls outside the live range.
	a.ResetStats()
	require.True(t, s.Remove(handles[5]))
	got = mustBuffer(t, s, a)
	st = a.Stats()
	assert.Equal(t, 1, st.Writes)
	assert.Equal(t, uint64(rectStride), st.BytesWritten)
	assert.Equal(t, s.Records(), got)

	a.ResetStats()
	s.Update(handles[0], rectN(100))
	s.Update(handles[1], rectN(101))
	s.Update(handles[8], rectN(108))
	got = mustBuffer(t, s, a)
	assert.Equal(t, 2, a.Stats().Writes, "adjacent updates coalesce into one run")
	assert.Equal(t, s.Records(), got)
}

func TestStoreCapacityExhausted(t *testing.T) {
	a := memory.New(memory.WithMaxBufferSize(8 * rectStride))
	s, err := New[rect](a)
	require.NoError(t, err)

	for i := range 5 {
		s.Insert(rectN(i))
	}
	_, ok, err := s.Buffer()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 8, s.Capacity(), "growth is clamped to the device limit")

	for i := range 4 {
		s.Insert(rectN(10 + i))
	}
	_, ok, err = s.Buffer()
	require.Error(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrCapacityExhausted)
	assert.ErrorIs(t, err, ErrStoreFailed)

	// The failure is sticky even once the records would fit again.
	for h := range s.All() {
		s.Remove(h)
		break
	}
	_, _, err2 := s.Buffer()
	assert.ErrorIs(t, err2, ErrStoreFailed)

	bigger := memory.New()
	s.Rebind(bigger)
	v, ok, err := s.Buffer()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, s.Records(), readBack(t, bigger, v))
}

func TestStoreRebindSameAdapter(t *testing.T) {
	s, a := newTestStore(t)
	s.Insert(rectN(1))
	s.Insert(rectN(2))
	mustBuffer(t, s, a)

	s.Rebind(nil)
	assert.Equal(t, 1, a.Stats().BuffersDestroyed)

	got := mustBuffer(t, s, a)
	assert.Equal(t, s.Records(), got)
	assert.Equal(t, 2, a.Stats().BuffersCreated)
}

func TestStoreClear(t *testing.T) {
	s, a := newTestStore(t)
	var handles []Handle
	for i := range 6 {
		handles = append(handles, s.Insert(rectN(i)))
	}
	mustBuffer(t, s, a)

	s.Clear()
	assert.Equal(t, 0, s.Len())
	for _, h := range handles {
		assert.False(t, s.Contains(h))
		assert.False(t, s.Remove(h))
	}
	_, ok, err := s.Buffer()
	require.NoError(t, err)
	assert.False(t, ok)

	h := s.Insert(rectN(7))
	assert.Equal(t, []rect{rectN(7)}, mustBuffer(t, s, a))
	assert.True(t, s.Contains(h))
	assert.Equal(t, 1, a.Stats().BuffersCreated, "buffer is reused after Clear")
}

func TestStoreDestroyReallocates(t *testing.T) {
	s, a := newTestStore(t)
	s.Insert(rectN(1))
	mustBuffer(t, s, a)

	s.Destroy()
	assert.Equal(t, 0, s.Capacity())
	assert.Equal(t, uint64(0), a.Stats().LiveBytes)

	assert.Equal(t, []rect{rectN(1)}, mustBuffer(t, s, a))
}

func TestStoreUsageAndLabel(t *testing.T) {
	s, a := newTestStore(t, WithLabel("pins"), WithUsage(gpucore.BufferUsageStorage))
	s.Insert(rectN(1))
	v, ok, err := s.Buffer()
	require.NoError(t, err)
	require.True(t, ok)

	usage := a.Usage(v.Buffer)
	assert.True(t, usage.Contains(gpucore.BufferUsageVertex|gpucore.BufferUsageCopyDst|gpucore.BufferUsageStorage))
	assert.Equal(t, "pins", s.Label())
	assert.Equal(t, DefaultInitialCapacity*rectStride, a.Size(v.Buffer))
}

func TestNewRejectsLayouts(t *testing.T) {
	a := memory.New()

	type padded struct {
		A uint8
		B uint32
	}
	type pointer struct{ P *int }
	type str struct{ S string }

	_, err := New[padded](a)
	assert.ErrorIs(t, err, ErrRecordLayout)
	_, err = New[pointer](a)
	assert.ErrorIs(t, err, ErrRecordLayout)
	_, err = New[str](a)
	assert.ErrorIs(t, err, ErrRecordLayout)
	_, err = New[struct{}](a)
	assert.ErrorIs(t, err, ErrRecordLayout)
	_, err = New[int](a)
	assert.ErrorIs(t, err, ErrRecordLayout)

	type explicit struct {
		A uint8
		_ [3]byte
		B uint32
	}
	_, err = New[explicit](a)
	assert.NoError(t, err)

	_, err = New[rect](nil)
	assert.ErrorIs(t, err, ErrNilAdapter)
}

func TestHandleString(t *testing.T) {
	assert.Equal(t, "Handle(3v1)", Handle{slot: 3, gen: 1}.String())
	h := Handle{slot: 5, gen: 9}
	assert.Equal(t, uint32(5), h.Slot())
	assert.Equal(t, uint32(9), h.Generation())
}
