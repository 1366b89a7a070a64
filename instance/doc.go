// Package instance implements a dynamic instance store: a packed array of
// fixed-layout records addressed through stable handles and mirrored into a
// device buffer for a single instanced draw call.
//
// One [Store] is created per visual category (wires and pins, board tiles).
// Callers insert records and keep the returned [Handle]; the store is free to
// reorder its packed array on removal, so handles are the only stable way to
// refer to a record.
//
// # Structure
//
// A Store composes three parts:
//
//   - a slot table mapping handle slots to packed positions, with a
//     generation counter per slot so that handles to removed records go stale
//     instead of aliasing whatever reuses the slot
//   - a packed store holding live records densely in [0, Len()), removed in
//     O(1) by moving the last record into the hole
//   - a device mirror, a buffer created through a gpucore.BufferAdapter that
//     is grown geometrically and re-uploaded lazily on Buffer
//
// # Usage
//
//	store, err := instance.New[wireInstance](adapter, instance.WithLabel("wires"))
//	if err != nil {
//	    return err
//	}
//	defer store.Destroy()
//
//	h := store.Insert(wireInstance{Position: [2]float32{1, 2}, Size: [2]float32{3, 0.125}})
//	store.Update(h, next)
//	store.Remove(h)
//
//	view, ok, err := store.Buffer()
//	if err != nil {
//	    return err // store must be rebuilt
//	}
//	if ok {
//	    pass.SetVertexBuffer(1, buffers.HalBuffer(view.Buffer), 0)
//	    pass.Draw(6, view.Count, 0, 0)
//	}
//
// # Record Layout
//
// Records are copied to the device as raw memory. A record type must be a
// fixed-size value type without pointers or implicit padding; [New] rejects
// anything else with [ErrRecordLayout]. Bytes are uploaded in host order,
// which is little-endian on every platform wgpu supports.
//
// # Concurrency
//
// A Store is not safe for concurrent use. All calls are expected from the
// render loop; callers that mutate from several goroutines must serialize
// access themselves.
package instance
