package render

import (
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/wireboard/backend/native"
	"github.com/gogpu/wireboard/instance"
)

func TestWireRendererDrawEmpty(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r, err := NewWireRenderer(device, queue)
	if err != nil {
		t.Fatalf("NewWireRenderer failed: %v", err)
	}
	defer r.Destroy()
	viewport := newTestViewport(t, device, queue)

	pass := newRecordingPass()
	if err := r.Draw(pass, viewport); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if pass.calls != 0 {
		t.Errorf("empty renderer recorded %d calls, want 0", pass.calls)
	}

	h := r.Insert(Pin{Position: image.Pt(1, 1)}.Rect())
	r.Remove(h)
	if err := r.Draw(pass, viewport); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if pass.calls != 0 {
		t.Errorf("drained renderer recorded %d calls, want 0", pass.calls)
	}
}

func TestWireRendererDraw(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r, err := NewWireRenderer(device, queue)
	if err != nil {
		t.Fatalf("NewWireRenderer failed: %v", err)
	}
	defer r.Destroy()
	viewport := newTestViewport(t, device, queue)

	a := r.Insert(Wire{Start: image.Pt(0, 0), End: image.Pt(3, 0)}.Rect())
	r.Insert(Wire{Start: image.Pt(3, 0), End: image.Pt(3, 3), Powered: true}.Rect())
	r.Insert(Pin{Position: image.Pt(3, 3)}.Rect())

	pass := newRecordingPass()
	if err := r.Draw(pass, viewport); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if pass.pipeline == nil {
		t.Error("no pipeline bound")
	}
	if pass.groups[0] != viewport.bindGroup() {
		t.Error("group 0 is not the viewport")
	}
	if pass.groups[1] != r.colorUniform.bindGroup {
		t.Error("group 1 is not the wire color")
	}
	if pass.vertexBuffers[0] == nil || pass.vertexBuffers[1] == nil {
		t.Fatal("quad and instance buffers must both be bound")
	}
	if len(pass.draws) != 1 || pass.draws[0] != [4]uint32{6, 3, 0, 0} {
		t.Fatalf("draws = %v, want [[6 3 0 0]]", pass.draws)
	}

	if !r.Remove(a) {
		t.Fatal("Remove returned false for a live wire")
	}
	if r.Remove(a) {
		t.Error("second Remove returned true")
	}
	r.Update(a, WireRect{}) // stale, ignored

	pass = newRecordingPass()
	if err := r.Draw(pass, viewport); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if len(pass.draws) != 1 || pass.draws[0][1] != 2 {
		t.Fatalf("draws = %v, want instance count 2", pass.draws)
	}
}

func TestWireRendererGrowsInstanceBuffer(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r, err := NewWireRenderer(device, queue, WithStoreOptions(instance.WithInitialCapacity(2)))
	if err != nil {
		t.Fatalf("NewWireRenderer failed: %v", err)
	}
	defer r.Destroy()
	viewport := newTestViewport(t, device, queue)

	for i := range 100 {
		r.Insert(Pin{Position: image.Pt(i, 0)}.Rect())
		pass := newRecordingPass()
		if err := r.Draw(pass, viewport); err != nil {
			t.Fatalf("Draw %d failed: %v", i, err)
		}
		if got := pass.draws[0][1]; got != uint32(i+1) {
			t.Fatalf("instance count = %d, want %d", got, i+1)
		}
	}
	if n := r.batch.adapter.NumBuffers(); n != 1 {
		t.Errorf("adapter holds %d buffers, want 1", n)
	}
}

func TestWireRendererCapacityExhausted(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	limits := gputypes.DefaultLimits()
	limits.MaxBufferSize = 4 * wireInstanceStride
	r, err := NewWireRenderer(device, queue, WithLimits(limits), WithStoreOptions(instance.WithInitialCapacity(1)))
	if err != nil {
		t.Fatalf("NewWireRenderer failed: %v", err)
	}
	defer r.Destroy()
	viewport := newTestViewport(t, device, queue)

	for i := range 5 {
		r.Insert(Pin{Position: image.Pt(i, 0)}.Rect())
	}
	err = r.Draw(newRecordingPass(), viewport)
	if !errors.Is(err, instance.ErrCapacityExhausted) {
		t.Fatalf("Draw error = %v, want ErrCapacityExhausted", err)
	}

	// A new device with room recovers the renderer.
	device2, queue2, cleanup2 := createNoopDevice(t)
	defer cleanup2()
	r.batch.cfg.limits = nil
	if err := r.Rebuild(device2, queue2); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	viewport2 := newTestViewport(t, device2, queue2)
	pass := newRecordingPass()
	if err := r.Draw(pass, viewport2); err != nil {
		t.Fatalf("Draw after Rebuild failed: %v", err)
	}
	if pass.draws[0][1] != 5 {
		t.Errorf("instance count = %d, want 5", pass.draws[0][1])
	}
}

func TestWireRendererRebuildKeepsHandles(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r, err := NewWireRenderer(device, queue)
	if err != nil {
		t.Fatalf("NewWireRenderer failed: %v", err)
	}
	viewport := newTestViewport(t, device, queue)

	h := r.Insert(Pin{}.Rect())
	r.Insert(Pin{Position: image.Pt(1, 0)}.Rect())
	if err := r.Draw(newRecordingPass(), viewport); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	r.UpdateWireColor(WireColor{On: [4]float32{0, 1, 0, 1}})

	device2, queue2, cleanup2 := createNoopDevice(t)
	defer cleanup2()
	if err := r.Rebuild(device2, queue2); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	defer r.Destroy()
	if err := viewport.Rebuild(device2, queue2); err != nil {
		t.Fatalf("viewport Rebuild failed: %v", err)
	}

	if !r.Remove(h) {
		t.Error("handle did not survive Rebuild")
	}
	if r.WireColor().On != [4]float32{0, 1, 0, 1} {
		t.Error("wire color lost on Rebuild")
	}
	pass := newRecordingPass()
	if err := r.Draw(pass, viewport); err != nil {
		t.Fatalf("Draw after Rebuild failed: %v", err)
	}
	if len(pass.draws) != 1 || pass.draws[0][1] != 1 {
		t.Errorf("draws = %v, want one draw of 1 instance", pass.draws)
	}
	if err := r.Rebuild(nil, nil); !errors.Is(err, ErrNilDevice) {
		t.Errorf("Rebuild(nil) error = %v, want ErrNilDevice", err)
	}
}

func TestWireRendererErrors(t *testing.T) {
	if _, err := NewWireRenderer(nil, nil); !errors.Is(err, ErrNilDevice) {
		t.Errorf("NewWireRenderer(nil) error = %v, want ErrNilDevice", err)
	}

	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()
	r, err := NewWireRenderer(device, queue)
	if err != nil {
		t.Fatalf("NewWireRenderer failed: %v", err)
	}
	r.Insert(Pin{}.Rect())
	if err := r.Draw(newRecordingPass(), nil); !errors.Is(err, ErrNilViewport) {
		t.Errorf("Draw(nil viewport) error = %v, want ErrNilViewport", err)
	}

	// Destroying twice should not panic.
	r.Destroy()
	r.Destroy()
}

func TestRendererFromProvider(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	provider := halProvider{device: device, queue: queue, format: gputypes.TextureFormatRGBA8Unorm}
	wires, err := NewWireRendererFromProvider(provider)
	if err != nil {
		t.Fatalf("NewWireRendererFromProvider failed: %v", err)
	}
	defer wires.Destroy()
	if wires.batch.pipeline.format != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("target format = %v, want provider surface format", wires.batch.pipeline.format)
	}

	board, err := NewBoardRendererFromProvider(provider, WithTargetFormat(gputypes.TextureFormatBGRA8Unorm))
	if err != nil {
		t.Fatalf("NewBoardRendererFromProvider failed: %v", err)
	}
	defer board.Destroy()
	if board.batch.pipeline.format != gputypes.TextureFormatBGRA8Unorm {
		t.Error("explicit WithTargetFormat must win over the provider format")
	}

	if _, err := NewWireRendererFromProvider(plainProvider{}); !errors.Is(err, native.ErrNoHAL) {
		t.Errorf("plain provider error = %v, want ErrNoHAL", err)
	}
	if _, err := NewBoardRendererFromProvider(plainProvider{}); !errors.Is(err, native.ErrNoHAL) {
		t.Errorf("plain provider error = %v, want ErrNoHAL", err)
	}
}

func TestBoardRendererDraw(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r, err := NewBoardRenderer(device, queue, WithSampleCount(4))
	if err != nil {
		t.Fatalf("NewBoardRenderer failed: %v", err)
	}
	defer r.Destroy()
	viewport := newTestViewport(t, device, queue)

	chip := r.Insert(Tile{Origin: image.Pt(2, 2), Size: image.Pt(3, 2), Color: color.RGBA{R: 40, G: 40, B: 48, A: 255}})
	r.Insert(Tile{Origin: image.Pt(0, 0), Size: image.Pt(1, 1), Color: color.RGBA{A: 255}})
	r.Update(chip, Tile{Origin: image.Pt(4, 2), Size: image.Pt(3, 2), Color: color.RGBA{R: 255, A: 255}})

	pass := newRecordingPass()
	if err := r.Draw(pass, viewport); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if len(pass.groups) != 1 || pass.groups[0] != viewport.bindGroup() {
		t.Error("board must bind only the viewport at group 0")
	}
	if len(pass.draws) != 1 || pass.draws[0] != [4]uint32{6, 2, 0, 0} {
		t.Fatalf("draws = %v, want [[6 2 0 0]]", pass.draws)
	}

	r.Clear()
	if r.Len() != 0 {
		t.Errorf("Len() after Clear = %d", r.Len())
	}
	if r.Remove(chip) {
		t.Error("Remove after Clear returned true")
	}
}

func TestTileInstance(t *testing.T) {
	inst := newTileInstance(Tile{
		Origin: image.Pt(-1, 2),
		Size:   image.Pt(3, 4),
		Color:  color.RGBA{R: 0x11, G: 0x22, B: 0x33, A: 0x44},
	})
	if inst.Position != [2]float32{-1, 2} || inst.Size != [2]float32{3, 4} {
		t.Errorf("geometry = %v %v", inst.Position, inst.Size)
	}
	if inst.Color != 0x44332211 {
		t.Errorf("Color = %#x, want 0x44332211", inst.Color)
	}
	if layout := tileInstanceLayout(); layout.ArrayStride != tileInstanceStride {
		t.Errorf("ArrayStride = %d, want %d", layout.ArrayStride, tileInstanceStride)
	}
}

func TestRendererSPIRV(t *testing.T) {
	if _, err := compileSPIRV(wireShaderSource); err != nil {
		if strings.Contains(err.Error(), "not yet implemented") || strings.Contains(err.Error(), "not supported") {
			t.Skipf("Skipping: naga feature not yet implemented: %v", err)
		}
	}

	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r, err := NewWireRenderer(device, queue, WithSPIRV())
	if err != nil {
		t.Fatalf("NewWireRenderer failed: %v", err)
	}
	defer r.Destroy()
	viewport := newTestViewport(t, device, queue)

	r.Insert(Pin{}.Rect())
	pass := newRecordingPass()
	if err := r.Draw(pass, viewport); err != nil {
		t.Fatalf("Draw with SPIR-V shader failed: %v", err)
	}
	if !r.batch.pipeline.spirv {
		t.Error("pipeline not configured for SPIR-V")
	}
}
