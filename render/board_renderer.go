package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/wireboard/backend/native"
)

// Tile is a filled rectangle of board tiles, such as a chip body or a
// selection highlight.
type Tile struct {
	Origin image.Point
	Size   image.Point
	Color  color.RGBA
}

// tileInstance is the per-instance vertex record of the board pipeline.
//
//	position (vec2<f32>) = 8 bytes (location 1)
//	size     (vec2<f32>) = 8 bytes (location 2)
//	color    (u32)       = 4 bytes (location 3), RGBA8 with red in the low byte
type tileInstance struct {
	Position [2]float32
	Size     [2]float32
	Color    uint32
}

const tileInstanceStride = 20

func newTileInstance(t Tile) tileInstance {
	return tileInstance{
		Position: [2]float32{float32(t.Origin.X), float32(t.Origin.Y)},
		Size:     [2]float32{float32(t.Size.X), float32(t.Size.Y)},
		Color:    packRGBA(t.Color),
	}
}

func packRGBA(c color.RGBA) uint32 {
	return uint32(c.R) | uint32(c.G)<<8 | uint32(c.B)<<16 | uint32(c.A)<<24
}

// BoardRenderer draws board tiles as instanced rectangles. Bind group 0 is
// the viewport camera.
//
// BoardRenderer is not safe for concurrent use.
type BoardRenderer struct {
	batch *batch[tileInstance]
}

// NewBoardRenderer creates a board renderer on device. The pipeline is
// created on the first Draw.
func NewBoardRenderer(device hal.Device, queue hal.Queue, opts ...Option) (*BoardRenderer, error) {
	cfg := newConfig("board", opts)
	b, err := newBatch[tileInstance](device, queue, instancedPipeline{
		label:     "board",
		source:    boardShaderSource,
		instances: tileInstanceLayout(),
	}, cfg)
	if err != nil {
		return nil, err
	}
	return &BoardRenderer{batch: b}, nil
}

// NewBoardRendererFromProvider creates a board renderer on the device
// shared by a host application.
func NewBoardRendererFromProvider(provider DeviceHandle, opts ...Option) (*BoardRenderer, error) {
	device, queue, err := native.HALFromProvider(provider)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	opts = append([]Option{WithTargetFormat(provider.SurfaceFormat())}, opts...)
	return NewBoardRenderer(device, queue, opts...)
}

// Insert adds a tile and returns its handle.
func (r *BoardRenderer) Insert(t Tile) Handle {
	return r.batch.store.Insert(newTileInstance(t))
}

// Update replaces the tile of h. Stale handles are ignored.
func (r *BoardRenderer) Update(h Handle, t Tile) {
	r.batch.store.Update(h, newTileInstance(t))
}

// Remove deletes the tile of h and reports whether it was live.
func (r *BoardRenderer) Remove(h Handle) bool {
	return r.batch.store.Remove(h)
}

// Len returns the number of live tiles.
func (r *BoardRenderer) Len() int {
	return r.batch.store.Len()
}

// Clear removes every tile.
func (r *BoardRenderer) Clear() {
	r.batch.store.Clear()
}

// Draw records the instanced draw of all tiles into pass.
func (r *BoardRenderer) Draw(pass PassEncoder, viewport *Viewport) error {
	if viewport == nil {
		return ErrNilViewport
	}
	return r.batch.draw(pass,
		[]hal.BindGroup{viewport.bindGroup()},
		[]hal.BindGroupLayout{viewport.bindGroupLayout()})
}

// Rebuild moves the renderer onto a new device after device loss.
func (r *BoardRenderer) Rebuild(device hal.Device, queue hal.Queue) error {
	if err := r.batch.rebuild(device, queue); err != nil {
		return err
	}
	slogger().Info("render: board renderer rebuilt", "tiles", r.Len())
	return nil
}

// Destroy releases all GPU resources held by the renderer.
func (r *BoardRenderer) Destroy() {
	r.batch.destroy()
}

func tileInstanceLayout() gputypes.VertexBufferLayout {
	return gputypes.VertexBufferLayout{
		ArrayStride: tileInstanceStride,
		StepMode:    gputypes.VertexStepModeInstance,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 1}, // position
			{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 2}, // size
			{Format: gputypes.VertexFormatUint32, Offset: 16, ShaderLocation: 3},   // color
		},
	}
}
