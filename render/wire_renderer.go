package render

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/wireboard/backend/native"
	"github.com/gogpu/wireboard/instance"
)

// Handle identifies a wire, pin or tile inside a renderer.
type Handle = instance.Handle

// WireRenderer draws wires and pins as instanced rectangles, colored by
// their powered state.
//
// Bind group 0 is the viewport camera, bind group 1 the wire colors.
// WireRenderer is not safe for concurrent use.
type WireRenderer struct {
	batch *batch[wireInstance]

	color        WireColor
	colorUniform uniformBlock
}

// NewWireRenderer creates a wire renderer on device. The wire color
// uniform is created immediately; the pipeline on the first Draw.
func NewWireRenderer(device hal.Device, queue hal.Queue, opts ...Option) (*WireRenderer, error) {
	cfg := newConfig("wires", opts)
	b, err := newBatch[wireInstance](device, queue, instancedPipeline{
		label:     "wire",
		source:    wireShaderSource,
		instances: wireInstanceLayout(),
	}, cfg)
	if err != nil {
		return nil, err
	}

	r := &WireRenderer{
		batch:        b,
		color:        DefaultWireColor(),
		colorUniform: uniformBlock{label: "wire_color", size: wireColorSize},
	}
	if err := r.colorUniform.create(device); err != nil {
		b.destroy()
		return nil, fmt.Errorf("render: %w", err)
	}
	r.colorUniform.write(queue, r.color.bytes())
	return r, nil
}

// NewWireRendererFromProvider creates a wire renderer on the device shared
// by a host application. The target format defaults to the provider's
// surface format.
func NewWireRendererFromProvider(provider DeviceHandle, opts ...Option) (*WireRenderer, error) {
	device, queue, err := native.HALFromProvider(provider)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	opts = append([]Option{WithTargetFormat(provider.SurfaceFormat())}, opts...)
	return NewWireRenderer(device, queue, opts...)
}

// Insert adds a wire or pin rectangle and returns its handle.
func (r *WireRenderer) Insert(rect WireRect) Handle {
	return r.batch.store.Insert(newWireInstance(rect))
}

// Update replaces the rectangle of h. Stale handles are ignored.
func (r *WireRenderer) Update(h Handle, rect WireRect) {
	r.batch.store.Update(h, newWireInstance(rect))
}

// Remove deletes the rectangle of h and reports whether it was live.
func (r *WireRenderer) Remove(h Handle) bool {
	return r.batch.store.Remove(h)
}

// Len returns the number of live rectangles.
func (r *WireRenderer) Len() int {
	return r.batch.store.Len()
}

// Clear removes every rectangle. All handles become stale.
func (r *WireRenderer) Clear() {
	r.batch.store.Clear()
}

// WireColor returns the current wire colors.
func (r *WireRenderer) WireColor() WireColor {
	return r.color
}

// UpdateWireColor uploads new wire colors.
func (r *WireRenderer) UpdateWireColor(c WireColor) {
	r.color = c
	r.colorUniform.write(r.batch.queue, c.bytes())
}

// Draw records the instanced draw of all wires into pass. Nothing is
// recorded when there are no wires.
func (r *WireRenderer) Draw(pass PassEncoder, viewport *Viewport) error {
	if viewport == nil {
		return ErrNilViewport
	}
	return r.batch.draw(pass,
		[]hal.BindGroup{viewport.bindGroup(), r.colorUniform.bindGroup},
		[]hal.BindGroupLayout{viewport.bindGroupLayout(), r.colorUniform.layout})
}

// Rebuild moves the renderer onto a new device after device loss. Wires
// and handles survive; every device object is recreated.
func (r *WireRenderer) Rebuild(device hal.Device, queue hal.Queue) error {
	if err := r.batch.rebuild(device, queue); err != nil {
		return err
	}
	r.colorUniform.forget()
	if err := r.colorUniform.create(device); err != nil {
		return fmt.Errorf("render: rebuild wire renderer: %w", err)
	}
	r.colorUniform.write(queue, r.color.bytes())
	slogger().Info("render: wire renderer rebuilt", "wires", r.Len())
	return nil
}

// Destroy releases all GPU resources held by the renderer. Safe to call
// multiple times.
func (r *WireRenderer) Destroy() {
	r.batch.destroy()
	r.colorUniform.destroy(r.batch.device)
}

// wireInstanceLayout returns vertex buffer 1 of the wire pipeline.
func wireInstanceLayout() gputypes.VertexBufferLayout {
	return gputypes.VertexBufferLayout{
		ArrayStride: wireInstanceStride,
		StepMode:    gputypes.VertexStepModeInstance,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 1}, // position
			{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 2}, // size
			{Format: gputypes.VertexFormatUint32, Offset: 16, ShaderLocation: 3},   // is_powered
		},
	}
}
