package render

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/wgpu/hal"
)

// Camera maps tile coordinates to clip space:
//
//	clip = (tile - Center) * Scale
type Camera struct {
	// Center is the tile coordinate shown at the middle of the target.
	Center [2]float32

	// Scale is clip units per tile along each axis. A negative Y scale
	// puts row 0 at the top.
	Scale [2]float32
}

// viewportUniformSize is the byte size of the Camera uniform.
const viewportUniformSize = 16

// DefaultCamera shows a 20x20 tile area centred on the origin.
func DefaultCamera() Camera {
	return Camera{Scale: [2]float32{0.1, -0.1}}
}

// Viewport owns the camera uniform bound at group 0 by every board
// renderer.
type Viewport struct {
	device hal.Device
	queue  hal.Queue

	camera  Camera
	uniform uniformBlock
}

// NewViewport creates the camera uniform and writes DefaultCamera to it.
func NewViewport(device hal.Device, queue hal.Queue) (*Viewport, error) {
	v := &Viewport{
		device:  device,
		queue:   queue,
		camera:  DefaultCamera(),
		uniform: uniformBlock{label: "viewport", size: viewportUniformSize},
	}
	if err := v.uniform.create(device); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	v.uniform.write(queue, v.camera.bytes())
	return v, nil
}

// Camera returns the current camera.
func (v *Viewport) Camera() Camera { return v.camera }

// SetCamera uploads a new camera. It takes effect for passes submitted
// after this call.
func (v *Viewport) SetCamera(c Camera) {
	v.camera = c
	v.uniform.write(v.queue, c.bytes())
}

// Rebuild recreates the uniform on a new device after device loss. The old
// objects are dropped, not destroyed.
func (v *Viewport) Rebuild(device hal.Device, queue hal.Queue) error {
	v.uniform.forget()
	v.device = device
	v.queue = queue
	if err := v.uniform.create(device); err != nil {
		return fmt.Errorf("render: rebuild viewport: %w", err)
	}
	v.uniform.write(queue, v.camera.bytes())
	return nil
}

// Destroy releases the uniform. Safe to call multiple times.
func (v *Viewport) Destroy() {
	v.uniform.destroy(v.device)
}

func (v *Viewport) bindGroupLayout() hal.BindGroupLayout { return v.uniform.layout }

func (v *Viewport) bindGroup() hal.BindGroup { return v.uniform.bindGroup }

func (c Camera) bytes() []byte {
	buf, _ := binary.Append(make([]byte, 0, viewportUniformSize), binary.LittleEndian, c)
	return buf
}
