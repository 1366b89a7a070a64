package render

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// uniformBlock is a small uniform buffer with its own bind group layout and
// bind group at binding 0.
type uniformBlock struct {
	label string
	size  uint64

	layout    hal.BindGroupLayout
	buffer    hal.Buffer
	bindGroup hal.BindGroup
}

// create allocates the layout, buffer and bind group. Partially created
// objects are released on failure.
func (u *uniformBlock) create(device hal.Device) error {
	layout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: u.label + "_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create %s layout: %w", u.label, err)
	}

	buffer, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: u.label + "_buffer",
		Size:  u.size,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		device.DestroyBindGroupLayout(layout)
		return fmt.Errorf("create %s buffer: %w", u.label, err)
	}

	bindGroup, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  u.label + "_bind",
		Layout: layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: buffer.NativeHandle(), Offset: 0, Size: u.size,
			}},
		},
	})
	if err != nil {
		device.DestroyBuffer(buffer)
		device.DestroyBindGroupLayout(layout)
		return fmt.Errorf("create %s bind group: %w", u.label, err)
	}

	u.layout = layout
	u.buffer = buffer
	u.bindGroup = bindGroup
	return nil
}

// ready reports whether create has succeeded.
func (u *uniformBlock) ready() bool {
	return u.bindGroup != nil
}

func (u *uniformBlock) write(queue hal.Queue, data []byte) {
	if u.buffer == nil {
		return
	}
	queue.WriteBuffer(u.buffer, 0, data)
}

// destroy releases all objects in reverse creation order.
func (u *uniformBlock) destroy(device hal.Device) {
	if device == nil {
		return
	}
	if u.bindGroup != nil {
		device.DestroyBindGroup(u.bindGroup)
	}
	if u.buffer != nil {
		device.DestroyBuffer(u.buffer)
	}
	if u.layout != nil {
		device.DestroyBindGroupLayout(u.layout)
	}
	u.forget()
}

// forget drops the objects without destroying them, after device loss.
func (u *uniformBlock) forget() {
	u.bindGroup = nil
	u.buffer = nil
	u.layout = nil
}
