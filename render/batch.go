package render

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/wireboard/backend/native"
	"github.com/gogpu/wireboard/instance"
)

// batch draws every record of an instance store with one instanced draw
// call.
type batch[T any] struct {
	device hal.Device
	queue  hal.Queue
	cfg    config

	adapter *native.HALAdapter
	store   *instance.Store[T]

	quad     hal.Buffer
	pipeline instancedPipeline
}

func newBatch[T any](device hal.Device, queue hal.Queue, pipeline instancedPipeline, cfg config) (*batch[T], error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	adapter := native.NewHALAdapter(device, queue, cfg.limits)
	store, err := instance.New[T](adapter, cfg.store...)
	if err != nil {
		return nil, fmt.Errorf("render: %s: %w", pipeline.label, err)
	}

	pipeline.format = cfg.format
	pipeline.samples = cfg.samples
	pipeline.spirv = cfg.spirv

	return &batch[T]{
		device:   device,
		queue:    queue,
		cfg:      cfg,
		adapter:  adapter,
		store:    store,
		pipeline: pipeline,
	}, nil
}

// draw syncs the store and records one draw of all live instances. It
// records nothing when the store is empty.
func (b *batch[T]) draw(pass PassEncoder, groups []hal.BindGroup, layouts []hal.BindGroupLayout) error {
	view, ok, err := b.store.Buffer()
	if err != nil {
		return fmt.Errorf("render: %s: %w", b.pipeline.label, err)
	}
	if !ok {
		return nil
	}
	instances, ok := b.adapter.HalBuffer(view.Buffer)
	if !ok {
		return fmt.Errorf("%w: %s buffer %d", ErrMissingBuffer, b.pipeline.label, view.Buffer)
	}

	if b.quad == nil {
		quad, err := createQuadBuffer(b.device, b.queue, b.pipeline.label+"_quad")
		if err != nil {
			return fmt.Errorf("render: %w", err)
		}
		b.quad = quad
	}
	if err := b.pipeline.ensure(b.device, layouts); err != nil {
		return fmt.Errorf("render: %w", err)
	}

	pass.SetPipeline(b.pipeline.pipeline)
	for i, g := range groups {
		pass.SetBindGroup(uint32(i), g, nil) //nolint:gosec // at most two groups
	}
	pass.SetVertexBuffer(0, b.quad, 0)
	pass.SetVertexBuffer(1, instances, 0)
	pass.Draw(quadVertexCount, view.Count, 0, 0)
	return nil
}

// rebuild moves the batch onto a new device. Objects of the old device are
// dropped; the pipeline, quad and instance buffer are recreated on the
// next draw.
func (b *batch[T]) rebuild(device hal.Device, queue hal.Queue) error {
	if device == nil || queue == nil {
		return ErrNilDevice
	}
	b.device = device
	b.queue = queue
	b.pipeline.forget()
	b.quad = nil
	b.adapter = native.NewHALAdapter(device, queue, b.cfg.limits)
	b.store.Rebind(b.adapter)
	return nil
}

// destroy releases every device object. The batch can still be drawn
// afterwards; objects are recreated lazily.
func (b *batch[T]) destroy() {
	b.store.Destroy()
	b.adapter.Destroy()
	b.pipeline.destroy(b.device)
	if b.quad != nil {
		b.device.DestroyBuffer(b.quad)
		b.quad = nil
	}
}
