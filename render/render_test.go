package render

import (
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// createNoopDevice creates a noop device and queue for testing.
// Returns the device, queue, and a cleanup function.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

// recordingPass is a PassEncoder that records what the renderers bind.
type recordingPass struct {
	pipeline      hal.RenderPipeline
	groups        map[uint32]hal.BindGroup
	vertexBuffers map[uint32]hal.Buffer
	draws         [][4]uint32
	calls         int
}

func newRecordingPass() *recordingPass {
	return &recordingPass{
		groups:        make(map[uint32]hal.BindGroup),
		vertexBuffers: make(map[uint32]hal.Buffer),
	}
}

func (p *recordingPass) SetPipeline(pipeline hal.RenderPipeline) {
	p.calls++
	p.pipeline = pipeline
}

func (p *recordingPass) SetBindGroup(index uint32, group hal.BindGroup, _ []uint32) {
	p.calls++
	p.groups[index] = group
}

func (p *recordingPass) SetVertexBuffer(slot uint32, buffer hal.Buffer, _ uint64) {
	p.calls++
	p.vertexBuffers[slot] = buffer
}

func (p *recordingPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.calls++
	p.draws = append(p.draws, [4]uint32{vertexCount, instanceCount, firstVertex, firstInstance})
}

// halProvider implements DeviceHandle plus the HAL accessors.
type halProvider struct {
	device hal.Device
	queue  hal.Queue
	format gputypes.TextureFormat
}

func (halProvider) Device() gpucontext.Device               { return nil }
func (halProvider) Queue() gpucontext.Queue                 { return nil }
func (halProvider) Adapter() gpucontext.Adapter             { return nil }
func (p halProvider) SurfaceFormat() gputypes.TextureFormat { return p.format }
func (p halProvider) HalDevice() any                        { return p.device }
func (p halProvider) HalQueue() any                         { return p.queue }

// plainProvider implements DeviceHandle without HAL access.
type plainProvider struct{}

func (plainProvider) Device() gpucontext.Device             { return nil }
func (plainProvider) Queue() gpucontext.Queue               { return nil }
func (plainProvider) Adapter() gpucontext.Adapter           { return nil }
func (plainProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatUndefined }

func newTestViewport(t *testing.T, device hal.Device, queue hal.Queue) *Viewport {
	t.Helper()
	v, err := NewViewport(device, queue)
	if err != nil {
		t.Fatalf("NewViewport failed: %v", err)
	}
	t.Cleanup(v.Destroy)
	return v
}
