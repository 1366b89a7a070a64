package render

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// unitQuad is the shared corner geometry: two triangles covering [0,1]^2.
// The instance position and size scale it in the vertex shader.
var unitQuad = [quadVertexCount][2]float32{
	{0, 0}, {0, 1}, {1, 1},
	{0, 0}, {1, 1}, {1, 0},
}

const (
	quadVertexCount  = 6
	quadVertexStride = 8
)

// quadVertexLayout is vertex buffer 0 of every instanced pipeline.
func quadVertexLayout() gputypes.VertexBufferLayout {
	return gputypes.VertexBufferLayout{
		ArrayStride: quadVertexStride,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // corner
		},
	}
}

// createQuadBuffer uploads unitQuad into a new vertex buffer.
func createQuadBuffer(device hal.Device, queue hal.Queue, label string) (hal.Buffer, error) {
	data, _ := binary.Append(make([]byte, 0, quadVertexCount*quadVertexStride), binary.LittleEndian, unitQuad)
	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

// instancedPipeline is a render pipeline that draws the unit quad once per
// instance record. Buffer 0 is the quad, buffer 1 the instance records.
type instancedPipeline struct {
	label     string
	source    string
	instances gputypes.VertexBufferLayout
	format    gputypes.TextureFormat
	samples   uint32
	spirv     bool

	shader     hal.ShaderModule
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
}

// ensure creates the shader, layout and pipeline if they don't already
// exist. groups are the bind group layouts in group order.
func (p *instancedPipeline) ensure(device hal.Device, groups []hal.BindGroupLayout) error {
	if p.pipeline != nil {
		return nil
	}

	if p.shader == nil {
		shader, err := createShader(device, p.label+"_shader", p.source, p.spirv)
		if err != nil {
			return err
		}
		p.shader = shader
	}

	if p.pipeLayout == nil {
		pipeLayout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
			Label:            p.label + "_pipe_layout",
			BindGroupLayouts: groups,
		})
		if err != nil {
			return fmt.Errorf("create %s pipeline layout: %w", p.label, err)
		}
		p.pipeLayout = pipeLayout
	}

	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  p.label + "_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
			Buffers:    []gputypes.VertexBufferLayout{quadVertexLayout(), p.instances},
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    p.format,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: p.samples,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create %s pipeline: %w", p.label, err)
	}
	p.pipeline = pipeline

	slogger().Debug("render: pipeline created", "pipeline", p.label, "spirv", p.spirv, "samples", p.samples)
	return nil
}

// destroy releases all pipeline resources in reverse creation order.
func (p *instancedPipeline) destroy(device hal.Device) {
	if device == nil {
		return
	}
	if p.pipeline != nil {
		device.DestroyRenderPipeline(p.pipeline)
	}
	if p.pipeLayout != nil {
		device.DestroyPipelineLayout(p.pipeLayout)
	}
	if p.shader != nil {
		device.DestroyShaderModule(p.shader)
	}
	p.forget()
}

// forget drops the objects without destroying them, after device loss.
func (p *instancedPipeline) forget() {
	p.pipeline = nil
	p.pipeLayout = nil
	p.shader = nil
}
