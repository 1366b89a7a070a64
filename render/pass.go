package render

import "github.com/gogpu/wgpu/hal"

// PassEncoder is the part of hal.RenderPassEncoder the renderers record
// into. The caller owns the pass: it begins it, clears the target and ends
// it.
type PassEncoder interface {
	SetPipeline(pipeline hal.RenderPipeline)
	SetBindGroup(index uint32, group hal.BindGroup, offsets []uint32)
	SetVertexBuffer(slot uint32, buffer hal.Buffer, offset uint64)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
}

var _ PassEncoder = (hal.RenderPassEncoder)(nil)
