// Package wireboard renders a logic-circuit board on a WebGPU device.
//
// # Overview
//
// Wires, pins and board tiles are kept in dynamic instance stores
// (package instance): every element is addressed by a stable generational
// handle, the live records stay densely packed, and each frame the packed
// array is mirrored into one device vertex buffer drawn with a single
// instanced call. Package render builds wire and board renderers on top of
// the store; package backend/native connects the store to a
// gogpu/wgpu HAL device and backend/memory to host memory for tests and
// headless runs.
//
// # Quick Start
//
//	viewport, err := render.NewViewport(device, queue)
//	wires, err := render.NewWireRenderer(device, queue)
//
//	h := wires.Insert(render.Wire{Start: image.Pt(0, 0), End: image.Pt(5, 0)}.Rect())
//	wires.Update(h, render.Wire{Start: image.Pt(0, 0), End: image.Pt(5, 3), Powered: true}.Rect())
//
//	// inside a render pass:
//	err = wires.Draw(pass, viewport)
//
// # Logging
//
// All packages are silent by default. SetLogger enables structured logging
// through log/slog for the whole module.
package wireboard
