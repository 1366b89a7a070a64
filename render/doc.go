// Package render draws a wire board with instanced rectangles.
//
// Each renderer keeps its records in an instance.Store on the device given
// at construction and issues a single instanced draw per frame:
//
//	viewport, _ := render.NewViewport(device, queue)
//	wires, _ := render.NewWireRenderer(device, queue)
//
//	h := wires.Insert(render.Wire{Start: image.Pt(0, 0), End: image.Pt(4, 0)}.Rect())
//	// ... later, inside a render pass owned by the caller:
//	if err := wires.Draw(pass, viewport); err != nil {
//	    return err
//	}
//	wires.Remove(h)
//
// Coordinates are in tile units; Viewport maps them to clip space.
// Renderers are not safe for concurrent use.
package render
