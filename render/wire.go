package render

import (
	"encoding/binary"
	"image"
)

// Wire and pin thickness in tile units. A tile is one unit wide; wires run
// through tile centres.
const (
	WireRadius = 1.0 / 16
	PinRadius  = 2.0 / 16
)

// Wire is a straight wire between two tile coordinates. Start and End may
// be given in either order.
type Wire struct {
	Start, End image.Point
	Powered    bool
}

// Pin is a connection point centred in a tile.
type Pin struct {
	Position image.Point
	Powered  bool
}

// WireRect is the drawn rectangle of a wire or pin in tile units.
type WireRect struct {
	Position [2]float32
	Size     [2]float32
	Powered  bool
}

// Rect returns the rectangle covering w, normalized to a non-negative size
// and thickened by WireRadius on every side.
func (w Wire) Rect() WireRect {
	size := w.End.Sub(w.Start)
	abs := image.Pt(absInt(size.X), absInt(size.Y))
	pos := w.Start.Sub(abs.Sub(size).Div(2))
	return WireRect{
		Position: [2]float32{float32(pos.X) + 0.5 - WireRadius, float32(pos.Y) + 0.5 - WireRadius},
		Size:     [2]float32{float32(abs.X) + 2*WireRadius, float32(abs.Y) + 2*WireRadius},
		Powered:  w.Powered,
	}
}

// Rect returns the square covering p.
func (p Pin) Rect() WireRect {
	return WireRect{
		Position: [2]float32{float32(p.Position.X) + 0.5 - PinRadius, float32(p.Position.Y) + 0.5 - PinRadius},
		Size:     [2]float32{2 * PinRadius, 2 * PinRadius},
		Powered:  p.Powered,
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// wireInstance is the per-instance vertex record of the wire pipeline.
//
//	position   (vec2<f32>) = 8 bytes (location 1)
//	size       (vec2<f32>) = 8 bytes (location 2)
//	is_powered (u32)       = 4 bytes (location 3)
type wireInstance struct {
	Position [2]float32
	Size     [2]float32
	Powered  uint32
}

// wireInstanceStride is the byte size of wireInstance.
const wireInstanceStride = 20

func newWireInstance(r WireRect) wireInstance {
	inst := wireInstance{Position: r.Position, Size: r.Size}
	if r.Powered {
		inst.Powered = 1
	}
	return inst
}

// WireColor holds the colors of unpowered and powered wires as linear RGBA.
type WireColor struct {
	Off [4]float32
	On  [4]float32
}

// wireColorSize is the byte size of the WireColor uniform.
const wireColorSize = 32

// DefaultWireColor returns black for unpowered and red for powered wires.
func DefaultWireColor() WireColor {
	return WireColor{
		Off: [4]float32{0, 0, 0, 1},
		On:  [4]float32{0.8, 0, 0, 1},
	}
}

func (c WireColor) bytes() []byte {
	buf, _ := binary.Append(make([]byte, 0, wireColorSize), binary.LittleEndian, c)
	return buf
}
