package world

import (
	"fmt"
	"math"
)

// Point is a position in pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Orientation holds the forward (F) and inverse (B) matrices between hex
// and pixel space, plus the angle of the first corner in sixths of a turn.
type Orientation struct {
	F0, F1, F2, F3 float64
	B0, B1, B2, B3 float64
	StartAngle     float64
}

var (
	// OrientationPointy has a corner pointing up.
	OrientationPointy = Orientation{
		F0: math.Sqrt(3.0), F1: math.Sqrt(3.0) / 2.0, F2: 0.0, F3: 3.0 / 2.0,
		B0: math.Sqrt(3.0) / 3.0, B1: -1.0 / 3.0, B2: 0.0, B3: 2.0 / 3.0,
		StartAngle: 0.5,
	}
	// OrientationFlat has an edge on top.
	OrientationFlat = Orientation{
		F0: 3.0 / 2.0, F1: 0.0, F2: math.Sqrt(3.0) / 2.0, F3: math.Sqrt(3.0),
		B0: 2.0 / 3.0, B1: 0.0, B2: -1.0 / 3.0, B3: math.Sqrt(3.0) / 3.0,
		StartAngle: 0.0,
	}
)

// OrientationByName resolves "pointy" or "flat".
func OrientationByName(name string) (Orientation, error) {
	switch name {
	case "pointy":
		return OrientationPointy, nil
	case "flat":
		return OrientationFlat, nil
	default:
		return Orientation{}, fmt.Errorf("unknown layout orientation %q", name)
	}
}

// Layout maps hex coordinates to pixels for one world. Size is the
// per-axis cell radius; Origin is the pixel position of hex (0,0,0).
type Layout struct {
	Orientation Orientation
	Size        Point
	Origin      Point
}

// NewLayout builds a layout. Panics on a non-positive size, which would make
// the inverse transform undefined.
func NewLayout(o Orientation, size, origin Point) Layout {
	if size.X <= 0 || size.Y <= 0 {
		panic(fmt.Sprintf("world: layout size must be positive, got %+v", size))
	}
	return Layout{Orientation: o, Size: size, Origin: origin}
}

// HexToPixel returns the pixel center of h.
func (l Layout) HexToPixel(h HexCoord) Point {
	m := l.Orientation
	x := (m.F0*float64(h.Q) + m.F1*float64(h.R)) * l.Size.X
	y := (m.F2*float64(h.Q) + m.F3*float64(h.R)) * l.Size.Y
	return Point{X: x + l.Origin.X, Y: y + l.Origin.Y}
}

// PixelToFractional inverts HexToPixel without rounding.
func (l Layout) PixelToFractional(p Point) FractionalHex {
	m := l.Orientation
	px := (p.X - l.Origin.X) / l.Size.X
	py := (p.Y - l.Origin.Y) / l.Size.Y
	q := m.B0*px + m.B1*py
	r := m.B2*px + m.B3*py
	return FractionalHex{Q: q, R: r, S: -q - r}
}

// PixelToHex returns the hex containing p.
func (l Layout) PixelToHex(p Point) HexCoord {
	return l.PixelToFractional(p).Round()
}

// CornerOffset returns the offset of corner i from a cell center.
func (l Layout) CornerOffset(corner int) Point {
	angle := 2.0 * math.Pi * (l.Orientation.StartAngle - float64(corner)) / 6.0
	return Point{X: l.Size.X * math.Cos(angle), Y: l.Size.Y * math.Sin(angle)}
}

// PolygonCorners returns the six corners of h in drawing order.
func (l Layout) PolygonCorners(h HexCoord) [NumDirections]Point {
	var corners [NumDirections]Point
	center := l.HexToPixel(h)
	for i := range corners {
		off := l.CornerOffset(i)
		corners[i] = Point{X: center.X + off.X, Y: center.Y + off.Y}
	}
	return corners
}
