// Package world provides the hex grid, terrain cells, and the geometry that
// maps them to pixel space.
// Uses cube coordinates (q, r, s) stored as axial (q, r); s is derived.
package world

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// HexCoord represents a position on the hex grid.
// The third cube coordinate s is derived: s = -q - r.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// NewHexCoord builds a coordinate from all three cube components.
// Panics if q+r+s != 0.
func NewHexCoord(q, r, s int) HexCoord {
	if q+r+s != 0 {
		panic(fmt.Sprintf("world: cube coordinate (%d,%d,%d) does not sum to zero", q, r, s))
	}
	return HexCoord{Q: q, R: r}
}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

func (h HexCoord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", h.Q, h.R, h.S())
}

// Direction indexes one of the six hex directions, 0..5.
type Direction int

// NumDirections is the number of neighbor (and diagonal) directions.
const NumDirections = 6

// Valid reports whether d is in [0, 6).
func (d Direction) Valid() bool {
	return d >= 0 && d < NumDirections
}

// Opposite returns the direction pointing back.
func (d Direction) Opposite() Direction {
	mustDirection(d)
	return (d + 3) % NumDirections
}

func mustDirection(d Direction) {
	if !d.Valid() {
		panic(fmt.Sprintf("world: direction %d out of range", int(d)))
	}
}

// HexNeighborDirections defines the six neighbor offsets.
var HexNeighborDirections = [NumDirections]HexCoord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// HexDiagonals defines the six diagonal offsets (distance 2, between two neighbors).
var HexDiagonals = [NumDirections]HexCoord{
	{Q: 2, R: -1},
	{Q: 1, R: -2},
	{Q: -1, R: -1},
	{Q: -2, R: 1},
	{Q: -1, R: 2},
	{Q: 1, R: 1},
}

// Add returns h + o.
func (h HexCoord) Add(o HexCoord) HexCoord {
	return HexCoord{Q: h.Q + o.Q, R: h.R + o.R}
}

// Subtract returns h - o.
func (h HexCoord) Subtract(o HexCoord) HexCoord {
	return HexCoord{Q: h.Q - o.Q, R: h.R - o.R}
}

// Scale multiplies every component by k.
func (h HexCoord) Scale(k int) HexCoord {
	return HexCoord{Q: h.Q * k, R: h.R * k}
}

// RotateRight rotates 60° clockwise about the origin.
func (h HexCoord) RotateRight() HexCoord {
	return NewHexCoord(-h.R, -h.S(), -h.Q)
}

// RotateLeft rotates 60° counter-clockwise about the origin.
func (h HexCoord) RotateLeft() HexCoord {
	return NewHexCoord(-h.S(), -h.Q, -h.R)
}

// RotateRightN applies RotateRight n times.
func (h HexCoord) RotateRightN(n int) HexCoord {
	for i := 0; i < n; i++ {
		h = h.RotateRight()
	}
	return h
}

// RotateLeftN applies RotateLeft n times.
func (h HexCoord) RotateLeftN(n int) HexCoord {
	for i := 0; i < n; i++ {
		h = h.RotateLeft()
	}
	return h
}

// Neighbor returns the adjacent coordinate in direction d.
func (h HexCoord) Neighbor(d Direction) HexCoord {
	mustDirection(d)
	return h.Add(HexNeighborDirections[d])
}

// Diagonal returns the diagonal coordinate in direction d.
func (h HexCoord) Diagonal(d Direction) HexCoord {
	mustDirection(d)
	return h.Add(HexDiagonals[d])
}

// Neighbors returns the six adjacent hex coordinates, indexed by direction.
func (h HexCoord) Neighbors() [NumDirections]HexCoord {
	var result [NumDirections]HexCoord
	for i, dir := range HexNeighborDirections {
		result[i] = h.Add(dir)
	}
	return result
}

// DirectionTo returns the direction d with h.Neighbor(d) == o.
// ok is false when o is not adjacent to h.
func (h HexCoord) DirectionTo(o HexCoord) (Direction, bool) {
	delta := o.Subtract(h)
	for i, dir := range HexNeighborDirections {
		if dir == delta {
			return Direction(i), true
		}
	}
	return 0, false
}

// Length returns the distance from the origin.
func (h HexCoord) Length() int {
	return (abs(h.Q) + abs(h.R) + abs(h.S())) / 2
}

// DistanceTo returns the hex distance between h and o.
func (h HexCoord) DistanceTo(o HexCoord) int {
	return h.Subtract(o).Length()
}

// Distance returns the hex distance between two coordinates.
func Distance(a, b HexCoord) int {
	return a.DistanceTo(b)
}

// HexesWithin returns every coordinate at most radius steps from the origin,
// ordered by (q, r). A region of radius R holds 3R²+3R+1 hexes.
func HexesWithin(radius int) []HexCoord {
	if radius < 0 {
		panic(fmt.Sprintf("world: negative radius %d", radius))
	}
	coords := make([]HexCoord, 0, 3*radius*radius+3*radius+1)
	for q := -radius; q <= radius; q++ {
		r1 := max(-radius, -q-radius)
		r2 := min(radius, -q+radius)
		for r := r1; r <= r2; r++ {
			coords = append(coords, HexCoord{Q: q, R: r})
		}
	}
	return coords
}

// Ring returns the coordinates exactly radius steps from center, walking
// counter-clockwise from the direction-4 corner.
func Ring(center HexCoord, radius int) []HexCoord {
	if radius < 0 {
		panic(fmt.Sprintf("world: negative radius %d", radius))
	}
	if radius == 0 {
		return []HexCoord{center}
	}
	out := make([]HexCoord, 0, 6*radius)
	h := center.Add(HexNeighborDirections[4].Scale(radius))
	for d := Direction(0); d < NumDirections; d++ {
		for i := 0; i < radius; i++ {
			out = append(out, h)
			h = h.Neighbor(d)
		}
	}
	return out
}

func abs[T constraints.Signed | constraints.Float](x T) T {
	if x < 0 {
		return -x
	}
	return x
}
