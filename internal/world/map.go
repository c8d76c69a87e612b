package world

import (
	"fmt"

	"github.com/talgya/hexscent/internal/scent"
)

// Cell is one terrain hex. Its coordinate is both its map key and its
// identity. Neighbors holds coordinate keys resolved through the owning Map;
// it is filled at build time and never changes afterward.
type Cell struct {
	Coord     HexCoord               `json:"coord"`
	Terrain   Terrain                `json:"terrain"`
	Elevation float64                `json:"elevation"` // 0.0 (low) to 1.0 (peak)
	Neighbors map[Direction]HexCoord `json:"-"`

	Scent scent.Field `json:"-"`
}

// Map holds the complete hex grid. Topology is fixed after BuildMap;
// only the cells' scent fields change.
type Map struct {
	Hexes  map[HexCoord]*Cell `json:"-"` // All cells keyed by coordinate
	Order  []HexCoord         `json:"-"` // Deterministic iteration order, sorted by (q, r)
	Radius int                `json:"radius"`

	fields []*scent.Field
	index  map[HexCoord]int
}

// BuildMap creates every cell within radius of the origin and links
// each to the neighbors that exist in the grid.
func BuildMap(radius int) *Map {
	coords := HexesWithin(radius)
	m := &Map{
		Hexes:  make(map[HexCoord]*Cell, len(coords)),
		Order:  coords,
		Radius: radius,
		fields: make([]*scent.Field, len(coords)),
		index:  make(map[HexCoord]int, len(coords)),
	}

	for i, c := range coords {
		cell := &Cell{Coord: c, Scent: scent.NewField()}
		m.Hexes[c] = cell
		m.fields[i] = &cell.Scent
		m.index[c] = i
	}

	for _, cell := range m.Hexes {
		cell.Neighbors = make(map[Direction]HexCoord, NumDirections)
		for d := Direction(0); d < NumDirections; d++ {
			n := cell.Coord.Neighbor(d)
			if _, ok := m.Hexes[n]; ok {
				cell.Neighbors[d] = n
			}
		}
	}
	return m
}

// Get returns the cell at the given coordinate, or nil if out of bounds.
func (m *Map) Get(coord HexCoord) *Cell {
	return m.Hexes[coord]
}

// Lookup returns the cell at coord and whether it exists.
func (m *Map) Lookup(coord HexCoord) (*Cell, bool) {
	c, ok := m.Hexes[coord]
	return c, ok
}

// InBounds returns true if the coordinate is within the map radius.
func (m *Map) InBounds(coord HexCoord) bool {
	return coord.Length() <= m.Radius
}

// HexCount returns the total number of cells in the map.
func (m *Map) HexCount() int {
	return len(m.Hexes)
}

// Cells returns the cells in deterministic order.
func (m *Map) Cells() []*Cell {
	out := make([]*Cell, len(m.Order))
	for i, c := range m.Order {
		out[i] = m.Hexes[c]
	}
	return out
}

// NeighborCells resolves c's neighbor keys into cells.
func (m *Map) NeighborCells(c *Cell) map[Direction]*Cell {
	out := make(map[Direction]*Cell, len(c.Neighbors))
	for d, coord := range c.Neighbors {
		out[d] = m.Hexes[coord]
	}
	return out
}

// Adjacent reports whether a and b are neighboring cells of this map.
func (m *Map) Adjacent(a, b HexCoord) bool {
	cell, ok := m.Hexes[a]
	if !ok {
		return false
	}
	d, ok := a.DirectionTo(b)
	if !ok {
		return false
	}
	_, ok = cell.Neighbors[d]
	return ok
}

// CellAtPixel returns the cell under pixel p, if any.
func (m *Map) CellAtPixel(l Layout, p Point) (*Cell, bool) {
	return m.Lookup(l.PixelToHex(p))
}

// Fields returns the scent fields in Order, for the diffuser.
func (m *Map) Fields() []*scent.Field {
	return m.fields
}

// NeighborFields resolves the scent fields adjacent to Fields()[i].
func (m *Map) NeighborFields(i int) []*scent.Field {
	cell := m.Hexes[m.Order[i]]
	out := make([]*scent.Field, 0, len(cell.Neighbors))
	for d := Direction(0); d < NumDirections; d++ {
		if coord, ok := cell.Neighbors[d]; ok {
			out = append(out, m.fields[m.index[coord]])
		}
	}
	return out
}

// String returns a summary of the map.
func (m *Map) String() string {
	return fmt.Sprintf("Map(radius=%d, hexes=%d)", m.Radius, m.HexCount())
}
