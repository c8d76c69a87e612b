package agents

import (
	"math/rand"

	"github.com/talgya/hexscent/internal/world"
)

// UpdatePath queues the agent's next step. Searchers wander; hunters climb
// the trail greedily; everyone else holds still.
func (a *Agent) UpdatePath(m *world.Map) {
	a.Path = a.Path[:0]

	cell, ok := m.Lookup(a.Position)
	if !ok || len(cell.Neighbors) == 0 {
		return
	}

	switch a.State {
	case StateSearching:
		a.Path = append(a.Path, a.randomNeighbor(cell))
	case StateHunting:
		if next, ok := a.trailStep(m, cell); ok {
			a.Path = append(a.Path, next)
		} else {
			a.Path = append(a.Path, a.randomNeighbor(cell))
		}
	}
}

// trailStep picks the neighbor where the hunted scent is at least as strong
// as recorded, strongest first, lowest direction on ties.
func (a *Agent) trailStep(m *world.Map, cell *world.Cell) (world.HexCoord, bool) {
	if a.Hunt == nil {
		return world.HexCoord{}, false
	}
	src := a.Hunt.Source.Source()

	var best world.HexCoord
	bestStrength := -1
	for d := world.Direction(0); d < world.NumDirections; d++ {
		coord, ok := cell.Neighbors[d]
		if !ok {
			continue
		}
		s, ok := m.Get(coord).Scent.Strength(src)
		if !ok || s < a.Hunt.Strength {
			continue
		}
		if s > bestStrength {
			best, bestStrength = coord, s
		}
	}
	return best, bestStrength >= 0
}

// randomNeighbor draws uniformly from the cell's neighbors in direction order.
func (a *Agent) randomNeighbor(cell *world.Cell) world.HexCoord {
	options := make([]world.HexCoord, 0, len(cell.Neighbors))
	for d := world.Direction(0); d < world.NumDirections; d++ {
		if coord, ok := cell.Neighbors[d]; ok {
			options = append(options, coord)
		}
	}
	if a.rng == nil {
		a.rng = rand.New(rand.NewSource(int64(a.ID)))
	}
	return options[a.rng.Intn(len(options))]
}

// SetRand injects the agent's random stream.
func (a *Agent) SetRand(r *rand.Rand) {
	a.rng = r
}
