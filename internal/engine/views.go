package engine

import (
	"github.com/talgya/hexscent/internal/agents"
	"github.com/talgya/hexscent/internal/scent"
	"github.com/talgya/hexscent/internal/world"
)

// AgentView is a read-only copy of an agent for drawing and diagnostics.
type AgentView struct {
	ID       agents.AgentID    `json:"id"`
	Name     string            `json:"name"`
	Position world.HexCoord    `json:"position"`
	Center   world.Point       `json:"center"`
	State    string            `json:"state"`
	HP       int               `json:"hp"`
	MaxHP    int               `json:"max_hp"`
	Hunt     *agents.HuntScent `json:"hunt,omitempty"`
	Targets  []agents.AgentID  `json:"targets,omitempty"`
	BornTick uint64            `json:"born_tick"`
}

func (s *Simulation) viewOf(a *agents.Agent) AgentView {
	v := AgentView{
		ID:       a.ID,
		Name:     a.Name,
		Position: a.Position,
		Center:   s.Layout.HexToPixel(a.Position),
		State:    a.State.String(),
		HP:       a.HP,
		MaxHP:    a.MaxHP,
		BornTick: a.BornTick,
	}
	if a.Hunt != nil {
		h := *a.Hunt
		v.Hunt = &h
	}
	if len(a.Targets) > 0 {
		v.Targets = append([]agents.AgentID(nil), a.Targets...)
	}
	return v
}

// ListAgents returns every living agent with its position, in id order.
func (s *Simulation) ListAgents() []AgentView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]AgentView, len(s.Agents))
	for i, a := range s.Agents {
		out[i] = s.viewOf(a)
	}
	return out
}

// Agent returns a view of one living agent.
func (s *Simulation) Agent(id agents.AgentID) (AgentView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.AgentIndex[id]
	if !ok {
		return AgentView{}, false
	}
	return s.viewOf(a), true
}

// CellAt hit-tests a pixel against the grid.
func (s *Simulation) CellAt(p world.Point) (*world.Cell, bool) {
	return s.WorldMap.CellAtPixel(s.Layout, p)
}

// Cell looks up a cell by coordinate.
func (s *Simulation) Cell(coord world.HexCoord) (*world.Cell, bool) {
	return s.WorldMap.Lookup(coord)
}

// PolygonCorners returns the six pixel corners of c.
func (s *Simulation) PolygonCorners(c *world.Cell) [world.NumDirections]world.Point {
	return s.Layout.PolygonCorners(c.Coord)
}

// CellCenter returns the pixel center of c.
func (s *Simulation) CellCenter(c *world.Cell) world.Point {
	return s.Layout.HexToPixel(c.Coord)
}

// Neighbors returns c's adjacent cells keyed by direction.
func (s *Simulation) Neighbors(c *world.Cell) map[world.Direction]*world.Cell {
	return s.WorldMap.NeighborCells(c)
}

// ScentsOf copies c's live scents.
func (s *Simulation) ScentsOf(c *world.Cell) map[scent.SourceID]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return c.Scent.Snapshot()
}

// EmissionOf copies c's last broadcast snapshot.
func (s *Simulation) EmissionOf(c *world.Cell) map[scent.SourceID]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[scent.SourceID]int, len(c.Scent.Emission))
	for k, v := range c.Scent.Emission {
		out[k] = v
	}
	return out
}

// RecentEvents returns up to limit of the newest events.
func (s *Simulation) RecentEvents(limit int) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := 0
	if limit > 0 && len(s.Events) > limit {
		start = len(s.Events) - limit
	}
	return append([]Event(nil), s.Events[start:]...)
}

// Snapshot returns the current stats.
func (s *Simulation) Snapshot() SimStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Stats
}

// EventsSince returns the retained events with Seq > after, oldest first.
func (s *Simulation) EventsSince(after uint64) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.eventsAfter(after)
}
