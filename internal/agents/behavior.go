// Agent behavior: a five-state machine driven by the scent under the
// agent's feet and the whereabouts of its quarry.
// Every tick, after movement, agents update health, re-evaluate their
// state, and pick where to step next.
package agents

import (
	"github.com/talgya/hexscent/internal/scent"
	"github.com/talgya/hexscent/internal/world"
)

// Mind is the part of an agent the state machine reads.
type Mind struct {
	State  State
	Hunt   *HuntScent
	Target *AgentID // Opponent while fighting
}

// Senses is what the agent perceives this tick.
type Senses struct {
	HP int

	// Strongest scent at the current cell from anyone but the agent itself.
	Strongest    scent.Smell
	HasStrongest bool

	// Strength at the current cell of the source being hunted or fought.
	Tracked    int
	HasTracked bool

	// The hunted source or opponent stands within reach (same or adjacent cell).
	InReach bool

	// The opponent is still alive and on the map.
	TargetValid bool
}

// Decision is the outcome of one transition.
type Decision struct {
	State     State
	Hunt      *HuntScent
	Engage    *AgentID // Append to the target list
	Disengage bool     // Clear the target list
	Attack    *AgentID // Strike this opponent
}

// Transition is the whole state machine: a pure function from what the agent
// is and what it senses to what it becomes.
func Transition(m Mind, s Senses) Decision {
	d := Decision{State: m.State, Hunt: m.Hunt}

	if m.State == StateDead {
		return d
	}
	if s.HP <= 0 {
		return Decision{State: StateDead, Disengage: true}
	}

	switch m.State {
	case StateSearching:
		if s.HasStrongest {
			d.State = StateHunting
			d.Hunt = &HuntScent{Source: AgentID(s.Strongest.Source), Strength: s.Strongest.Strength}
		}

	case StateHunting:
		if m.Hunt == nil {
			d.State = StateSearching
			break
		}
		switch {
		case s.InReach:
			d.State = StateFighting
			target := m.Hunt.Source
			d.Engage = &target
		case !s.HasTracked, s.Tracked < m.Hunt.Strength:
			// Trail lost or going cold.
			d.State = StateSearching
			d.Hunt = nil
		case s.Tracked > m.Hunt.Strength:
			d.Hunt = &HuntScent{Source: m.Hunt.Source, Strength: s.Tracked}
		}

	case StateFighting:
		switch {
		case m.Target == nil || !s.TargetValid:
			d.State = StateSearching
			d.Hunt = nil
			d.Disengage = true
		case s.InReach:
			target := *m.Target
			d.Attack = &target
		case s.HasTracked:
			d.State = StateHunting
			d.Hunt = &HuntScent{Source: *m.Target, Strength: s.Tracked}
			d.Disengage = true
		default:
			d.State = StateSearching
			d.Hunt = nil
			d.Disengage = true
		}
	}

	return d
}

// Move steps onto the next queued cell, if any, then marks the agent's
// position with a fresh scent of the given strength.
func (a *Agent) Move(m *world.Map, strength int) {
	if !a.Alive() {
		return
	}
	if len(a.Path) > 0 {
		next := a.Path[0]
		a.Path = a.Path[1:]
		if _, ok := m.Lookup(next); ok {
			if d, ok := a.Position.DirectionTo(next); ok {
				a.LastDirection = d
				a.Moved = true
			}
			a.Position = next
		}
	}
	if cell, ok := m.Lookup(a.Position); ok {
		cell.Scent.Deposit(a.ID.Source(), strength)
	}
}

// Act runs health, state and path updates for one tick. It writes only the
// agent's own fields; a returned attack must be delivered by the caller.
func (a *Agent) Act(m *world.Map, loc Locator) *Attack {
	a.UpdateHP()

	d := Transition(a.mind(), a.sense(m, loc))
	a.apply(d)
	a.UpdatePath(m)

	if d.Attack != nil {
		return &Attack{From: a.ID, To: *d.Attack, Damage: a.Attack}
	}
	return nil
}

func (a *Agent) mind() Mind {
	m := Mind{State: a.State, Hunt: a.Hunt}
	if t, ok := a.Target(); ok {
		m.Target = &t
	}
	return m
}

// sense reads the cell under the agent and the position of its quarry.
func (a *Agent) sense(m *world.Map, loc Locator) Senses {
	s := Senses{HP: a.HP}
	cell, ok := m.Lookup(a.Position)
	if !ok {
		return s
	}
	s.Strongest, s.HasStrongest = cell.Scent.Strongest(a.ID.Source())

	var quarry AgentID
	switch {
	case a.State == StateFighting && len(a.Targets) > 0:
		quarry = a.Targets[0]
	case a.Hunt != nil:
		quarry = a.Hunt.Source
	default:
		return s
	}

	s.Tracked, s.HasTracked = cell.Scent.Strength(quarry.Source())
	if pos, ok := loc.Locate(quarry); ok {
		s.TargetValid = true
		s.InReach = a.Position.DistanceTo(pos) <= 1
	}
	return s
}

func (a *Agent) apply(d Decision) {
	a.State = d.State
	a.Hunt = d.Hunt
	if d.Disengage {
		a.Targets = nil
	}
	if d.Engage != nil {
		a.Targets = append(a.Targets, *d.Engage)
	}
}
