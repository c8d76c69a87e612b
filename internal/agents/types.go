// Package agents provides the creature data model, its state machine,
// combat, and movement choices.
package agents

import (
	"math/rand"

	"github.com/talgya/hexscent/internal/scent"
	"github.com/talgya/hexscent/internal/world"
)

// AgentID is a unique identifier for an agent.
type AgentID uint64

// Source returns the scent source id this agent emits under.
func (id AgentID) Source() scent.SourceID {
	return scent.SourceID(id)
}

// State is the agent's behavioral mode.
type State uint8

const (
	StateResting   State = iota // Idle until activated from outside
	StateSearching              // Wandering, sniffing for rivals
	StateHunting                // Following a rival's trail
	StateFighting               // Trading blows with an adjacent rival
	StateDead                   // Terminal
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateResting:
		return "RESTING"
	case StateSearching:
		return "SEARCHING"
	case StateHunting:
		return "HUNTING"
	case StateFighting:
		return "FIGHTING"
	case StateDead:
		return "DEAD"
	default:
		return "UNKNOWN"
	}
}

// NumStates is the number of agent states.
const NumStates = 5

// HuntScent is the trail an agent is following: whose, and how strong it
// was when last observed.
type HuntScent struct {
	Source   AgentID `json:"source"`
	Strength int     `json:"strength"`
}

// Agent is a creature moving over the hex grid.
type Agent struct {
	ID   AgentID `json:"id"`
	Name string  `json:"name"`

	// Location
	Position      world.HexCoord   `json:"position"`
	LastDirection world.Direction  `json:"last_direction"`
	Moved         bool             `json:"moved"` // LastDirection is meaningful
	Path          []world.HexCoord `json:"path,omitempty"`

	// Behavior
	State   State      `json:"state"`
	Hunt    *HuntScent `json:"hunt,omitempty"`
	Targets []AgentID  `json:"targets,omitempty"`

	// Health and combat
	HP      int `json:"hp"`
	MaxHP   int `json:"max_hp"`
	Regen   int `json:"regen"`
	Attack  int `json:"attack"`
	Defense int `json:"defense"`

	// Incoming damage this tick, keyed by attacker.
	Incoming map[AgentID]int `json:"-"`

	// SmellDecay is how fast this agent's scent fades per tick.
	SmellDecay int `json:"smell_decay"`

	BornTick uint64 `json:"born_tick"`

	rng *rand.Rand
}

// Alive reports whether the agent has not reached the terminal state.
func (a *Agent) Alive() bool {
	return a.State != StateDead
}

// Target returns the agent currently being fought, if any.
func (a *Agent) Target() (AgentID, bool) {
	if len(a.Targets) == 0 {
		return 0, false
	}
	return a.Targets[0], true
}

// Activate wakes a resting agent. Other states are left alone.
func (a *Agent) Activate() bool {
	if a.State != StateResting {
		return false
	}
	a.State = StateSearching
	return true
}

// Locator answers where a living agent stands.
type Locator interface {
	Locate(id AgentID) (world.HexCoord, bool)
}

// Positions is a frozen id → position table of the agents alive this tick.
type Positions map[AgentID]world.HexCoord

// Locate implements Locator.
func (p Positions) Locate(id AgentID) (world.HexCoord, bool) {
	pos, ok := p[id]
	return pos, ok
}

// Attack is a blow issued during the act phase, applied to the target
// once every agent has acted.
type Attack struct {
	From   AgentID
	To     AgentID
	Damage int
}
