// Simulation ties the grid, the scent field and the agents together and
// advances them one tick at a time.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/talgya/hexscent/internal/agents"
	"github.com/talgya/hexscent/internal/parallel"
	"github.com/talgya/hexscent/internal/scent"
	"github.com/talgya/hexscent/internal/world"
)

var (
	// ErrDuplicateAgent is returned when spawning with an id already in use.
	ErrDuplicateAgent = errors.New("agent id already in use")
	// ErrNoSuchCell is returned when a coordinate is outside the grid.
	ErrNoSuchCell = errors.New("no cell at coordinate")
	// ErrNoSuchAgent is returned for unknown agent ids.
	ErrNoSuchAgent = errors.New("no such agent")
)

const maxEvents = 1000

// Options tunes a Simulation.
type Options struct {
	DepositStrength int // Scent an agent leaves on its cell each tick
	DefaultDecay    int // Decay for sources with no registered rate
	Workers         int // Goroutines per parallel phase; 0 = GOMAXPROCS
}

// DefaultOptions mirrors the stock creature: full scent 100, fading by 20.
func DefaultOptions() Options {
	return Options{DepositStrength: 100, DefaultDecay: 20}
}

// Simulation holds the complete world state.
// Methods are safe for concurrent use; AdvanceTicks excludes all readers.
type Simulation struct {
	mu sync.RWMutex

	WorldMap   *world.Map
	Layout     world.Layout
	Agents     []*agents.Agent // Living agents, ordered by id
	AgentIndex map[agents.AgentID]*agents.Agent
	Events     []Event // Recent events, trimmed to the last maxEvents
	LastTick   uint64  // Most recent tick processed
	eventSeq   uint64

	Spawner  *agents.Spawner
	Decay    *scent.Registry
	Diffuser *scent.Diffuser

	DepositStrength int
	Workers         int

	Stats SimStats

	subsMu  sync.Mutex
	subs    map[int]chan Frame
	nextSub int
}

// NewSimulation creates a Simulation over a built map.
func NewSimulation(m *world.Map, layout world.Layout, spawner *agents.Spawner, opts Options) *Simulation {
	decay := scent.NewRegistry(opts.DefaultDecay)
	sim := &Simulation{
		WorldMap:        m,
		Layout:          layout,
		AgentIndex:      make(map[agents.AgentID]*agents.Agent),
		Spawner:         spawner,
		Decay:           decay,
		Diffuser:        &scent.Diffuser{Decay: decay, Workers: opts.Workers},
		DepositStrength: opts.DepositStrength,
		Workers:         opts.Workers,
		subs:            make(map[int]chan Frame),
	}
	sim.updateStats()
	return sim
}

// CurrentTick returns the most recently processed tick number.
func (s *Simulation) CurrentTick() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastTick
}

// AdvanceTicks runs n whole ticks. Panics on negative n.
func (s *Simulation) AdvanceTicks(n int) {
	if n < 0 {
		panic(fmt.Sprintf("engine: negative tick count %d", n))
	}
	for i := 0; i < n; i++ {
		s.mu.Lock()
		frame := s.tick()
		s.mu.Unlock()
		s.publish(frame)
	}
}

// tick runs the five phases in order; each completes for every entity
// before the next starts.
func (s *Simulation) tick() Frame {
	s.LastTick++
	tick := s.LastTick
	lastSeq := s.eventSeq

	// Phases 1–3: decay, broadcast, receive over every cell.
	s.Diffuser.Step(s.WorldMap.Fields(), s.WorldMap.NeighborFields)

	// Phase 4: move. Sequential because agents may share a cell's map.
	for _, a := range s.Agents {
		a.Move(s.WorldMap, s.DepositStrength)
	}

	// Phase 5: act, against positions frozen after every move.
	positions := make(agents.Positions, len(s.Agents))
	prev := make([]agents.State, len(s.Agents))
	for i, a := range s.Agents {
		positions[a.ID] = a.Position
		prev[i] = a.State
	}
	attacks := make([]*agents.Attack, len(s.Agents))
	parallel.For(len(s.Agents), s.Workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			attacks[i] = s.Agents[i].Act(s.WorldMap, positions)
		}
	})

	for i, a := range s.Agents {
		s.recordTransition(tick, a, prev[i])
	}
	for _, atk := range attacks {
		if atk == nil {
			continue
		}
		s.Stats.Attacks++
		if target, ok := s.AgentIndex[atk.To]; ok && target.Alive() {
			target.TakeHit(atk.From, atk.Damage)
		}
	}

	s.removeDead(tick)
	s.updateStats()

	// Trimming shifts indices, so this tick's events are found by Seq.
	s.trimEvents()
	return Frame{Tick: tick, Stats: s.Stats, Events: s.eventsAfter(lastSeq)}
}

func (s *Simulation) recordTransition(tick uint64, a *agents.Agent, from agents.State) {
	if a.State == from {
		return
	}
	switch a.State {
	case agents.StateHunting:
		if a.Hunt != nil && from == agents.StateSearching {
			s.emit(tick, CategoryHunt, fmt.Sprintf("%s picks up the trail of #%d", a.Name, a.Hunt.Source))
		}
	case agents.StateFighting:
		if t, ok := a.Target(); ok {
			s.emit(tick, CategoryFight, fmt.Sprintf("%s engages #%d", a.Name, t))
		}
	case agents.StateDead:
		s.emit(tick, CategoryDeath, fmt.Sprintf("%s has died", a.Name))
	}
	slog.Debug("agent transition", "tick", tick, "agent", a.ID, "from", from, "to", a.State)
}

// removeDead drops agents that reached DEAD this tick.
func (s *Simulation) removeDead(tick uint64) {
	alive := s.Agents[:0]
	for _, a := range s.Agents {
		if a.Alive() {
			alive = append(alive, a)
			continue
		}
		delete(s.AgentIndex, a.ID)
		s.Stats.Deaths++
	}
	for i := len(alive); i < len(s.Agents); i++ {
		s.Agents[i] = nil
	}
	s.Agents = alive
}

// SpawnAgent places a new agent on the cell at coord.
func (s *Simulation) SpawnAgent(id agents.AgentID, name string, coord world.HexCoord) (*agents.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spawnLocked(id, name, coord)
}

// SpawnRandom places a new agent with a fresh id on a random cell.
func (s *Simulation) SpawnRandom(name string) (*agents.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	coord := s.Spawner.PickCell(s.WorldMap.Order)
	return s.spawnLocked(s.Spawner.NextID(), name, coord)
}

// SpawnAt places a new agent with a fresh id on the cell at coord.
func (s *Simulation) SpawnAt(name string, coord world.HexCoord) (*agents.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.WorldMap.Lookup(coord); !ok {
		return nil, fmt.Errorf("spawn at %s: %w", coord, ErrNoSuchCell)
	}
	return s.spawnLocked(s.Spawner.NextID(), name, coord)
}

// SpawnPopulation places count agents on random cells.
func (s *Simulation) SpawnPopulation(count int) []*agents.Agent {
	s.mu.Lock()
	defer s.mu.Unlock()
	spawned := s.Spawner.SpawnPopulation(count, s.WorldMap.Order, s.LastTick)
	for _, a := range spawned {
		s.addLocked(a)
	}
	s.updateStats()
	return spawned
}

func (s *Simulation) spawnLocked(id agents.AgentID, name string, coord world.HexCoord) (*agents.Agent, error) {
	if _, ok := s.AgentIndex[id]; ok {
		return nil, fmt.Errorf("spawn %d: %w", id, ErrDuplicateAgent)
	}
	if _, ok := s.WorldMap.Lookup(coord); !ok {
		return nil, fmt.Errorf("spawn %d at %s: %w", id, coord, ErrNoSuchCell)
	}
	a := s.Spawner.Spawn(id, name, coord, s.LastTick)
	s.addLocked(a)
	s.updateStats()
	return a, nil
}

func (s *Simulation) addLocked(a *agents.Agent) {
	s.Decay.Register(a.ID.Source(), a.SmellDecay)
	s.AgentIndex[a.ID] = a
	i := sort.Search(len(s.Agents), func(i int) bool { return s.Agents[i].ID >= a.ID })
	s.Agents = append(s.Agents, nil)
	copy(s.Agents[i+1:], s.Agents[i:])
	s.Agents[i] = a
	s.Stats.Spawns++
	s.emit(s.LastTick, CategorySpawn, fmt.Sprintf("%s appears at %s", a.Name, a.Position))
}

// Activate wakes a resting agent so it starts searching.
func (s *Simulation) Activate(id agents.AgentID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.AgentIndex[id]
	if !ok {
		return false, fmt.Errorf("activate %d: %w", id, ErrNoSuchAgent)
	}
	return a.Activate(), nil
}

// ActivateAll wakes every resting agent and returns how many woke.
func (s *Simulation) ActivateAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.Agents {
		if a.Activate() {
			n++
		}
	}
	return n
}
