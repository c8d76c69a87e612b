package engine

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/talgya/hexscent/internal/agents"
)

// Event categories.
const (
	CategorySpawn = "spawn"
	CategoryHunt  = "hunt"
	CategoryFight = "fight"
	CategoryDeath = "death"
)

// Event is a notable occurrence in the world.
type Event struct {
	Seq         uint64 `json:"seq" db:"-"` // Monotonic, starts at 1
	Tick        uint64 `json:"tick" db:"tick"`
	Description string `json:"description" db:"description"`
	Category    string `json:"category" db:"category"`
}

// SimStats tracks aggregate world statistics.
type SimStats struct {
	Tick         uint64         `json:"tick"`
	Population   int            `json:"population"`
	States       map[string]int `json:"states"`
	Spawns       int            `json:"spawns"`  // Cumulative
	Deaths       int            `json:"deaths"`  // Cumulative
	Attacks      int            `json:"attacks"` // Cumulative
	ScentedCells int            `json:"scented_cells"`
	ScentTotal   int            `json:"scent_total"` // Sum of all live strengths
	MeanHP       float64        `json:"mean_hp"`
	StdHP        float64        `json:"std_hp"`
}

// Frame is what subscribers receive after every tick.
type Frame struct {
	Tick   uint64   `json:"tick"`
	Stats  SimStats `json:"stats"`
	Events []Event  `json:"events,omitempty"`
}

func (s *Simulation) emit(tick uint64, category, description string) {
	s.eventSeq++
	s.Events = append(s.Events, Event{Seq: s.eventSeq, Tick: tick, Description: description, Category: category})
}

// eventsAfter copies the buffered events with Seq > after. Callers hold mu.
func (s *Simulation) eventsAfter(after uint64) []Event {
	i := sort.Search(len(s.Events), func(i int) bool { return s.Events[i].Seq > after })
	if i == len(s.Events) {
		return nil
	}
	return append([]Event(nil), s.Events[i:]...)
}

// trimEvents keeps the last maxEvents entries.
func (s *Simulation) trimEvents() {
	if len(s.Events) > maxEvents {
		s.Events = append([]Event(nil), s.Events[len(s.Events)-maxEvents:]...)
	}
}

func (s *Simulation) updateStats() {
	states := make(map[string]int, agents.NumStates)
	hp := make([]float64, 0, len(s.Agents))
	for _, a := range s.Agents {
		states[a.State.String()]++
		hp = append(hp, float64(a.HP))
	}

	scented, total := 0, 0
	for _, f := range s.WorldMap.Fields() {
		if f.Len() == 0 {
			continue
		}
		scented++
		for _, v := range f.Scents {
			total += v
		}
	}

	s.Stats.Tick = s.LastTick
	s.Stats.Population = len(s.Agents)
	s.Stats.States = states
	s.Stats.ScentedCells = scented
	s.Stats.ScentTotal = total
	s.Stats.MeanHP, s.Stats.StdHP = 0, 0
	if len(hp) > 0 {
		s.Stats.MeanHP = stat.Mean(hp, nil)
	}
	if len(hp) > 1 {
		s.Stats.StdHP = stat.StdDev(hp, nil)
	}
}

// Subscribe registers for per-tick frames. Slow subscribers miss frames
// rather than stalling the clock.
func (s *Simulation) Subscribe() (int, <-chan Frame) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan Frame, 16)
	s.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (s *Simulation) Unsubscribe(id int) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	if ch, ok := s.subs[id]; ok {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *Simulation) publish(f Frame) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- f:
		default:
		}
	}
}
