// Agent spawning: issues ids, names, combat stats and a private random
// stream for each creature.
package agents

import (
	"math/rand"

	"github.com/talgya/hexscent/internal/entropy"
	"github.com/talgya/hexscent/internal/world"
)

// Profile holds the stats every new agent starts with.
type Profile struct {
	MaxHP      int
	Regen      int
	Attack     int
	Defense    int
	SmellDecay int
	Activate   bool // Start in SEARCHING instead of RESTING
}

// DefaultProfile returns the stock creature.
func DefaultProfile() Profile {
	return Profile{
		MaxHP:      10,
		Regen:      1,
		Attack:     5,
		Defense:    0,
		SmellDecay: 20,
	}
}

// Spawner creates agents for the simulation.
type Spawner struct {
	rng     *rand.Rand
	nextID  AgentID
	Profile Profile
}

// NewSpawner creates an agent spawner with the given seed.
func NewSpawner(seed int64, p Profile) *Spawner {
	return &Spawner{
		rng:     entropy.New(seed, entropy.StreamSpawner),
		nextID:  1,
		Profile: p,
	}
}

// NextID reserves and returns a fresh id.
func (s *Spawner) NextID() AgentID {
	id := s.nextID
	s.nextID++
	return id
}

// Spawn creates an agent with an explicit id. An empty name is generated.
// Ids at or above the next free id push the counter past them.
func (s *Spawner) Spawn(id AgentID, name string, position world.HexCoord, tick uint64) *Agent {
	if id >= s.nextID {
		s.nextID = id + 1
	}
	if name == "" {
		name = s.generateName()
	}

	state := StateResting
	if s.Profile.Activate {
		state = StateSearching
	}

	return &Agent{
		ID:         id,
		Name:       name,
		Position:   position,
		State:      state,
		HP:         s.Profile.MaxHP,
		MaxHP:      s.Profile.MaxHP,
		Regen:      s.Profile.Regen,
		Attack:     s.Profile.Attack,
		Defense:    s.Profile.Defense,
		SmellDecay: s.Profile.SmellDecay,
		Incoming:   make(map[AgentID]int),
		BornTick:   tick,
		rng:        rand.New(rand.NewSource(s.rng.Int63())),
	}
}

// SpawnPopulation creates count agents on cells drawn from candidates.
func (s *Spawner) SpawnPopulation(count int, candidates []world.HexCoord, tick uint64) []*Agent {
	if len(candidates) == 0 {
		return nil
	}
	agents := make([]*Agent, 0, count)
	for i := 0; i < count; i++ {
		agents = append(agents, s.Spawn(s.NextID(), "", s.PickCell(candidates), tick))
	}
	return agents
}

// PickCell draws one coordinate uniformly.
func (s *Spawner) PickCell(candidates []world.HexCoord) world.HexCoord {
	return candidates[s.rng.Intn(len(candidates))]
}

func (s *Spawner) generateName() string {
	first := firstNames[s.rng.Intn(len(firstNames))]
	kind := kindNames[s.rng.Intn(len(kindNames))]
	return first + " the " + kind
}

var firstNames = []string{
	"Ash", "Bramble", "Cinder", "Dusk", "Ember", "Fern", "Gale",
	"Hazel", "Ivy", "Jasper", "Kestrel", "Lark", "Moss", "Nettle",
	"Onyx", "Pike", "Quill", "Rook", "Sorrel", "Thistle", "Umber",
	"Vesper", "Wisp", "Yarrow", "Zephyr", "Alder", "Briar", "Clover",
}

var kindNames = []string{
	"Fox", "Badger", "Stoat", "Weasel", "Marten", "Ferret", "Mink",
	"Otter", "Wolverine", "Polecat", "Jackal", "Lynx", "Wildcat",
}
