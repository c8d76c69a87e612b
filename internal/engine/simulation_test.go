package engine

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/talgya/hexscent/internal/agents"
	"github.com/talgya/hexscent/internal/world"
)

func newTestSim(t *testing.T, radius, workers int) *Simulation {
	t.Helper()
	m := world.BuildMap(radius)
	layout := world.NewLayout(world.OrientationPointy, world.Point{X: 10, Y: 10}, world.Point{})
	opts := DefaultOptions()
	opts.Workers = workers
	return NewSimulation(m, layout, agents.NewSpawner(42, agents.DefaultProfile()), opts)
}

func TestSpawnErrors(t *testing.T) {
	sim := newTestSim(t, 2, 1)

	if _, err := sim.SpawnAgent(1, "first", world.HexCoord{}); err != nil {
		t.Fatalf("spawn: %v", err)
	}

	tests := []struct {
		name  string
		id    agents.AgentID
		coord world.HexCoord
		want  error
	}{
		{"duplicate id", 1, world.HexCoord{Q: 1}, ErrDuplicateAgent},
		{"off the grid", 2, world.HexCoord{Q: 5}, ErrNoSuchCell},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.SpawnAgent(tt.id, "", tt.coord)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := sim.Activate(99); !errors.Is(err, ErrNoSuchAgent) {
		t.Errorf("Activate(99) err = %v, want ErrNoSuchAgent", err)
	}
	if len(sim.ListAgents()) != 1 {
		t.Errorf("failed spawns left agents behind: %d", len(sim.ListAgents()))
	}
}

func TestSpawnKeepsIDOrder(t *testing.T) {
	sim := newTestSim(t, 2, 1)
	for _, id := range []agents.AgentID{5, 2, 9, 1} {
		if _, err := sim.SpawnAgent(id, "", world.HexCoord{}); err != nil {
			t.Fatal(err)
		}
	}
	var got []agents.AgentID
	for _, v := range sim.ListAgents() {
		got = append(got, v.ID)
	}
	want := []agents.AgentID{1, 2, 5, 9}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}

	a, err := sim.SpawnRandom("")
	if err != nil {
		t.Fatal(err)
	}
	if a.ID != 10 {
		t.Errorf("random spawn id = %d, want 10", a.ID)
	}
}

func TestDepositFollowsDiffusion(t *testing.T) {
	sim := newTestSim(t, 2, 1)
	a, err := sim.SpawnAgent(1, "", world.HexCoord{})
	if err != nil {
		t.Fatal(err)
	}
	center, _ := sim.Cell(world.HexCoord{})
	east, _ := sim.Cell(world.HexCoord{Q: 1})

	sim.AdvanceTicks(1)
	if s := sim.ScentsOf(center)[a.ID.Source()]; s != 100 {
		t.Fatalf("tick 1 center = %d, want a fresh 100", s)
	}
	if len(sim.ScentsOf(east)) != 0 {
		t.Fatalf("tick 1: scent spread before it was broadcast")
	}

	sim.AdvanceTicks(1)
	if s := sim.ScentsOf(center)[a.ID.Source()]; s != 100 {
		t.Errorf("tick 2 center = %d, want 100", s)
	}
	if s := sim.ScentsOf(east)[a.ID.Source()]; s != 80 {
		t.Errorf("tick 2 east = %d, want 80", s)
	}
	if e := sim.EmissionOf(center)[a.ID.Source()]; e != 80 {
		t.Errorf("tick 2 center emission = %d, want 80", e)
	}
	if sim.CurrentTick() != 2 {
		t.Errorf("tick = %d, want 2", sim.CurrentTick())
	}
}

func TestFightToTheDeath(t *testing.T) {
	sim := newTestSim(t, 2, 1)
	if _, err := sim.SpawnAgent(1, "Ash", world.HexCoord{}); err != nil {
		t.Fatal(err)
	}
	if _, err := sim.SpawnAgent(2, "Briar", world.HexCoord{Q: 1}); err != nil {
		t.Fatal(err)
	}
	attacker := sim.AgentIndex[1]
	attacker.State = agents.StateFighting
	attacker.Targets = []agents.AgentID{2}

	// 10 → 5 → 1 → 0: hits land one tick after they are thrown, regen 1.
	wantHP := []int{10, 5, 1}
	for i, hp := range wantHP {
		sim.AdvanceTicks(1)
		v, ok := sim.Agent(2)
		if !ok {
			t.Fatalf("tick %d: victim gone early", i+1)
		}
		if v.HP != hp {
			t.Fatalf("tick %d: victim HP %d, want %d", i+1, v.HP, hp)
		}
	}

	sim.AdvanceTicks(1)
	if _, ok := sim.Agent(2); ok {
		t.Fatal("victim still listed after reaching zero HP")
	}
	stats := sim.Snapshot()
	if stats.Deaths != 1 || stats.Population != 1 || stats.Attacks != 4 {
		t.Errorf("stats = %+v", stats)
	}

	var deaths int
	for _, e := range sim.RecentEvents(0) {
		if e.Category == CategoryDeath {
			deaths++
		}
	}
	if deaths != 1 {
		t.Errorf("%d death events, want 1", deaths)
	}

	sim.AdvanceTicks(1)
	if v, _ := sim.Agent(1); v.State != agents.StateSearching.String() || len(v.Targets) != 0 {
		t.Errorf("survivor %s targets %v, want SEARCHING with none", v.State, v.Targets)
	}
}

func TestAdvanceTicksDeterministicAcrossWorkers(t *testing.T) {
	run := func(workers int) ([]AgentView, SimStats) {
		sim := newTestSim(t, 8, workers)
		sim.Spawner.Profile.Activate = true
		sim.SpawnPopulation(12)
		sim.AdvanceTicks(60)
		return sim.ListAgents(), sim.Snapshot()
	}

	wantAgents, wantStats := run(1)
	for _, workers := range []int{2, 8} {
		gotAgents, gotStats := run(workers)
		if !reflect.DeepEqual(gotAgents, wantAgents) {
			t.Errorf("workers=%d: agents diverged", workers)
		}
		if !reflect.DeepEqual(gotStats, wantStats) {
			t.Errorf("workers=%d: stats %+v, want %+v", workers, gotStats, wantStats)
		}
	}
}

func TestAdvanceTicksZeroAndNegative(t *testing.T) {
	sim := newTestSim(t, 1, 1)
	sim.AdvanceTicks(0)
	if sim.CurrentTick() != 0 {
		t.Errorf("AdvanceTicks(0) moved the clock to %d", sim.CurrentTick())
	}

	defer func() {
		if recover() == nil {
			t.Error("AdvanceTicks(-1) did not panic")
		}
	}()
	sim.AdvanceTicks(-1)
}

func TestActivateAll(t *testing.T) {
	sim := newTestSim(t, 2, 1)
	sim.SpawnPopulation(4)
	if n := sim.ActivateAll(); n != 4 {
		t.Errorf("activated %d, want 4", n)
	}
	if n := sim.ActivateAll(); n != 0 {
		t.Errorf("second ActivateAll woke %d", n)
	}
	if woke, err := sim.Activate(1); err != nil || woke {
		t.Errorf("Activate(1) = %v, %v", woke, err)
	}
}

func TestEventsSince(t *testing.T) {
	sim := newTestSim(t, 2, 1)
	sim.SpawnPopulation(3)
	all := sim.EventsSince(0)
	if len(all) != 3 {
		t.Fatalf("%d events, want 3 spawns", len(all))
	}
	if got := sim.EventsSince(all[1].Seq); len(got) != 1 || got[0].Seq != all[2].Seq {
		t.Errorf("EventsSince(%d) = %+v", all[1].Seq, got)
	}
	if got := sim.RecentEvents(2); len(got) != 2 || got[1].Seq != all[2].Seq {
		t.Errorf("RecentEvents(2) = %+v", got)
	}
}

func TestSubscribe(t *testing.T) {
	sim := newTestSim(t, 1, 1)
	id, ch := sim.Subscribe()
	sim.AdvanceTicks(2)

	for want := uint64(1); want <= 2; want++ {
		select {
		case f := <-ch:
			if f.Tick != want {
				t.Errorf("frame tick %d, want %d", f.Tick, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("no frame for tick %d", want)
		}
	}

	sim.Unsubscribe(id)
	if _, ok := <-ch; ok {
		t.Error("channel still open after Unsubscribe")
	}
}

func TestFramesCarryEventsWithFullBuffer(t *testing.T) {
	sim := newTestSim(t, 2, 1)
	for i := 0; i < maxEvents; i++ {
		sim.emit(0, CategorySpawn, "filler")
	}
	if _, err := sim.SpawnAgent(1, "Ash", world.HexCoord{}); err != nil {
		t.Fatal(err)
	}
	if _, err := sim.SpawnAgent(2, "Briar", world.HexCoord{Q: 1}); err != nil {
		t.Fatal(err)
	}
	attacker := sim.AgentIndex[1]
	attacker.State = agents.StateFighting
	attacker.Targets = []agents.AgentID{2}

	_, ch := sim.Subscribe()
	const ticks = 5
	sim.AdvanceTicks(ticks)

	var framed []Event
	for i := 0; i < ticks; i++ {
		select {
		case f := <-ch:
			framed = append(framed, f.Events...)
		case <-time.After(time.Second):
			t.Fatalf("no frame for tick %d", i+1)
		}
	}

	var emitted []Event
	for _, e := range sim.EventsSince(0) {
		if e.Tick > 0 {
			emitted = append(emitted, e)
		}
	}
	if len(sim.Events) != maxEvents {
		t.Errorf("buffer holds %d events, want %d", len(sim.Events), maxEvents)
	}
	if len(emitted) == 0 {
		t.Fatal("fight emitted no events")
	}
	if !reflect.DeepEqual(framed, emitted) {
		t.Errorf("frames carried %d events, tick emitted %d", len(framed), len(emitted))
	}

	var deaths int
	for _, e := range framed {
		if e.Category == CategoryDeath {
			deaths++
		}
	}
	if deaths != 1 {
		t.Errorf("%d death events in frames, want 1", deaths)
	}
}

func TestHitTestAndViews(t *testing.T) {
	sim := newTestSim(t, 2, 1)
	coord := world.HexCoord{Q: 1, R: -1}
	cell, ok := sim.Cell(coord)
	if !ok {
		t.Fatal("missing cell")
	}
	got, ok := sim.CellAt(sim.CellCenter(cell))
	if !ok || got != cell {
		t.Errorf("CellAt(center of %v) = %v, %v", coord, got, ok)
	}
	if n := len(sim.Neighbors(cell)); n != 6 {
		t.Errorf("%d neighbors, want 6", n)
	}

	a, _ := sim.SpawnAgent(3, "", coord)
	v, ok := sim.Agent(a.ID)
	if !ok || v.Center != sim.CellCenter(cell) || v.State != agents.StateResting.String() {
		t.Errorf("view = %+v", v)
	}
}
