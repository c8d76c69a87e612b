package journal

import (
	"path/filepath"
	"testing"

	"github.com/talgya/hexscent/internal/agents"
	"github.com/talgya/hexscent/internal/engine"
	"github.com/talgya/hexscent/internal/world"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenAppliesPragmas(t *testing.T) {
	db := openTestDB(t)

	var mode string
	if err := db.conn.Get(&mode, "PRAGMA journal_mode"); err != nil {
		t.Fatal(err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}

	var timeout int
	if err := db.conn.Get(&timeout, "PRAGMA busy_timeout"); err != nil {
		t.Fatal(err)
	}
	if timeout != 5000 {
		t.Errorf("busy_timeout = %d, want 5000", timeout)
	}
}

func TestStartRun(t *testing.T) {
	db := openTestDB(t)
	if db.RunID() != "" {
		t.Fatal("run id set before StartRun")
	}
	id, err := db.StartRun(42, 8, 12)
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if id == "" || db.RunID() != id {
		t.Fatalf("run id %q, RunID %q", id, db.RunID())
	}

	runs, err := db.Runs()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID != id || runs[0].Seed != 42 || runs[0].Radius != 8 || runs[0].Agents != 12 {
		t.Errorf("runs = %+v", runs)
	}
}

func TestEventsAndStats(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.StartRun(1, 2, 3); err != nil {
		t.Fatal(err)
	}

	events := []engine.Event{
		{Tick: 1, Description: "first", Category: engine.CategorySpawn},
		{Tick: 2, Description: "second", Category: engine.CategoryFight},
		{Tick: 3, Description: "third", Category: engine.CategoryDeath},
	}
	if err := db.SaveEvents(events); err != nil {
		t.Fatalf("SaveEvents: %v", err)
	}
	if err := db.SaveEvents(nil); err != nil {
		t.Errorf("SaveEvents(nil): %v", err)
	}

	got, err := db.RecentEvents(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Description != "third" || got[1].Description != "second" {
		t.Errorf("RecentEvents(2) = %+v", got)
	}

	for _, tick := range []uint64{20, 10} {
		if err := db.SaveStats(engine.SimStats{Tick: tick, Population: int(tick)}); err != nil {
			t.Fatalf("SaveStats: %v", err)
		}
	}
	// Same tick twice replaces.
	if err := db.SaveStats(engine.SimStats{Tick: 10, Population: 7}); err != nil {
		t.Fatal(err)
	}

	rows, err := db.StatsHistory()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[0].Tick != 10 || rows[0].Population != 7 || rows[1].Tick != 20 {
		t.Errorf("StatsHistory = %+v", rows)
	}
}

func TestRunsAreIsolated(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.StartRun(1, 2, 3); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveEvents([]engine.Event{{Tick: 1, Description: "old run", Category: engine.CategorySpawn}}); err != nil {
		t.Fatal(err)
	}
	if _, err := db.StartRun(4, 5, 6); err != nil {
		t.Fatal(err)
	}
	got, err := db.RecentEvents(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("new run sees %d events from the previous one", len(got))
	}
}

func TestRecorderFlushesOnce(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.StartRun(1, 2, 3); err != nil {
		t.Fatal(err)
	}

	sim := engine.NewSimulation(
		world.BuildMap(2),
		world.NewLayout(world.OrientationPointy, world.Point{X: 10, Y: 10}, world.Point{}),
		agents.NewSpawner(1, agents.DefaultProfile()),
		engine.DefaultOptions(),
	)
	rec := NewRecorder(db, sim)

	sim.SpawnPopulation(2)
	if err := rec.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if err := rec.Flush(); err != nil {
		t.Fatalf("second Flush: %v", err)
	}
	sim.SpawnPopulation(1)
	sim.AdvanceTicks(1)
	if err := rec.Flush(); err != nil {
		t.Fatal(err)
	}

	got, err := db.RecentEvents(100)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("journal holds %d events, want 3 spawns", len(got))
	}
	rows, err := db.StatsHistory()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[1].Tick != 1 || rows[1].Population != 3 {
		t.Errorf("StatsHistory = %+v", rows)
	}
}
