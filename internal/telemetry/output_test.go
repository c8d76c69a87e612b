package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/talgya/hexscent/internal/config"
	"github.com/talgya/hexscent/internal/engine"
)

func TestDisabledOutputIsNilSafe(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v", om, err)
	}
	if err := om.WriteStats(engine.SimStats{Tick: 1}); err != nil {
		t.Error(err)
	}
	if err := om.WriteConfig(nil); err != nil {
		t.Error(err)
	}
	if om.Summary().Samples != 0 || om.Dir() != "" || om.Close() != nil {
		t.Error("nil manager should be inert")
	}
}

func TestWriteStatsHeaderOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	for tick := uint64(100); tick <= 300; tick += 100 {
		s := engine.SimStats{
			Tick:       tick,
			Population: 4,
			States:     map[string]int{"SEARCHING": 3, "HUNTING": 1},
			ScentTotal: int(tick),
		}
		if err := om.WriteStats(s); err != nil {
			t.Fatalf("WriteStats: %v", err)
		}
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "stats.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("%d lines, want header + 3 rows:\n%s", len(lines), data)
	}
	if !strings.HasPrefix(lines[0], "tick,population,resting,searching,hunting") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "100,4,0,3,1,") {
		t.Errorf("first row = %q", lines[1])
	}

	sum := om.Summary()
	if sum.Samples != 3 || sum.FinalTick != 300 || sum.MedianScentTotal != 200 {
		t.Errorf("summary = %+v", sum)
	}
}

func TestWriteConfig(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	om, err := NewOutputManager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer om.Close()

	if err := om.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	if _, err := config.Load(filepath.Join(om.Dir(), "config.yaml")); err != nil {
		t.Errorf("written config does not load: %v", err)
	}
}

func TestSummarize(t *testing.T) {
	if got := Summarize(nil); got != (Summary{}) {
		t.Errorf("Summarize(nil) = %+v", got)
	}

	records := []StatsRecord{
		{Tick: 10, Population: 6, ScentedCells: 10, ScentTotal: 900, MeanHP: 8},
		{Tick: 20, Population: 9, ScentedCells: 20, ScentTotal: 300, MeanHP: 6, Attacks: 4},
		{Tick: 30, Population: 0, ScentedCells: 30, ScentTotal: 600, Deaths: 9, Attacks: 12},
	}
	got := Summarize(records)
	want := Summary{
		Samples:          3,
		FinalTick:        30,
		PeakPopulation:   9,
		FinalPopulation:  0,
		MeanPopulation:   5,
		MeanScentedCells: 20,
		MedianScentTotal: 600,
		MeanHP:           7, // empty samples excluded
		Deaths:           9,
		Attacks:          12,
	}
	if got != want {
		t.Errorf("Summarize = %+v\nwant %+v", got, want)
	}
}
