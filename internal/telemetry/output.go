// Package telemetry writes per-report CSV samples of a running simulation.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/talgya/hexscent/internal/agents"
	"github.com/talgya/hexscent/internal/config"
	"github.com/talgya/hexscent/internal/engine"
)

// StatsRecord is one row of stats.csv.
type StatsRecord struct {
	Tick         uint64  `csv:"tick"`
	Population   int     `csv:"population"`
	Resting      int     `csv:"resting"`
	Searching    int     `csv:"searching"`
	Hunting      int     `csv:"hunting"`
	Fighting     int     `csv:"fighting"`
	Spawns       int     `csv:"spawns"`
	Deaths       int     `csv:"deaths"`
	Attacks      int     `csv:"attacks"`
	ScentedCells int     `csv:"scented_cells"`
	ScentTotal   int     `csv:"scent_total"`
	MeanHP       float64 `csv:"mean_hp"`
	StdHP        float64 `csv:"std_hp"`
}

// RecordFromStats flattens a stats snapshot into a CSV row.
func RecordFromStats(s engine.SimStats) StatsRecord {
	return StatsRecord{
		Tick:         s.Tick,
		Population:   s.Population,
		Resting:      s.States[agents.StateResting.String()],
		Searching:    s.States[agents.StateSearching.String()],
		Hunting:      s.States[agents.StateHunting.String()],
		Fighting:     s.States[agents.StateFighting.String()],
		Spawns:       s.Spawns,
		Deaths:       s.Deaths,
		Attacks:      s.Attacks,
		ScentedCells: s.ScentedCells,
		ScentTotal:   s.ScentTotal,
		MeanHP:       s.MeanHP,
		StdHP:        s.StdHP,
	}
}

// OutputManager handles run output: the config used and a stats.csv sample
// per report.
type OutputManager struct {
	dir       string
	statsFile *os.File

	statsHeaderWritten bool
	history            []StatsRecord
}

// NewOutputManager creates the output directory and opens stats.csv.
// Returns nil if dir is empty (output disabled); every method is nil-safe.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "stats.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating stats.csv: %w", err)
	}
	return &OutputManager{dir: dir, statsFile: f}, nil
}

// WriteConfig saves the configuration as YAML next to the samples.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteStats appends one sample to stats.csv.
func (om *OutputManager) WriteStats(s engine.SimStats) error {
	if om == nil {
		return nil
	}

	records := []StatsRecord{RecordFromStats(s)}
	om.history = append(om.history, records[0])
	if !om.statsHeaderWritten {
		if err := gocsv.Marshal(records, om.statsFile); err != nil {
			return fmt.Errorf("writing stats: %w", err)
		}
		om.statsHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.statsFile); err != nil {
		return fmt.Errorf("writing stats: %w", err)
	}
	return nil
}

// Summary aggregates every sample written so far.
func (om *OutputManager) Summary() Summary {
	if om == nil {
		return Summary{}
	}
	return Summarize(om.history)
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes the output files.
func (om *OutputManager) Close() error {
	if om == nil || om.statsFile == nil {
		return nil
	}
	return om.statsFile.Close()
}
