package journal

import (
	"fmt"

	"github.com/talgya/hexscent/internal/engine"
)

// Recorder copies a simulation's new events and current stats into the
// journal each time Flush is called.
type Recorder struct {
	DB  *DB
	Sim *engine.Simulation

	lastSeq uint64
}

// NewRecorder creates a recorder for sim.
func NewRecorder(db *DB, sim *engine.Simulation) *Recorder {
	return &Recorder{DB: db, Sim: sim}
}

// Flush writes everything that happened since the previous flush.
func (r *Recorder) Flush() error {
	events := r.Sim.EventsSince(r.lastSeq)
	stats := r.Sim.Snapshot()

	if err := r.DB.SaveEvents(events); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	if err := r.DB.SaveStats(stats); err != nil {
		return fmt.Errorf("save stats: %w", err)
	}
	if len(events) > 0 {
		r.lastSeq = events[len(events)-1].Seq
	}
	return nil
}
