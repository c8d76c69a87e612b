// Package journal records the history of simulation runs in SQLite:
// one row per run, its notable events, and periodic stats.
// The journal is append-only; nothing in it is ever loaded back into a world.
package journal

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/hexscent/internal/engine"
)

// DB wraps a SQLite connection for the run journal.
type DB struct {
	conn  *sqlx.DB
	runID string
}

// RunInfo describes a run when it starts.
type RunInfo struct {
	ID        string `db:"id"`
	Seed      int64  `db:"seed"`
	Radius    int    `db:"radius"`
	Agents    int    `db:"agents"`
	StartedAt string `db:"started_at"`
}

// StatsRow is one periodic stats sample.
type StatsRow struct {
	Tick         uint64  `db:"tick"`
	Population   int     `db:"population"`
	Deaths       int     `db:"deaths"`
	Attacks      int     `db:"attacks"`
	ScentedCells int     `db:"scented_cells"`
	MeanHP       float64 `db:"mean_hp"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		radius INTEGER NOT NULL,
		agents INTEGER NOT NULL,
		started_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tick_stats (
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		population INTEGER NOT NULL,
		deaths INTEGER NOT NULL,
		attacks INTEGER NOT NULL,
		scented_cells INTEGER NOT NULL,
		mean_hp REAL NOT NULL,
		PRIMARY KEY (run_id, tick)
	);

	CREATE INDEX IF NOT EXISTS idx_events_run_tick ON events(run_id, tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// StartRun registers a new run and tags every later write with its id.
func (db *DB) StartRun(seed int64, radius, agentCount int) (string, error) {
	id := uuid.NewString()
	_, err := db.conn.Exec(
		"INSERT INTO runs (id, seed, radius, agents, started_at) VALUES (?, ?, ?, ?, ?)",
		id, seed, radius, agentCount, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	db.runID = id
	slog.Info("journal run started", "run_id", id, "seed", seed)
	return id, nil
}

// RunID returns the active run id, empty before StartRun.
func (db *DB) RunID() string {
	return db.runID
}

// SaveEvents appends events to the database.
func (db *DB) SaveEvents(events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex("INSERT INTO events (run_id, tick, description, category) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.Exec(db.runID, e.Tick, e.Description, e.Category); err != nil {
			return fmt.Errorf("insert event at tick %d: %w", e.Tick, err)
		}
	}

	return tx.Commit()
}

// SaveStats records one stats sample.
func (db *DB) SaveStats(s engine.SimStats) error {
	_, err := db.conn.Exec(
		`INSERT OR REPLACE INTO tick_stats
			(run_id, tick, population, deaths, attacks, scented_cells, mean_hp)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
		db.runID, s.Tick, s.Population, s.Deaths, s.Attacks, s.ScentedCells, s.MeanHP,
	)
	if err != nil {
		return fmt.Errorf("insert stats at tick %d: %w", s.Tick, err)
	}
	return nil
}

// RecentEvents returns the most recent N events of the active run, newest first.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT tick, description, category FROM events WHERE run_id = ? ORDER BY id DESC LIMIT ?",
		db.runID, limit,
	)
	return events, err
}

// StatsHistory returns the active run's stats samples in tick order.
func (db *DB) StatsHistory() ([]StatsRow, error) {
	var rows []StatsRow
	err := db.conn.Select(&rows,
		`SELECT tick, population, deaths, attacks, scented_cells, mean_hp
			FROM tick_stats WHERE run_id = ? ORDER BY tick`,
		db.runID,
	)
	return rows, err
}

// Runs lists every recorded run, newest first.
func (db *DB) Runs() ([]RunInfo, error) {
	var runs []RunInfo
	err := db.conn.Select(&runs, "SELECT id, seed, radius, agents, started_at FROM runs ORDER BY started_at DESC")
	return runs, err
}
