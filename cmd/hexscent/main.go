// Command hexscent runs the hex-grid scent and hunting simulation.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/talgya/hexscent/internal/agents"
	"github.com/talgya/hexscent/internal/api"
	"github.com/talgya/hexscent/internal/config"
	"github.com/talgya/hexscent/internal/engine"
	"github.com/talgya/hexscent/internal/entropy"
	"github.com/talgya/hexscent/internal/journal"
	"github.com/talgya/hexscent/internal/telemetry"
	"github.com/talgya/hexscent/internal/world"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (empty = embedded defaults)")
	maxTicks := flag.Uint64("ticks", 0, "stop after this many ticks (overrides engine.max_ticks)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *maxTicks > 0 {
		cfg.Engine.MaxTicks = *maxTicks
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Derived.LogLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("hexscent starting")
	seed := entropy.ResolveSeed(cfg.World.Seed)

	// ── World Map (deterministic from seed) ──────────────────────────
	worldMap := world.Generate(cfg.GenConfig(seed))
	for t, c := range world.TerrainCounts(worldMap) {
		slog.Debug("terrain", "type", world.TerrainName(t), "count", c)
	}
	slog.Info("world map generated",
		"radius", worldMap.Radius,
		"hexes", humanize.Comma(int64(worldMap.HexCount())),
		"layout", cfg.World.Layout,
	)

	// ── Simulation ────────────────────────────────────────────────────
	spawner := agents.NewSpawner(seed, cfg.Profile())
	sim := engine.NewSimulation(worldMap, cfg.Layout(), spawner, cfg.SimOptions())
	spawned := sim.SpawnPopulation(cfg.Agents.Initial)
	for _, a := range spawned {
		slog.Debug("agent spawned", "id", a.ID, "name", a.Name, "at", a.Position, "state", a.State)
	}
	slog.Info("population ready", "agents", len(spawned), "seed", seed)

	// ── Journal ───────────────────────────────────────────────────────
	var (
		db       *journal.DB
		recorder *journal.Recorder
	)
	if cfg.Journal.Path != "" {
		if dir := filepath.Dir(cfg.Journal.Path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				slog.Error("failed to create journal directory", "dir", dir, "error", err)
				os.Exit(1)
			}
		}
		db, err = journal.Open(cfg.Journal.Path)
		if err != nil {
			slog.Error("failed to open journal", "path", cfg.Journal.Path, "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if _, err := db.StartRun(seed, cfg.World.Radius, cfg.Agents.Initial); err != nil {
			slog.Error("failed to start run", "error", err)
			os.Exit(1)
		}
		recorder = journal.NewRecorder(db, sim)
		slog.Info("journal opened", "path", cfg.Journal.Path)
	}

	// ── Telemetry ─────────────────────────────────────────────────────
	output, err := telemetry.NewOutputManager(cfg.Telemetry.Dir)
	if err != nil {
		slog.Error("failed to create telemetry output", "error", err)
		os.Exit(1)
	}
	defer output.Close()
	if err := output.WriteConfig(cfg); err != nil {
		slog.Warn("could not write config snapshot", "error", err)
	}

	// ── Engine ────────────────────────────────────────────────────────
	eng := engine.NewEngine()
	eng.Interval = cfg.Engine.Interval
	eng.ReportEvery = cfg.Engine.ReportEvery
	eng.MaxTicks = cfg.Engine.MaxTicks
	eng.SetSpeed(cfg.Engine.Speed)

	// The simulation owns the clock; the engine follows it so MaxTicks
	// still counts ticks added through the admin API.
	eng.SetTick(sim.CurrentTick())
	eng.OnTick = func(uint64) {
		sim.AdvanceTicks(1)
		eng.SetTick(sim.CurrentTick())
	}
	eng.OnReport = func(uint64) {
		stats := sim.Snapshot()
		slog.Info("report",
			"tick", humanize.Comma(int64(stats.Tick)),
			"population", stats.Population,
			"states", stats.States,
			"scented_cells", stats.ScentedCells,
			"attacks", humanize.Comma(int64(stats.Attacks)),
			"deaths", stats.Deaths,
			"mean_hp", fmt.Sprintf("%.2f", stats.MeanHP),
		)
		if recorder != nil {
			if err := recorder.Flush(); err != nil {
				slog.Error("journal flush failed", "error", err)
			}
		}
		if err := output.WriteStats(stats); err != nil {
			slog.Error("telemetry write failed", "error", err)
		}
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.API.Port > 0 {
		adminKey := cfg.AdminKey()
		if adminKey == "" {
			slog.Warn("admin key not set, admin POST endpoints disabled", "env", cfg.API.AdminKeyEnv)
		}
		apiServer := &api.Server{
			Sim:      sim,
			Eng:      eng,
			Journal:  db,
			Port:     cfg.API.Port,
			AdminKey: adminKey,
		}
		apiServer.Start()
	}

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	fmt.Printf("\n%d creatures loose on %s cells.\n", len(spawned), humanize.Comma(int64(worldMap.HexCount())))
	if cfg.API.Port > 0 {
		fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.API.Port)
	}
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run()

	// Final flush on shutdown.
	if recorder != nil {
		if err := recorder.Flush(); err != nil {
			slog.Error("final journal flush failed", "error", err)
		}
	}
	if err := output.WriteStats(sim.Snapshot()); err != nil {
		slog.Error("final telemetry write failed", "error", err)
	}
	output.Summary().Log()

	fmt.Printf("Simulation stopped at tick %s.\n", humanize.Comma(int64(sim.CurrentTick())))
}
