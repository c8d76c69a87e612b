// Package engine provides the tick-based simulation loop and the world
// clock that orders every phase inside a tick.
package engine

import (
	"log/slog"
	"sync"
	"time"
)

// Engine drives the simulation forward in real time.
type Engine struct {
	Interval    time.Duration // Base tick interval
	ReportEvery uint64        // Ticks between OnReport calls; 0 disables
	MaxTicks    uint64        // Stop after this tick; 0 runs until Stop

	// Callbacks, populated during setup.
	OnTick   func(tick uint64) // Every tick
	OnReport func(tick uint64) // Every ReportEvery ticks

	mu      sync.Mutex
	tick    uint64
	speed   float64 // 1.0 = real-time, 0 = paused
	running bool
}

// NewEngine creates a simulation engine with default settings.
func NewEngine() *Engine {
	return &Engine{
		Interval:    100 * time.Millisecond,
		ReportEvery: 100,
		speed:       1.0,
	}
}

// Tick returns the engine's tick counter.
func (e *Engine) Tick() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick
}

// SetTick resets the counter, e.g. to line up with an existing simulation.
func (e *Engine) SetTick(t uint64) {
	e.mu.Lock()
	e.tick = t
	e.mu.Unlock()
}

// Speed returns the current speed multiplier.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// SetSpeed changes the speed multiplier; 0 pauses.
func (e *Engine) SetSpeed(speed float64) {
	e.mu.Lock()
	e.speed = speed
	e.mu.Unlock()
}

// Running reports whether Run is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Run starts the simulation loop. Blocks until Stop() is called or
// MaxTicks is reached.
func (e *Engine) Run() {
	e.mu.Lock()
	e.running = true
	e.mu.Unlock()
	slog.Info("simulation engine started", "tick", e.Tick(), "speed", e.Speed())

	for e.Running() {
		speed := e.Speed()
		if speed <= 0 {
			// Paused; check again shortly.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		if done := e.step(); done {
			e.Stop()
			break
		}

		// Sleep for the remainder of the tick interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("simulation engine stopped", "tick", e.Tick())
}

// Stop halts the simulation loop.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.running = false
	e.mu.Unlock()
}

// step advances by one tick and reports whether MaxTicks was reached.
func (e *Engine) step() bool {
	e.mu.Lock()
	e.tick++
	tick := e.tick
	e.mu.Unlock()

	if e.OnTick != nil {
		e.OnTick(tick)
		// OnTick may have resynced the counter with SetTick.
		tick = e.Tick()
	}
	if e.ReportEvery > 0 && tick%e.ReportEvery == 0 && e.OnReport != nil {
		e.OnReport(tick)
	}
	return e.MaxTicks > 0 && tick >= e.MaxTicks
}
