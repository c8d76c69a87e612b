package scent

import (
	"sync"

	"github.com/talgya/hexscent/internal/parallel"
)

// Decayer reports how much a source's scent weakens per tick.
type Decayer interface {
	DecayStrength(src SourceID) int
}

// Uniform decays every source by the same amount.
type Uniform int

// DecayStrength implements Decayer.
func (u Uniform) DecayStrength(SourceID) int { return int(u) }

// Registry maps sources to their decay strength. Sources stay registered
// after their emitter is gone so the trail keeps fading at its own rate.
type Registry struct {
	mu       sync.RWMutex
	rates    map[SourceID]int
	fallback int
}

// NewRegistry creates a registry that uses fallback for unknown sources.
func NewRegistry(fallback int) *Registry {
	return &Registry{rates: make(map[SourceID]int), fallback: fallback}
}

// Register records src's decay strength.
func (r *Registry) Register(src SourceID, strength int) {
	r.mu.Lock()
	r.rates[src] = strength
	r.mu.Unlock()
}

// DecayStrength implements Decayer.
func (r *Registry) DecayStrength(src SourceID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.rates[src]; ok {
		return s
	}
	return r.fallback
}

// Neighborhood resolves the fields adjacent to fields[i].
type Neighborhood func(i int) []*Field

// Diffuser runs one diffusion cycle over a set of fields. Each phase
// completes for every field before the next begins.
type Diffuser struct {
	Decay   Decayer
	Workers int // 0 = GOMAXPROCS
}

// Step runs decay, broadcast and receive across all fields.
func (d *Diffuser) Step(fields []*Field, neighbors Neighborhood) {
	n := len(fields)
	parallel.For(n, d.Workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			fields[i].Decay(d.Decay)
		}
	})
	parallel.For(n, d.Workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			fields[i].Broadcast()
		}
	})
	parallel.For(n, d.Workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			fields[i].Receive(neighbors(i))
		}
	})
}
