// Package scent implements the per-cell scent field and its three-phase
// diffusion cycle: decay, broadcast, receive.
package scent

import "sort"

// SourceID identifies the emitter of a scent (an agent id).
type SourceID uint64

// Smell is one source's signal strength at a cell.
type Smell struct {
	Source   SourceID `json:"source"`
	Strength int      `json:"strength"`
}

// Field holds a cell's live scents and the emission snapshot its
// neighbors read during Receive. Emission is replaced, never edited.
type Field struct {
	Scents   map[SourceID]int
	Emission map[SourceID]int
}

// NewField returns an empty field.
func NewField() Field {
	return Field{
		Scents:   make(map[SourceID]int),
		Emission: map[SourceID]int{},
	}
}

// Deposit sets the source's strength at this cell, overwriting any trail.
func (f *Field) Deposit(src SourceID, strength int) {
	if f.Scents == nil {
		f.Scents = make(map[SourceID]int)
	}
	f.Scents[src] = strength
}

// Strength returns the live strength for src.
func (f *Field) Strength(src SourceID) (int, bool) {
	s, ok := f.Scents[src]
	return s, ok
}

// Strongest returns the strongest scent not emitted by exclude.
// Equal strengths resolve to the lowest source id.
func (f *Field) Strongest(exclude SourceID) (Smell, bool) {
	var best Smell
	found := false
	for src, s := range f.Scents {
		if src == exclude {
			continue
		}
		if !found || s > best.Strength || (s == best.Strength && src < best.Source) {
			best = Smell{Source: src, Strength: s}
			found = true
		}
	}
	return best, found
}

// Len returns the number of live scents.
func (f *Field) Len() int {
	return len(f.Scents)
}

// Snapshot copies the live scents.
func (f *Field) Snapshot() map[SourceID]int {
	return copyScents(f.Scents)
}

// Smells returns the live scents sorted strongest first.
func (f *Field) Smells() []Smell {
	out := make([]Smell, 0, len(f.Scents))
	for src, s := range f.Scents {
		out = append(out, Smell{Source: src, Strength: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Strength != out[j].Strength {
			return out[i].Strength > out[j].Strength
		}
		return out[i].Source < out[j].Source
	})
	return out
}

// Decay weakens every scent by its source's decay strength and drops the
// ones that reach zero. Touches only this field.
func (f *Field) Decay(d Decayer) {
	for src, s := range f.Scents {
		s -= d.DecayStrength(src)
		if s <= 0 {
			delete(f.Scents, src)
			continue
		}
		f.Scents[src] = s
	}
}

// Broadcast freezes the current scents as this tick's emission.
func (f *Field) Broadcast() {
	f.Emission = copyScents(f.Scents)
}

// Receive merges the neighbors' emissions into the live scents. Per source
// the strongest neighbor wins (no summing), and the merge keeps whichever of
// the local and incoming strength is larger.
func (f *Field) Receive(neighbors []*Field) {
	incoming := make(map[SourceID]int)
	for _, n := range neighbors {
		for src, s := range n.Emission {
			if cur, ok := incoming[src]; !ok || s > cur {
				incoming[src] = s
			}
		}
	}
	if len(incoming) == 0 {
		return
	}
	if f.Scents == nil {
		f.Scents = make(map[SourceID]int, len(incoming))
	}
	for src, s := range incoming {
		if cur, ok := f.Scents[src]; !ok || s > cur {
			f.Scents[src] = s
		}
	}
}

func copyScents(m map[SourceID]int) map[SourceID]int {
	out := make(map[SourceID]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
