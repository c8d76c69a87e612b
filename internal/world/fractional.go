package world

import "math"

// FractionalHex is a cube coordinate with real components, used while
// interpolating or converting from pixels. It is never stored.
type FractionalHex struct {
	Q, R, S float64
}

// Fractional lifts h into real space.
func (h HexCoord) Fractional() FractionalHex {
	return FractionalHex{Q: float64(h.Q), R: float64(h.R), S: float64(h.S())}
}

// Round resolves f to the nearest hex. The component with the largest
// rounding error is rebuilt from the other two so q+r+s stays exactly zero.
func (f FractionalHex) Round() HexCoord {
	qi := math.Round(f.Q)
	ri := math.Round(f.R)
	si := math.Round(f.S)
	qDiff := abs(qi - f.Q)
	rDiff := abs(ri - f.R)
	sDiff := abs(si - f.S)

	switch {
	case qDiff > rDiff && qDiff > sDiff:
		qi = -ri - si
	case rDiff > sDiff:
		ri = -qi - si
	default:
		si = -qi - ri
	}
	return NewHexCoord(int(qi), int(ri), int(si))
}

// Lerp linearly interpolates between a and b at t.
func Lerp(a, b FractionalHex, t float64) FractionalHex {
	return FractionalHex{
		Q: a.Q*(1.0-t) + b.Q*t,
		R: a.R*(1.0-t) + b.R*t,
		S: a.S*(1.0-t) + b.S*t,
	}
}

// lineNudge shifts both endpoints off cell edges so rounding never ties.
const lineNudge = 1e-6

// LineDraw returns the hexes on the straight line from a to b, inclusive.
// The result always holds a.DistanceTo(b)+1 entries.
func LineDraw(a, b HexCoord) []HexCoord {
	dist := a.DistanceTo(b)
	an := FractionalHex{Q: float64(a.Q) + lineNudge, R: float64(a.R) + lineNudge, S: float64(a.S()) - 2*lineNudge}
	bn := FractionalHex{Q: float64(b.Q) + lineNudge, R: float64(b.R) + lineNudge, S: float64(b.S()) - 2*lineNudge}

	step := 1.0 / float64(max(dist, 1))
	out := make([]HexCoord, 0, dist+1)
	for i := 0; i <= dist; i++ {
		out = append(out, Lerp(an, bn, step*float64(i)).Round())
	}
	return out
}
