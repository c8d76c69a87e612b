package world

import (
	"math"
	"testing"
)

func TestFractionalRound(t *testing.T) {
	a := FractionalHex{Q: 0, R: 0, S: 0}
	b := FractionalHex{Q: 1, R: -1, S: 0}
	c := FractionalHex{Q: 0, R: -1, S: 1}
	mix := func(wa, wb, wc float64) FractionalHex {
		return FractionalHex{
			Q: a.Q*wa + b.Q*wb + c.Q*wc,
			R: a.R*wa + b.R*wb + c.R*wc,
			S: a.S*wa + b.S*wb + c.S*wc,
		}
	}

	tests := []struct {
		name string
		in   FractionalHex
		want HexCoord
	}{
		{"midpoint", Lerp(FractionalHex{}, FractionalHex{Q: 10, R: -20, S: 10}, 0.5), cube(5, -10, 5)},
		{"just before b", Lerp(a, b, 0.499), a.Round()},
		{"just past a", Lerp(a, b, 0.501), b.Round()},
		{"weighted a", mix(0.4, 0.3, 0.3), a.Round()},
		{"weighted c", mix(0.3, 0.3, 0.4), c.Round()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Round(); got != tt.want {
				t.Errorf("Round(%+v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRoundIsIdentityOnIntegers(t *testing.T) {
	for _, h := range HexesWithin(3) {
		if got := h.Fractional().Round(); got != h {
			t.Errorf("%v rounds to %v", h, got)
		}
	}
}

func TestLineDraw(t *testing.T) {
	got := LineDraw(cube(0, 0, 0), cube(1, -5, 4))
	want := []HexCoord{
		cube(0, 0, 0), cube(0, -1, 1), cube(0, -2, 2),
		cube(1, -3, 2), cube(1, -4, 3), cube(1, -5, 4),
	}
	if len(got) != len(want) {
		t.Fatalf("line has %d hexes, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLineDrawProperties(t *testing.T) {
	coords := HexesWithin(3)
	for _, a := range coords {
		for _, b := range coords {
			line := LineDraw(a, b)
			if len(line) != Distance(a, b)+1 {
				t.Fatalf("%v→%v: %d hexes, want %d", a, b, len(line), Distance(a, b)+1)
			}
			if line[0] != a || line[len(line)-1] != b {
				t.Fatalf("%v→%v: endpoints %v, %v", a, b, line[0], line[len(line)-1])
			}
			for i := 1; i < len(line); i++ {
				if Distance(line[i-1], line[i]) != 1 {
					t.Fatalf("%v→%v: step %d not adjacent", a, b, i)
				}
			}
		}
	}
}

func TestLayoutRoundTrip(t *testing.T) {
	h := cube(3, 4, -7)
	size := Point{X: 10, Y: 15}
	origin := Point{X: 35, Y: 71}

	for _, name := range []string{"flat", "pointy"} {
		t.Run(name, func(t *testing.T) {
			o, err := OrientationByName(name)
			if err != nil {
				t.Fatal(err)
			}
			l := NewLayout(o, size, origin)
			if got := l.PixelToHex(l.HexToPixel(h)); got != h {
				t.Errorf("round trip of %v = %v", h, got)
			}
			if got := l.PixelToHex(origin); got != (HexCoord{}) {
				t.Errorf("origin pixel maps to %v", got)
			}
		})
	}
}

func TestOrientationByNameUnknown(t *testing.T) {
	if _, err := OrientationByName("diagonal"); err == nil {
		t.Error("expected error for unknown orientation")
	}
}

func TestNewLayoutPanicsOnZeroSize(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewLayout with zero size did not panic")
		}
	}()
	NewLayout(OrientationPointy, Point{X: 0, Y: 10}, Point{})
}

func TestPolygonCorners(t *testing.T) {
	l := NewLayout(OrientationPointy, Point{X: 10, Y: 10}, Point{X: 100, Y: 100})
	h := cube(1, -1, 0)
	center := l.HexToPixel(h)
	corners := l.PolygonCorners(h)
	for i, c := range corners {
		d := math.Hypot(c.X-center.X, c.Y-center.Y)
		if math.Abs(d-10) > 1e-9 {
			t.Errorf("corner %d at %.6f from center, want 10", i, d)
		}
	}
	// Pointy tops: corner 0 sits at 30°.
	if math.Abs(corners[0].Y-center.Y-5) > 1e-9 {
		t.Errorf("corner 0 y offset = %.6f, want 5", corners[0].Y-center.Y)
	}
}
