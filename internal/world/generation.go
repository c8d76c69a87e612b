// World generation using layered simplex noise.
// Relief is cosmetic: renderers color cells by it, the simulation ignores it.
package world

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/hexscent/internal/entropy"
)

// Terrain types for hex cells.
type Terrain uint8

const (
	TerrainLowland  Terrain = iota // Below sea level in the noise field
	TerrainPlains                  // Open ground
	TerrainForest                  // Mid elevation
	TerrainHighland                // Rolling hills
	TerrainMountain                // Peaks
)

// GenConfig holds world generation parameters.
type GenConfig struct {
	Radius      int     // Hex grid radius
	Seed        int64   // Noise seed
	Octaves     int     // Noise layers
	Frequency   float64 // Base noise frequency
	SeaLevel    float64 // Elevation threshold for lowland (0.0–1.0)
	MountainLvl float64 // Elevation threshold for mountains (0.0–1.0)
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Radius:      8,
		Seed:        42,
		Octaves:     4,
		Frequency:   0.12,
		SeaLevel:    0.30,
		MountainLvl: 0.75,
	}
}

// Generate builds the map and assigns elevation and terrain to every cell.
// The same config always yields the same map.
func Generate(cfg GenConfig) *Map {
	m := BuildMap(cfg.Radius)
	noise := opensimplex.NewNormalized(cfg.Seed + entropy.StreamTerrain)

	for _, cell := range m.Hexes {
		// Hex axial → cartesian: x = q + r*0.5, y = r * sqrt(3)/2
		x := float64(cell.Coord.Q) + float64(cell.Coord.R)*0.5
		y := float64(cell.Coord.R) * math.Sqrt(3.0) / 2.0

		elev := octaveNoise(noise, x, y, cfg.Octaves, cfg.Frequency, 0.5)
		cell.Elevation = elev
		cell.Terrain = deriveTerrain(elev, cfg)
	}
	return m
}

func deriveTerrain(elev float64, cfg GenConfig) Terrain {
	switch {
	case elev < cfg.SeaLevel:
		return TerrainLowland
	case elev > cfg.MountainLvl:
		return TerrainMountain
	case elev > (cfg.SeaLevel+cfg.MountainLvl)*0.6:
		return TerrainHighland
	case elev > (cfg.SeaLevel+cfg.MountainLvl)*0.45:
		return TerrainForest
	default:
		return TerrainPlains
	}
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	if octaves < 1 {
		octaves = 1
	}
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// TerrainCounts returns a summary of terrain type distribution.
func TerrainCounts(m *Map) map[Terrain]int {
	counts := make(map[Terrain]int)
	for _, cell := range m.Hexes {
		counts[cell.Terrain]++
	}
	return counts
}

// TerrainName returns a human-readable name for a terrain type.
func TerrainName(t Terrain) string {
	switch t {
	case TerrainLowland:
		return "Lowland"
	case TerrainPlains:
		return "Plains"
	case TerrainForest:
		return "Forest"
	case TerrainHighland:
		return "Highland"
	case TerrainMountain:
		return "Mountain"
	default:
		return "Unknown"
	}
}
