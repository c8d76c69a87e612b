package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Summary condenses a run's samples into a handful of numbers.
type Summary struct {
	Samples          int
	FinalTick        uint64
	PeakPopulation   int
	FinalPopulation  int
	MeanPopulation   float64
	MeanScentedCells float64
	MedianScentTotal float64
	MeanHP           float64
	Deaths           int
	Attacks          int
}

// Summarize aggregates samples in tick order. Returns zero for no samples.
func Summarize(records []StatsRecord) Summary {
	if len(records) == 0 {
		return Summary{}
	}

	pop := make([]float64, len(records))
	cells := make([]float64, len(records))
	totals := make([]float64, len(records))
	hp := make([]float64, 0, len(records))
	sum := Summary{Samples: len(records)}
	for i, r := range records {
		pop[i] = float64(r.Population)
		cells[i] = float64(r.ScentedCells)
		totals[i] = float64(r.ScentTotal)
		if r.Population > 0 {
			hp = append(hp, r.MeanHP)
		}
		if r.Population > sum.PeakPopulation {
			sum.PeakPopulation = r.Population
		}
	}

	last := records[len(records)-1]
	sum.FinalTick = last.Tick
	sum.FinalPopulation = last.Population
	sum.Deaths = last.Deaths
	sum.Attacks = last.Attacks
	sum.MeanPopulation = stat.Mean(pop, nil)
	sum.MeanScentedCells = stat.Mean(cells, nil)
	sort.Float64s(totals)
	sum.MedianScentTotal = stat.Quantile(0.5, stat.Empirical, totals, nil)
	if len(hp) > 0 {
		sum.MeanHP = stat.Mean(hp, nil)
	}
	return sum
}

// Log writes the summary at info level.
func (s Summary) Log() {
	slog.Info("run summary",
		"samples", s.Samples,
		"final_tick", s.FinalTick,
		"peak_population", s.PeakPopulation,
		"final_population", s.FinalPopulation,
		"mean_population", s.MeanPopulation,
		"mean_scented_cells", s.MeanScentedCells,
		"median_scent_total", s.MedianScentTotal,
		"deaths", s.Deaths,
		"attacks", s.Attacks,
	)
}
