package sweep

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/evrace/core/results"
)

// Summary aggregates the total laps of a sweep.
type Summary struct {
	Scenarios       int `json:"scenarios"`
	Wins            int `json:"wins"`
	OverTemperature int `json:"over_temperature"`
	// BestScenario is the index of the first scenario with the most laps,
	// -1 for an empty sweep.
	BestScenario    int     `json:"best_scenario"`
	BestTotalLaps   int     `json:"best_total_laps"`
	MinTotalLaps    int     `json:"min_total_laps"`
	MeanTotalLaps   float64 `json:"mean_total_laps"`
	StdDevTotalLaps float64 `json:"stddev_total_laps"`
}

// Summarize computes the sweep statistics. The standard deviation is the
// sample one and is zero below two scenarios.
func Summarize(recs []results.Record) Summary {
	s := Summary{Scenarios: len(recs), BestScenario: -1}
	if len(recs) == 0 {
		return s
	}
	laps := make([]float64, len(recs))
	for i, r := range recs {
		laps[i] = float64(r.TotalLaps)
		if r.Wins {
			s.Wins++
		}
		if r.OverTemperature {
			s.OverTemperature++
		}
	}
	best := floats.MaxIdx(laps)
	s.BestScenario = recs[best].Scenario
	s.BestTotalLaps = recs[best].TotalLaps
	s.MinTotalLaps = int(floats.Min(laps))
	if len(laps) < 2 {
		s.MeanTotalLaps = laps[0]
		return s
	}
	s.MeanTotalLaps, s.StdDevTotalLaps = stat.MeanStdDev(laps, nil)
	return s
}
