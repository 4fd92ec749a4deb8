// Package sweep runs the lap model and the race schedule over a grid of car
// designs and collects the outcome of every combination.
package sweep

import "fmt"

// Grid lists the values to combine. An empty dimension falls back to the
// base vehicle value, or 1 for the power scale.
type Grid struct {
	BatteryKWh    []float64 `json:"battery_kwh"`
	ChangeMinutes []float64 `json:"change_minutes"`
	// PowerScale multiplies every power request of the lap profile, a stand-in
	// for heavier or draggier cars.
	PowerScale []float64 `json:"power_scale"`
}

// Scenario is one combination of the grid.
type Scenario struct {
	Index         int     `json:"index"`
	BatteryKWh    float64 `json:"battery_kwh"`
	ChangeMinutes float64 `json:"change_minutes"`
	PowerScale    float64 `json:"power_scale"`
}

func (s Scenario) String() string {
	return fmt.Sprintf("#%d %.1fkWh change=%.2fmin scale=%.2f", s.Index, s.BatteryKWh, s.ChangeMinutes, s.PowerScale)
}

// Size is the number of scenarios Expand returns.
func (g Grid) Size() int {
	return max(len(g.BatteryKWh), 1) * max(len(g.ChangeMinutes), 1) * max(len(g.PowerScale), 1)
}

// Expand builds the cartesian product in a stable order: battery size
// varies slowest, power scale fastest.
func (g Grid) Expand(defaultKWh, defaultChange float64) []Scenario {
	kwh := orDefault(g.BatteryKWh, defaultKWh)
	change := orDefault(g.ChangeMinutes, defaultChange)
	scale := orDefault(g.PowerScale, 1)
	out := make([]Scenario, 0, len(kwh)*len(change)*len(scale))
	for _, k := range kwh {
		for _, c := range change {
			for _, s := range scale {
				out = append(out, Scenario{Index: len(out), BatteryKWh: k, ChangeMinutes: c, PowerScale: s})
			}
		}
	}
	return out
}

func orDefault(v []float64, def float64) []float64 {
	if len(v) == 0 {
		return []float64{def}
	}
	return v
}
