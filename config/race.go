package config

import "fmt"

// DefaultGWCMinutes is a two day race of six and four hours.
var DefaultGWCMinutes = []float64{360, 240}

// RaceConfig holds the race format shared by every scenario.
type RaceConfig struct {
	// GWCMinutes lists the green-to-checkered time of each day.
	GWCMinutes []float64 `json:"gwc_minutes"`
	// WinningGasCarLaps is the lap count to beat.
	WinningGasCarLaps int `json:"winning_gas_car_laps"`
}

// SetDefaults applies sane defaults.
func (c *RaceConfig) SetDefaults() {
	if len(c.GWCMinutes) == 0 {
		c.GWCMinutes = append([]float64(nil), DefaultGWCMinutes...)
	}
}

// Validate checks mandatory fields.
func (c RaceConfig) Validate() error {
	for i, d := range c.GWCMinutes {
		if d < 0 {
			return fmt.Errorf("day %d has negative duration %g", i+1, d)
		}
	}
	if c.WinningGasCarLaps < 0 {
		return fmt.Errorf("winning_gas_car_laps must not be negative")
	}
	return nil
}
