package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/kilianp07/evrace/core/sweep"
)

// SweepConfig defines the scenario grid and where the results go.
type SweepConfig struct {
	Workers int        `json:"workers"`
	Grid    sweep.Grid `json:"grid"`
	// Output is the export file; empty writes to stdout.
	Output string `json:"output"`
	// Format is "csv" or "json".
	Format string `json:"format"`
}

// SetDefaults applies sane defaults.
func (c *SweepConfig) SetDefaults() {
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Format == "" {
		c.Format = "csv"
	}
}

// Validate checks mandatory fields.
func (c SweepConfig) Validate() error {
	switch strings.ToLower(c.Format) {
	case "csv", "json":
	default:
		return fmt.Errorf("unknown format %s", c.Format)
	}
	for _, v := range c.Grid.BatteryKWh {
		if !(v > 0) {
			return fmt.Errorf("grid battery_kwh values must be positive, got %g", v)
		}
	}
	for _, v := range c.Grid.ChangeMinutes {
		if v < 0 {
			return fmt.Errorf("grid change_minutes values must not be negative, got %g", v)
		}
	}
	return nil
}
