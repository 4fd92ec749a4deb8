package race

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the inputs of a race schedule.
type Config struct {
	// PitMinutes is the time to pit and swap the battery.
	PitMinutes float64 `json:"pit_minutes" yaml:"pit_minutes"`
	// GWCMinutes lists the racing time of each day.
	GWCMinutes []float64 `json:"gwc_minutes" yaml:"gwc_minutes"`
	// LapSeconds is the lap time produced by the lap simulation.
	LapSeconds float64 `json:"lap_seconds" yaml:"lap_seconds"`
	// EnergyPerLapJ is the energy consumed by one lap.
	EnergyPerLapJ float64 `json:"energy_per_lap_j" yaml:"energy_per_lap_j"`
	// CapacityKWh is the usable battery capacity.
	CapacityKWh float64 `json:"capacity_kwh" yaml:"capacity_kwh"`
}

// LoadConfig loads a Config from a JSON or YAML file.
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	var cfg Config
	switch ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	default:
		return Config{}, fmt.Errorf("unsupported config format: %s", ext)
	}
	return cfg, err
}

// DecodeConfig reads a Config from r in the given format.
func DecodeConfig(r io.Reader, format string) (Config, error) {
	var cfg Config
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported format: %s", format)
	}
	return cfg, nil
}

// Validate rejects inputs for which the day loop would divide by a
// non-positive value or never terminate. Every value must be finite.
func (c Config) Validate() error {
	if !finite(c.LapSeconds) || !(c.LapSeconds > 0) {
		return fmt.Errorf("%w: lap time must be positive and finite, got %g", ErrInvalidConfig, c.LapSeconds)
	}
	if !finite(c.EnergyPerLapJ) || !(c.EnergyPerLapJ > 0) {
		return fmt.Errorf("%w: energy per lap must be positive and finite, got %g", ErrInvalidConfig, c.EnergyPerLapJ)
	}
	if !finite(c.CapacityKWh) || !(c.CapacityKWh > 0) {
		return fmt.Errorf("%w: capacity must be positive and finite, got %g", ErrInvalidConfig, c.CapacityKWh)
	}
	if !finite(c.PitMinutes) || c.PitMinutes < 0 {
		return fmt.Errorf("%w: pit time must be finite and not negative, got %g", ErrInvalidConfig, c.PitMinutes)
	}
	for i, d := range c.GWCMinutes {
		if !finite(d) || d < 0 {
			return fmt.Errorf("%w: day %d has invalid duration %g", ErrInvalidConfig, i+1, d)
		}
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
