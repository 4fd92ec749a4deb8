package config

import (
	"fmt"

	"github.com/kilianp07/evrace/core/lap"
	"github.com/kilianp07/evrace/core/storage"
)

// StorageConfig selects the energy store and the lap it runs.
type StorageConfig struct {
	// Kind is "battery" or "capacitor".
	Kind string `json:"kind"`
	// LookAhead is "stale" or "requested"; capacitors only.
	LookAhead string         `json:"look_ahead"`
	Params    storage.Params `json:"params"`
	Profile   ProfileConfig  `json:"profile"`
}

// ProfileConfig points to a profile CSV or describes a constant lap.
type ProfileConfig struct {
	Path       string  `json:"path"`
	Points     int     `json:"points"`
	DtSeconds  float64 `json:"dt_s"`
	RequestedW float64 `json:"requested_w"`
}

// SetDefaults applies sane defaults.
func (c *StorageConfig) SetDefaults() {
	if c.Kind == "" {
		c.Kind = storage.KindBattery.String()
	}
	if c.LookAhead == "" {
		c.LookAhead = storage.LookAheadStale.String()
	}
}

// Validate checks mandatory fields.
func (c StorageConfig) Validate() error {
	if _, err := storage.ParseKind(c.Kind); err != nil {
		return err
	}
	if _, err := storage.ParseLookAhead(c.LookAhead); err != nil {
		return err
	}
	if err := c.Params.Validate(); err != nil {
		return err
	}
	if c.Profile.Path == "" {
		if c.Profile.Points < 2 {
			return fmt.Errorf("profile needs a path or at least two points")
		}
		if !(c.Profile.DtSeconds > 0) {
			return fmt.Errorf("profile dt_s must be positive")
		}
	}
	return nil
}

// StorageKind returns the parsed kind.
func (c StorageConfig) StorageKind() storage.Kind {
	k, _ := storage.ParseKind(c.Kind)
	return k
}

// Mode returns the parsed look-ahead mode.
func (c StorageConfig) Mode() storage.LookAhead {
	m, _ := storage.ParseLookAhead(c.LookAhead)
	return m
}

// LoadProfile reads the profile file, or builds the constant lap when no
// path is set.
func (c ProfileConfig) LoadProfile() (lap.Profile, error) {
	if c.Path != "" {
		return lap.LoadProfile(c.Path)
	}
	if c.Points < 2 {
		return nil, lap.ErrEmptyProfile
	}
	return lap.Uniform(c.Points, c.DtSeconds, c.RequestedW), nil
}
