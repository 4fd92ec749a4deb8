// Package vehicle derives the battery dependent figures of a car from its
// design properties.
package vehicle

import (
	"errors"
	"fmt"
)

// ErrInvalidProperties is returned by Properties.Validate.
var ErrInvalidProperties = errors.New("invalid vehicle properties")

// Properties are the independent and relationship variables of a car design
// that affect the energy store and the pit stops.
type Properties struct {
	BatteryKWh float64 `json:"battery_kwh"`
	// BatteryEnergyDensity is in kWh per kg.
	BatteryEnergyDensity float64 `json:"battery_energy_density_kwh_per_kg"`
	// BatteryChangeMinutes is the fixed part of a pit stop.
	BatteryChangeMinutes float64 `json:"battery_change_minutes"`
	// BatteryMassPitFactor adds minutes per kg of battery to a pit stop.
	BatteryMassPitFactor float64 `json:"battery_mass_pit_factor_min_per_kg"`
	// BatteryOutputFactor is the deliverable power per kWh of capacity, in W.
	// Zero leaves the storage discharge limit untouched.
	BatteryOutputFactor float64 `json:"battery_output_factor_w_per_kwh"`
}

// Validate checks the values the derived figures divide by or scale with.
func (p Properties) Validate() error {
	if !(p.BatteryKWh > 0) {
		return fmt.Errorf("%w: battery size must be positive, got %g", ErrInvalidProperties, p.BatteryKWh)
	}
	if !(p.BatteryEnergyDensity > 0) {
		return fmt.Errorf("%w: energy density must be positive, got %g", ErrInvalidProperties, p.BatteryEnergyDensity)
	}
	if p.BatteryChangeMinutes < 0 || p.BatteryMassPitFactor < 0 {
		return fmt.Errorf("%w: pit time terms must not be negative", ErrInvalidProperties)
	}
	if p.BatteryOutputFactor < 0 {
		return fmt.Errorf("%w: output factor must not be negative, got %g", ErrInvalidProperties, p.BatteryOutputFactor)
	}
	return nil
}

// BatteryMassKg is the pack mass implied by its size and energy density.
func (p Properties) BatteryMassKg() float64 {
	return p.BatteryKWh / p.BatteryEnergyDensity
}

// PitMinutes is the duration of one battery swap. Heavier packs take longer.
func (p Properties) PitMinutes() float64 {
	return p.BatteryChangeMinutes + p.BatteryMassKg()*p.BatteryMassPitFactor
}

// MaxDischargeW is the peak output of the pack.
func (p Properties) MaxDischargeW() float64 {
	return p.BatteryKWh * p.BatteryOutputFactor
}

// WithBattery returns a copy sized to kwh with the given fixed change time.
func (p Properties) WithBattery(kwh, changeMinutes float64) Properties {
	p.BatteryKWh = kwh
	p.BatteryChangeMinutes = changeMinutes
	return p
}
