package storage

import (
	"errors"
	"fmt"
)

// JoulesPerKWh converts a battery capacity in kWh to joules.
const JoulesPerKWh = 3.6e6

// ErrInvalidParams is returned by Params.Validate.
var ErrInvalidParams = errors.New("invalid storage parameters")

// Kind identifies the device variant.
type Kind int

const (
	KindBattery Kind = iota
	KindCapacitor
)

func (k Kind) String() string {
	switch k {
	case KindBattery:
		return "battery"
	case KindCapacitor:
		return "capacitor"
	default:
		return "unknown"
	}
}

// ParseKind maps a configuration string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "", "battery":
		return KindBattery, nil
	case "capacitor", "supercapacitor":
		return KindCapacitor, nil
	default:
		return 0, fmt.Errorf("unknown storage kind %q", s)
	}
}

// Params holds the static constants of a device. They never change during a
// lap.
type Params struct {
	// Capacity is kWh for batteries and joules for capacitors.
	Capacity float64 `json:"capacity"`
	// MaxDischargeW bounds the output power.
	MaxDischargeW float64 `json:"max_discharge_w"`
	// MaxChargeW bounds the input power. It must be negative or zero.
	MaxChargeW         float64 `json:"max_charge_w"`
	VoltageV           float64 `json:"voltage_v"`
	InternalResistance float64 `json:"internal_resistance_ohm"`
	// ThermalResistance is device to coolant, in degC per watt.
	ThermalResistance float64 `json:"thermal_resistance_c_per_w"`
	// ThermalMass is in J per degC.
	ThermalMass  float64 `json:"thermal_mass_j_per_c"`
	CoolantTempC float64 `json:"coolant_temp_c"`
	MaxTempC     float64 `json:"max_temp_c"`
	InitialTempC float64 `json:"initial_temp_c"`
}

// Validate checks the values the step loop divides by. The model itself does
// not guard against them, so callers run this before the first step.
func (p Params) Validate() error {
	if p.VoltageV == 0 {
		return fmt.Errorf("%w: voltage must be non-zero", ErrInvalidParams)
	}
	if p.ThermalResistance == 0 {
		return fmt.Errorf("%w: thermal resistance must be non-zero", ErrInvalidParams)
	}
	if p.ThermalMass == 0 {
		return fmt.Errorf("%w: thermal mass must be non-zero", ErrInvalidParams)
	}
	if p.MaxChargeW > 0 {
		return fmt.Errorf("%w: max charge power must be negative, got %g", ErrInvalidParams, p.MaxChargeW)
	}
	if p.MaxDischargeW < 0 {
		return fmt.Errorf("%w: max discharge power must be positive, got %g", ErrInvalidParams, p.MaxDischargeW)
	}
	return nil
}

// CapacityJoules returns the capacity in joules for the given device kind.
func (p Params) CapacityJoules(k Kind) float64 {
	if k == KindBattery {
		return p.Capacity * JoulesPerKWh
	}
	return p.Capacity
}
