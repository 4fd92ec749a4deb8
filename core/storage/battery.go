package storage

import "math"

// BatteryClamp bounds the request by the charge and discharge rates only.
// Output voltage does not depend on state of charge.
type BatteryClamp struct{}

// Clamp implements ClampPolicy.
func (BatteryClamp) Clamp(_ *Trace, p Params, _ int, requestedW, _ float64) float64 {
	if requestedW < 0 {
		return math.Max(requestedW, p.MaxChargeW)
	}
	return math.Min(requestedW, p.MaxDischargeW)
}

// NewBattery returns a battery pack treated as a single unit. p.Capacity is
// in kWh.
func NewBattery(steps int, p Params) (*Store, error) {
	return New(KindBattery, steps, p, BatteryClamp{})
}
