package storage

import "fmt"

// EnergyStore is the per-step contract consumed by the lap runner.
type EnergyStore interface {
	// Request clamps requestedW to what the device can deliver at step i and
	// records power, current and heat power for that step. prevDt is the
	// duration of the step interval before i.
	Request(i int, requestedW, prevDt float64) float64
	// Settle integrates energy, heat and temperature for step i from the
	// finalized values at i-1 over dt.
	Settle(i int, dt float64)
	Kind() Kind
	Params() Params
	Trace() *Trace
}

// ClampPolicy decides the deliverable power for a step. It may read the
// trace but must not write it.
type ClampPolicy interface {
	Clamp(t *Trace, p Params, i int, requestedW, prevDt float64) float64
}

// Store is an EnergyStore backed by a pre-allocated Trace.
type Store struct {
	kind   Kind
	params Params
	policy ClampPolicy
	trace  *Trace
}

// New builds a Store with steps track points. Params are not validated here;
// see Params.Validate.
func New(kind Kind, steps int, p Params, policy ClampPolicy) (*Store, error) {
	if steps < 1 {
		return nil, fmt.Errorf("storage needs at least one step, got %d", steps)
	}
	if policy == nil {
		return nil, fmt.Errorf("nil clamp policy")
	}
	return &Store{kind: kind, params: p, policy: policy, trace: newTrace(steps, p.InitialTempC)}, nil
}

func (s *Store) Kind() Kind     { return s.kind }
func (s *Store) Params() Params { return s.params }
func (s *Store) Trace() *Trace  { return s.trace }

// Request implements EnergyStore. Out of range requests are clamped, never
// rejected.
func (s *Store) Request(i int, requestedW, prevDt float64) float64 {
	t := s.trace
	power := s.policy.Clamp(t, s.params, i, requestedW, prevDt)
	t.power[i] = power
	t.current[i] = power / s.params.VoltageV
	// I^2 R heats the device in both directions.
	t.heatPower[i] = t.current[i] * t.current[i] * s.params.InternalResistance
	return power
}

// Settle implements EnergyStore.
func (s *Store) Settle(i int, dt float64) {
	t := s.trace
	j := t.prev(i)
	energy := t.power[j] * dt
	heat := t.heatPower[j] * dt
	t.energy[i] = t.energy[j] + energy
	t.heatEnergy[i] = t.heatEnergy[j] + heat
	t.temperature[i] = thermalStep(t.temperature[j], heat, dt, s.params)
}

// Report summarises the trace against the configured limits.
func (s *Store) Report() Report { return s.trace.report(s.params) }

// Reset clears the trace so the store can run another lap.
func (s *Store) Reset() { s.trace.reset(s.params.InitialTempC) }

// thermalStep is one explicit Euler step of the lumped thermal model: the heat
// generated over dt minus what the coolant rejects, divided by thermal mass.
func thermalStep(prevTempC, heatEnergyJ, dt float64, p Params) float64 {
	rejectedW := (prevTempC - p.CoolantTempC) / p.ThermalResistance
	return prevTempC + (heatEnergyJ-rejectedW*dt)/p.ThermalMass
}
