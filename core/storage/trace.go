package storage

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// ErrIndexOutOfRange is returned by the bounds-checked accessors.
var ErrIndexOutOfRange = errors.New("step index out of range")

// Trace holds the per-step state of one lap. All buffers are allocated once
// with the number of track points.
type Trace struct {
	temperature []float64 // degC
	current     []float64 // A
	power       []float64 // W, negative into the device
	energy      []float64 // J, net energy expended
	heatPower   []float64 // W
	heatEnergy  []float64 // J
}

// Sample is a read-only copy of the state at one step.
type Sample struct {
	Index        int     `json:"index"`
	TemperatureC float64 `json:"temperature_c"`
	CurrentA     float64 `json:"current_a"`
	PowerW       float64 `json:"power_w"`
	EnergyJ      float64 `json:"energy_j"`
	HeatPowerW   float64 `json:"heat_power_w"`
	HeatEnergyJ  float64 `json:"heat_energy_j"`
}

func newTrace(n int, initialTemp float64) *Trace {
	t := &Trace{
		temperature: make([]float64, n),
		current:     make([]float64, n),
		power:       make([]float64, n),
		energy:      make([]float64, n),
		heatPower:   make([]float64, n),
		heatEnergy:  make([]float64, n),
	}
	t.temperature[0] = initialTemp
	return t
}

func (t *Trace) reset(initialTemp float64) {
	for _, buf := range [][]float64{t.temperature, t.current, t.power, t.energy, t.heatPower, t.heatEnergy} {
		for i := range buf {
			buf[i] = 0
		}
	}
	t.temperature[0] = initialTemp
}

// prev returns the index preceding i on the closed track.
func (t *Trace) prev(i int) int {
	if i == 0 {
		return len(t.power) - 1
	}
	return i - 1
}

// Len returns the number of track points.
func (t *Trace) Len() int { return len(t.power) }

// Sample returns the state at step i.
func (t *Trace) Sample(i int) (Sample, error) {
	if i < 0 || i >= t.Len() {
		return Sample{}, fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, i, t.Len())
	}
	return Sample{
		Index:        i,
		TemperatureC: t.temperature[i],
		CurrentA:     t.current[i],
		PowerW:       t.power[i],
		EnergyJ:      t.energy[i],
		HeatPowerW:   t.heatPower[i],
		HeatEnergyJ:  t.heatEnergy[i],
	}, nil
}

// Samples copies the whole trace.
func (t *Trace) Samples() []Sample {
	out := make([]Sample, t.Len())
	for i := range out {
		out[i], _ = t.Sample(i)
	}
	return out
}

// Power returns a copy of the power column.
func (t *Trace) Power() []float64 { return append([]float64(nil), t.power...) }

// Energy returns a copy of the cumulative energy column.
func (t *Trace) Energy() []float64 { return append([]float64(nil), t.energy...) }

// Temperature returns a copy of the temperature column.
func (t *Trace) Temperature() []float64 { return append([]float64(nil), t.temperature...) }

// Report summarises a trace against the device limits. Limit violations are
// data, not errors.
type Report struct {
	PeakTemperatureC float64 `json:"peak_temperature_c"`
	PeakTempIndex    int     `json:"peak_temp_index"`
	OverTemperature  bool    `json:"over_temperature"`
	// FirstOverIndex is -1 when the maximum temperature is never exceeded.
	FirstOverIndex int     `json:"first_over_index"`
	NetEnergyJ     float64 `json:"net_energy_j"`
	HeatEnergyJ    float64 `json:"heat_energy_j"`
	PeakDischargeW float64 `json:"peak_discharge_w"`
	PeakChargeW    float64 `json:"peak_charge_w"`
}

func (t *Trace) report(p Params) Report {
	last := t.Len() - 1
	idx := floats.MaxIdx(t.temperature)
	r := Report{
		PeakTemperatureC: t.temperature[idx],
		PeakTempIndex:    idx,
		FirstOverIndex:   -1,
		NetEnergyJ:       t.energy[last],
		HeatEnergyJ:      t.heatEnergy[last],
		PeakDischargeW:   floats.Max(t.power),
		PeakChargeW:      floats.Min(t.power),
	}
	for i, temp := range t.temperature {
		if temp > p.MaxTempC {
			r.OverTemperature = true
			r.FirstOverIndex = i
			break
		}
	}
	return r
}
