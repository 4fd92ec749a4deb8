package lap

import (
	"fmt"

	"github.com/kilianp07/evrace/core/logger"
	"github.com/kilianp07/evrace/core/storage"
)

// Result is what the race schedule needs from a lap, plus the storage
// report for post-hoc checks.
type Result struct {
	LapSeconds float64        `json:"lap_seconds"`
	EnergyJ    float64        `json:"energy_j"`
	Storage    storage.Report `json:"storage"`
}

// Runner steps an energy store through a profile.
type Runner struct {
	log logger.Logger
}

// NewRunner returns a Runner. A nil logger discards output.
func NewRunner(log logger.Logger) *Runner {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Runner{log: log}
}

// Store is the energy store contract the runner needs.
type Store interface {
	storage.EnergyStore
	Report() storage.Report
}

// Run validates the store parameters, then for every point after the start
// requests the profile power and settles the step. The store trace must have
// one entry per profile point.
func (r *Runner) Run(store Store, prof Profile) (Result, error) {
	if len(prof) < 2 {
		return Result{}, ErrEmptyProfile
	}
	if n := store.Trace().Len(); n != len(prof) {
		return Result{}, fmt.Errorf("profile has %d points, store has %d", len(prof), n)
	}
	if err := store.Params().Validate(); err != nil {
		return Result{}, err
	}
	clamped := 0
	for i := 1; i < len(prof); i++ {
		actual := store.Request(i, prof[i].RequestedW, prof[i-1].Dt)
		if actual != prof[i].RequestedW {
			clamped++
		}
		store.Settle(i, prof[i].Dt)
	}
	rep := store.Report()
	res := Result{
		LapSeconds: prof.Duration(),
		EnergyJ:    rep.NetEnergyJ,
		Storage:    rep,
	}
	r.log.Debugw("lap simulated", map[string]any{
		"kind":         store.Kind().String(),
		"points":       len(prof),
		"lap_seconds":  res.LapSeconds,
		"energy_j":     res.EnergyJ,
		"clamped":      clamped,
		"peak_temp_c":  rep.PeakTemperatureC,
		"over_temp":    rep.OverTemperature,
		"first_over_i": rep.FirstOverIndex,
	})
	if rep.OverTemperature {
		r.log.Warnf("%s exceeded %.1f C at step %d (peak %.1f C)", store.Kind(), store.Params().MaxTempC, rep.FirstOverIndex, rep.PeakTemperatureC)
	}
	return res, nil
}

// NewStore builds the store for kind with one trace entry per profile point.
func NewStore(kind storage.Kind, p storage.Params, mode storage.LookAhead, prof Profile) (*storage.Store, error) {
	switch kind {
	case storage.KindBattery:
		return storage.NewBattery(len(prof), p)
	case storage.KindCapacitor:
		return storage.NewCapacitor(len(prof), p, mode)
	default:
		return nil, fmt.Errorf("unsupported storage kind %v", kind)
	}
}
