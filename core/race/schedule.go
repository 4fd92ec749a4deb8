// Package race projects how many laps an electric car completes over the
// days of an endurance race from a single representative lap.
//
// Every pit stop is a full battery swap, and lap time and energy per lap are
// constant for the whole race. The battery starts each day fully charged.
package race

import (
	"errors"
	"fmt"
	"math"
)

const joulesPerKWh = 3.6e6

// maxLaps bounds every lap and stint count so the int conversions stay
// exact and each day loop advances by a representable amount.
const maxLaps = math.MaxInt32

// ErrInvalidConfig is returned when a schedule cannot be computed from its
// inputs.
var ErrInvalidConfig = errors.New("invalid race configuration")

// Day is the outcome of one race day.
type Day struct {
	// GWCMinutes is the day's racing time.
	GWCMinutes float64 `json:"gwc_minutes"`
	TotalLaps  int     `json:"total_laps"`
	Pits       int     `json:"number_of_pits"`
	// PitTimes holds the start of each stop in minutes after the green flag.
	PitTimes []float64 `json:"pit_times_min"`
	// EnergyRemaining is the final stint's laps times energy per lap over
	// the capacity.
	EnergyRemaining float64 `json:"energy_remaining"`
}

// Schedule computes laps and pit stops for a list of race days.
type Schedule struct {
	Days      []Day
	TotalLaps int

	pitMinutes    float64
	lapMinutes    float64
	energyPerLapJ float64
	capacityJ     float64

	lapsPerCharge    int
	leftoverJ        float64
	minutesPerCharge float64
}

// New validates cfg and derives the per-charge values.
func New(cfg Config) (*Schedule, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Schedule{
		pitMinutes:    cfg.PitMinutes,
		lapMinutes:    cfg.LapSeconds / 60,
		energyPerLapJ: cfg.EnergyPerLapJ,
		capacityJ:     cfg.CapacityKWh * joulesPerKWh,
	}
	lpc := math.Floor(s.capacityJ / s.energyPerLapJ)
	if !(lpc <= maxLaps) {
		return nil, fmt.Errorf("%w: battery holds %g laps, more than %d", ErrInvalidConfig, lpc, maxLaps)
	}
	s.lapsPerCharge = int(lpc)
	s.leftoverJ = s.capacityJ - float64(s.lapsPerCharge)*s.energyPerLapJ
	s.minutesPerCharge = float64(s.lapsPerCharge) * s.lapMinutes
	if s.lapsPerCharge == 0 && s.pitMinutes == 0 {
		return nil, fmt.Errorf("%w: battery holds no full lap and pit time is zero", ErrInvalidConfig)
	}
	stint := s.minutesPerCharge + s.pitMinutes
	s.Days = make([]Day, len(cfg.GWCMinutes))
	for i, d := range cfg.GWCMinutes {
		if d > 0 && !(d/s.lapMinutes <= maxLaps) {
			return nil, fmt.Errorf("%w: day %d holds more than %d laps", ErrInvalidConfig, i+1, maxLaps)
		}
		if d > 0 && !(d/stint <= maxLaps) {
			return nil, fmt.Errorf("%w: day %d needs more than %d pit stops", ErrInvalidConfig, i+1, maxLaps)
		}
		s.Days[i] = Day{GWCMinutes: d}
	}
	return s, nil
}

// LapsPerCharge is the number of whole laps one battery sustains.
func (s *Schedule) LapsPerCharge() int { return s.lapsPerCharge }

// LeftoverEnergyJ is the energy left in a battery after LapsPerCharge laps.
func (s *Schedule) LeftoverEnergyJ() float64 { return s.leftoverJ }

// MinutesPerCharge is the racing time of one full battery.
func (s *Schedule) MinutesPerCharge() float64 { return s.minutesPerCharge }

// Calculate computes every day and the grand total. Previous results are
// discarded, so calling it twice yields the same outcome.
func (s *Schedule) Calculate() {
	s.TotalLaps = 0
	for i := range s.Days {
		s.Days[i] = s.simulateDay(s.Days[i].GWCMinutes)
		s.TotalLaps += s.Days[i].TotalLaps
	}
}

// TotalPits sums the pit stops of all days.
func (s *Schedule) TotalPits() int {
	n := 0
	for _, d := range s.Days {
		n += d.Pits
	}
	return n
}

// EnergyRemaining sums the per-day remaining fractions.
func (s *Schedule) EnergyRemaining() float64 {
	var e float64
	for _, d := range s.Days {
		e += d.EnergyRemaining
	}
	return e
}

// simulateDay runs whole battery stints until the remaining time no longer
// needs a full charge. It does not touch the schedule's state.
func (s *Schedule) simulateDay(gwc float64) Day {
	day := Day{GWCMinutes: gwc, PitTimes: []float64{}}
	elapsed := 0.0
	for elapsed < gwc {
		// bounded by gwc/lapMinutes, checked in New
		possible := int(math.Floor((gwc - elapsed) / s.lapMinutes))
		if possible < s.lapsPerCharge {
			// last stint, no swap needed
			day.TotalLaps += possible
			day.EnergyRemaining = float64(possible) * s.energyPerLapJ / s.capacityJ
			break
		}
		day.TotalLaps += s.lapsPerCharge
		elapsed += s.minutesPerCharge
		day.PitTimes = append(day.PitTimes, elapsed)
		elapsed += s.pitMinutes
		day.Pits++
	}
	return day
}
