// Package results persists the outcome of sweep scenarios so runs can be
// compared after the fact.
package results

import (
	"context"
	"time"

	"github.com/kilianp07/evrace/core/race"
)

// Record captures one evaluated scenario.
type Record struct {
	RunID     string    `json:"run_id"`
	Scenario  int       `json:"scenario"`
	Timestamp time.Time `json:"timestamp"`
	Kind      string    `json:"kind"`

	BatteryKWh    float64 `json:"battery_kwh"`
	ChangeMinutes float64 `json:"change_minutes"`
	PowerScale    float64 `json:"power_scale"`
	BatteryMassKg float64 `json:"battery_mass_kg"`
	PitMinutes    float64 `json:"pit_minutes"`

	LapSeconds       float64 `json:"lap_seconds"`
	LapEnergyKJ      float64 `json:"lap_energy_kj"`
	PeakTemperatureC float64 `json:"peak_temperature_c"`
	OverTemperature  bool    `json:"over_temperature"`

	TotalLaps       int        `json:"total_laps"`
	TotalPits       int        `json:"total_pits"`
	EnergyRemaining float64    `json:"energy_remaining"`
	Wins            bool       `json:"wins"`
	Days            []race.Day `json:"days"`
}

// Query defines filters for retrieving records. Zero values match anything.
type Query struct {
	Start    time.Time
	End      time.Time
	RunID    string
	MinLaps  int
	WinsOnly bool
}

// Match reports whether r passes every filter of q.
func (q Query) Match(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.RunID != "" && r.RunID != q.RunID {
		return false
	}
	if r.TotalLaps < q.MinLaps {
		return false
	}
	if q.WinsOnly && !r.Wins {
		return false
	}
	return true
}

// Store persists Records and supports querying. Implementations are safe for
// concurrent use.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// NopStore discards records.
type NopStore struct{}

func (NopStore) Append(context.Context, Record) error           { return nil }
func (NopStore) Query(context.Context, Query) ([]Record, error) { return nil, nil }
func (NopStore) Close() error                                   { return nil }
