// Package export writes sweep results, race schedules and storage traces as
// CSV or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/evrace/core/race"
	"github.com/kilianp07/evrace/core/results"
	"github.com/kilianp07/evrace/core/storage"
)

// Formats lists the values accepted by WriteResults.
var Formats = []string{"csv", "json"}

// WriteResults writes recs in the given format.
func WriteResults(w io.Writer, format string, recs []results.Record) error {
	switch strings.ToLower(format) {
	case "csv":
		return WriteResultsCSV(w, recs)
	case "json":
		return WriteResultsJSON(w, recs)
	default:
		return fmt.Errorf("unsupported export format %q (known: %v)", format, Formats)
	}
}

// WriteResultsJSON writes the sweep results to w in JSON format.
func WriteResultsJSON(w io.Writer, recs []results.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(recs)
}

// WriteResultsCSV writes one row per scenario. Per-day details are left to
// the JSON format.
func WriteResultsCSV(w io.Writer, recs []results.Record) error {
	cw := csv.NewWriter(w)
	header := []string{
		"run_id", "scenario", "kind", "battery_kwh", "change_minutes", "power_scale",
		"battery_mass_kg", "pit_minutes", "lap_seconds", "lap_energy_kj",
		"total_laps", "total_pits", "energy_remaining", "peak_temperature_c",
		"over_temperature", "wins", "timestamp",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range recs {
		row := []string{
			r.RunID,
			strconv.Itoa(r.Scenario),
			r.Kind,
			ftoa(r.BatteryKWh),
			ftoa(r.ChangeMinutes),
			ftoa(r.PowerScale),
			ftoa(r.BatteryMassKg),
			ftoa(r.PitMinutes),
			ftoa(r.LapSeconds),
			ftoa(r.LapEnergyKJ),
			strconv.Itoa(r.TotalLaps),
			strconv.Itoa(r.TotalPits),
			ftoa(r.EnergyRemaining),
			ftoa(r.PeakTemperatureC),
			strconv.FormatBool(r.OverTemperature),
			strconv.FormatBool(r.Wins),
			r.Timestamp.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// scheduleDoc is the JSON shape of a computed schedule.
type scheduleDoc struct {
	LapsPerCharge    int        `json:"laps_per_charge"`
	MinutesPerCharge float64    `json:"minutes_per_charge"`
	LeftoverEnergyJ  float64    `json:"leftover_energy_j"`
	TotalLaps        int        `json:"total_laps"`
	TotalPits        int        `json:"total_pits"`
	EnergyRemaining  float64    `json:"energy_remaining"`
	Days             []race.Day `json:"days"`
}

// WriteScheduleJSON writes a calculated schedule with its derived values.
func WriteScheduleJSON(w io.Writer, s *race.Schedule) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(scheduleDoc{
		LapsPerCharge:    s.LapsPerCharge(),
		MinutesPerCharge: s.MinutesPerCharge(),
		LeftoverEnergyJ:  s.LeftoverEnergyJ(),
		TotalLaps:        s.TotalLaps,
		TotalPits:        s.TotalPits(),
		EnergyRemaining:  s.EnergyRemaining(),
		Days:             s.Days,
	})
}

// WriteDaysCSV writes one row per race day. Pit times are joined with ';'.
func WriteDaysCSV(w io.Writer, days []race.Day) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"day", "gwc_minutes", "total_laps", "number_of_pits", "energy_remaining", "pit_times_min"}); err != nil {
		return err
	}
	for i, d := range days {
		pits := make([]string, len(d.PitTimes))
		for j, p := range d.PitTimes {
			pits[j] = ftoa(p)
		}
		row := []string{
			strconv.Itoa(i + 1),
			ftoa(d.GWCMinutes),
			strconv.Itoa(d.TotalLaps),
			strconv.Itoa(d.Pits),
			ftoa(d.EnergyRemaining),
			strings.Join(pits, ";"),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTraceCSV writes the storage trace, one row per track point.
func WriteTraceCSV(w io.Writer, samples []storage.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"index", "temperature_c", "current_a", "power_w", "energy_j", "heat_power_w", "heat_energy_j"}); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			strconv.Itoa(s.Index),
			ftoa(s.TemperatureC),
			ftoa(s.CurrentA),
			ftoa(s.PowerW),
			ftoa(s.EnergyJ),
			ftoa(s.HeatPowerW),
			ftoa(s.HeatEnergyJ),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
