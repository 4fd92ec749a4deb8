package metrics

import "time"

// DayStat is the per-day outcome of a scenario.
type DayStat struct {
	Day             int     `json:"day"`
	GWCMinutes      float64 `json:"gwc_minutes"`
	Laps            int     `json:"laps"`
	Pits            int     `json:"pits"`
	EnergyRemaining float64 `json:"energy_remaining"`
}

// ScenarioEvent represents one evaluated sweep scenario to be recorded.
type ScenarioEvent struct {
	RunID            string
	Scenario         int
	Kind             string
	BatteryKWh       float64
	PitMinutes       float64
	LapSeconds       float64
	LapEnergyKJ      float64
	TotalLaps        int
	TotalPits        int
	EnergyRemaining  float64
	PeakTemperatureC float64
	OverTemperature  bool
	Wins             bool
	Days             []DayStat
	Elapsed          time.Duration
	Time             time.Time
}

// MetricsSink records scenario results for observability purposes.
type MetricsSink interface {
	RecordScenario(ev ScenarioEvent) error
}

// SweepSummaryEvent captures the outcome of a whole sweep.
type SweepSummaryEvent struct {
	RunID           string
	Scenarios       int
	Wins            int
	OverTemperature int
	BestScenario    int
	BestTotalLaps   int
	MeanTotalLaps   float64
	StdDevTotalLaps float64
	Elapsed         time.Duration
	Time            time.Time
}

// SummaryRecorder records sweep summaries.
type SummaryRecorder interface {
	RecordSweepSummary(ev SweepSummaryEvent) error
}

// ProgressRecorder is implemented by sinks able to track sweep progress.
type ProgressRecorder interface {
	RecordProgress(runID string, done, total int) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordScenario(ScenarioEvent) error         { return nil }
func (NopSink) RecordSweepSummary(SweepSummaryEvent) error { return nil }
func (NopSink) RecordProgress(string, int, int) error      { return nil }
