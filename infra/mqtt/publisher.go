package mqtt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	coremetrics "github.com/kilianp07/evrace/core/metrics"
)

// ResultPublisher is a metrics sink that publishes sweep outcomes as JSON:
//
//	<prefix>/runs/<run_id>/scenarios/<index>
//	<prefix>/runs/<run_id>/progress
//	<prefix>/runs/<run_id>/summary
type ResultPublisher struct {
	pub    Publisher
	prefix string
}

// NewResultPublisher wraps pub. An empty prefix uses DefaultTopicPrefix.
func NewResultPublisher(pub Publisher, prefix string) *ResultPublisher {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return &ResultPublisher{pub: pub, prefix: prefix}
}

// NewResultSink connects to the broker described by cfg and returns a sink
// publishing to it.
func NewResultSink(cfg Config) (*ResultPublisher, error) {
	cli, err := NewPahoClient(cfg)
	if err != nil {
		return nil, err
	}
	return NewResultPublisher(cli, cfg.TopicPrefix), nil
}

func (r *ResultPublisher) runTopic(runID, leaf string) string {
	return fmt.Sprintf("%s/runs/%s/%s", r.prefix, runID, leaf)
}

type scenarioMessage struct {
	RunID            string                `json:"run_id"`
	Scenario         int                   `json:"scenario"`
	Kind             string                `json:"kind"`
	BatteryKWh       float64               `json:"battery_kwh"`
	PitMinutes       float64               `json:"pit_minutes"`
	LapSeconds       float64               `json:"lap_seconds"`
	LapEnergyKJ      float64               `json:"lap_energy_kj"`
	TotalLaps        int                   `json:"total_laps"`
	TotalPits        int                   `json:"total_pits"`
	EnergyRemaining  float64               `json:"energy_remaining"`
	PeakTemperatureC float64               `json:"peak_temperature_c"`
	OverTemperature  bool                  `json:"over_temperature"`
	Wins             bool                  `json:"wins"`
	Days             []coremetrics.DayStat `json:"days"`
	Timestamp        int64                 `json:"timestamp"`
}

// RecordScenario implements coremetrics.MetricsSink.
func (r *ResultPublisher) RecordScenario(ev coremetrics.ScenarioEvent) error {
	msg := scenarioMessage{
		RunID:            ev.RunID,
		Scenario:         ev.Scenario,
		Kind:             ev.Kind,
		BatteryKWh:       ev.BatteryKWh,
		PitMinutes:       ev.PitMinutes,
		LapSeconds:       ev.LapSeconds,
		LapEnergyKJ:      ev.LapEnergyKJ,
		TotalLaps:        ev.TotalLaps,
		TotalPits:        ev.TotalPits,
		EnergyRemaining:  ev.EnergyRemaining,
		PeakTemperatureC: ev.PeakTemperatureC,
		OverTemperature:  ev.OverTemperature,
		Wins:             ev.Wins,
		Days:             ev.Days,
		Timestamp:        ev.Time.UnixMilli(),
	}
	return r.publishJSON(r.runTopic(ev.RunID, fmt.Sprintf("scenarios/%d", ev.Scenario)), msg)
}

// RecordSweepSummary implements coremetrics.SummaryRecorder.
func (r *ResultPublisher) RecordSweepSummary(ev coremetrics.SweepSummaryEvent) error {
	msg := struct {
		RunID           string  `json:"run_id"`
		Scenarios       int     `json:"scenarios"`
		Wins            int     `json:"wins"`
		OverTemperature int     `json:"over_temperature"`
		BestScenario    int     `json:"best_scenario"`
		BestTotalLaps   int     `json:"best_total_laps"`
		MeanTotalLaps   float64 `json:"mean_total_laps"`
		StdDevTotalLaps float64 `json:"stddev_total_laps"`
		ElapsedMS       int64   `json:"elapsed_ms"`
		Timestamp       int64   `json:"timestamp"`
	}{
		RunID:           ev.RunID,
		Scenarios:       ev.Scenarios,
		Wins:            ev.Wins,
		OverTemperature: ev.OverTemperature,
		BestScenario:    ev.BestScenario,
		BestTotalLaps:   ev.BestTotalLaps,
		MeanTotalLaps:   ev.MeanTotalLaps,
		StdDevTotalLaps: ev.StdDevTotalLaps,
		ElapsedMS:       ev.Elapsed.Milliseconds(),
		Timestamp:       ev.Time.UnixMilli(),
	}
	return r.publishJSON(r.runTopic(ev.RunID, "summary"), msg)
}

// RecordProgress implements coremetrics.ProgressRecorder.
func (r *ResultPublisher) RecordProgress(runID string, done, total int) error {
	msg := struct {
		Done      int   `json:"done"`
		Total     int   `json:"total"`
		Timestamp int64 `json:"timestamp"`
	}{done, total, time.Now().UnixMilli()}
	return r.publishJSON(r.runTopic(runID, "progress"), msg)
}

// Close disconnects the underlying client when it supports it.
func (r *ResultPublisher) Close() error {
	if c, ok := r.pub.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (r *ResultPublisher) publishJSON(topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.pub.Publish(topic, payload)
}

// MockPublisher records published messages. It is used in tests.
type MockPublisher struct {
	Messages map[string][][]byte
	FailAll  bool
	mu       sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{Messages: make(map[string][][]byte)}
}

// Publish records the message or fails when FailAll is set.
func (m *MockPublisher) Publish(topic string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll {
		return fmt.Errorf("publish failed")
	}
	m.Messages[topic] = append(m.Messages[topic], append([]byte(nil), payload...))
	return nil
}

// Last returns the latest payload sent to topic.
func (m *MockPublisher) Last(topic string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := m.Messages[topic]
	if len(msgs) == 0 {
		return nil
	}
	return msgs[len(msgs)-1]
}
