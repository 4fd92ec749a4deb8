package mqtt

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/evrace/core/metrics"
)

func TestResultPublisherTopics(t *testing.T) {
	mock := NewMockPublisher()
	rp := NewResultPublisher(mock, "/team/car7/")
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, rp.RecordScenario(coremetrics.ScenarioEvent{
		RunID:      "run1",
		Scenario:   4,
		Kind:       "battery",
		BatteryKWh: 50,
		TotalLaps:  567,
		TotalPits:  16,
		Wins:       true,
		Days:       []coremetrics.DayStat{{Day: 1, GWCMinutes: 360, Laps: 338, Pits: 10}},
		Time:       now,
	}))
	require.NoError(t, rp.RecordProgress("run1", 1, 8))
	require.NoError(t, rp.RecordSweepSummary(coremetrics.SweepSummaryEvent{RunID: "run1", Scenarios: 8, BestScenario: 4, BestTotalLaps: 567, Elapsed: 1500 * time.Millisecond, Time: now}))

	var sc map[string]any
	require.NoError(t, json.Unmarshal(mock.Last("team/car7/runs/run1/scenarios/4"), &sc))
	assert.Equal(t, 567.0, sc["total_laps"])
	assert.Equal(t, true, sc["wins"])
	assert.Equal(t, float64(now.UnixMilli()), sc["timestamp"])
	days := sc["days"].([]any)
	require.Len(t, days, 1)
	assert.Equal(t, 338.0, days[0].(map[string]any)["laps"])

	var pr map[string]any
	require.NoError(t, json.Unmarshal(mock.Last("team/car7/runs/run1/progress"), &pr))
	assert.Equal(t, 1.0, pr["done"])
	assert.Equal(t, 8.0, pr["total"])

	var sum map[string]any
	require.NoError(t, json.Unmarshal(mock.Last("team/car7/runs/run1/summary"), &sum))
	assert.Equal(t, 4.0, sum["best_scenario"])
	assert.Equal(t, 1500.0, sum["elapsed_ms"])
}

func TestResultPublisherDefaultPrefixAndErrors(t *testing.T) {
	mock := NewMockPublisher()
	rp := NewResultPublisher(mock, "")
	require.NoError(t, rp.RecordProgress("r", 0, 1))
	assert.NotNil(t, mock.Last("evrace/runs/r/progress"))
	assert.Nil(t, mock.Last("evrace/runs/r/summary"))

	mock.FailAll = true
	assert.Error(t, rp.RecordScenario(coremetrics.ScenarioEvent{RunID: "r"}))
	assert.NoError(t, rp.Close())
}

func TestResultSinkOverPaho(t *testing.T) {
	mc := &mockClient{}
	withMockClient(t, mc)
	rp, err := NewResultSink(Config{Broker: "tcp://localhost:1883", TopicPrefix: "evr", QoS: 1})
	require.NoError(t, err)
	require.NoError(t, rp.RecordProgress("abc", 2, 3))
	require.Len(t, mc.published, 1)
	assert.Equal(t, "evr/runs/abc/progress", mc.published[0].topic)
	require.NoError(t, rp.Close())
	assert.True(t, mc.disconnected)
}
