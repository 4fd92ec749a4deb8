package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/evrace/core/metrics"
	"github.com/kilianp07/evrace/core/sweep"
	"github.com/kilianp07/evrace/internal/eventbus"
)

func TestPromSink_RecordScenario(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordScenario(coremetrics.ScenarioEvent{Kind: "battery", Wins: true, TotalLaps: 567, Elapsed: time.Millisecond}))
	require.NoError(t, sink.RecordScenario(coremetrics.ScenarioEvent{Kind: "battery", TotalLaps: 420, OverTemperature: true}))
	require.NoError(t, sink.RecordScenario(coremetrics.ScenarioEvent{Kind: "capacitor", TotalLaps: 12}))

	assert.Equal(t, 1.0, testutil.ToFloat64(sink.scenarios.WithLabelValues("battery", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.scenarios.WithLabelValues("battery", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.scenarios.WithLabelValues("capacitor", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.overTemp))
	assert.Equal(t, 2, testutil.CollectAndCount(sink.duration))

	expected := `
# HELP evrace_scenario_over_temperature_total Scenarios whose storage exceeded its maximum temperature
# TYPE evrace_scenario_over_temperature_total counter
evrace_scenario_over_temperature_total 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "evrace_scenario_over_temperature_total"))
}

func TestPromSink_SummaryAndProgress(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordProgress("run", 3, 4))
	assert.Equal(t, 0.75, testutil.ToFloat64(sink.progress))
	require.NoError(t, sink.RecordProgress("run", 0, 0))
	assert.Equal(t, 0.75, testutil.ToFloat64(sink.progress))

	require.NoError(t, sink.RecordSweepSummary(coremetrics.SweepSummaryEvent{BestTotalLaps: 610, MeanTotalLaps: 512.5, Wins: 7}))
	assert.Equal(t, 610.0, testutil.ToFloat64(sink.bestLaps))
	assert.Equal(t, 512.5, testutil.ToFloat64(sink.meanLaps))
	assert.Equal(t, 7.0, testutil.ToFloat64(sink.wins))
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	b, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, a.RecordScenario(coremetrics.ScenarioEvent{Kind: "battery"}))
	require.NoError(t, b.RecordScenario(coremetrics.ScenarioEvent{Kind: "battery"}))
	assert.Equal(t, 2.0, testutil.ToFloat64(a.scenarios.WithLabelValues("battery", "false")))
}

func TestPromServerHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	require.NoError(t, sink.RecordSweepSummary(coremetrics.SweepSummaryEvent{BestTotalLaps: 567}))

	srv := newPromServer(":0", reg)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "evrace_sweep_best_total_laps 567")

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStartPromServerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- servePrometheus(ctx, newPromServer("127.0.0.1:0", prometheus.NewRegistry())) }()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestProgressCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	bus := eventbus.NewTyped[sweep.Progress]()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := StartProgressCollector(ctx, bus, sink)
	require.Eventually(t, func() bool { return bus.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	bus.Publish(sweep.Progress{RunID: "r", Done: 1, Total: 4})
	require.Eventually(t, func() bool { return testutil.ToFloat64(sink.progress) == 0.25 }, time.Second, 5*time.Millisecond)

	bus.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop on bus close")
	}
}

func TestProgressCollectorNil(t *testing.T) {
	done := StartProgressCollector(context.Background(), nil, nil)
	select {
	case <-done:
	default:
		t.Fatal("expected closed channel")
	}
}
