package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/evrace/core/metrics"
	"github.com/kilianp07/evrace/infra/logger"
)

// InfluxConfig holds the InfluxDB v2 connection settings.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes sweep outcomes to an InfluxDB instance using the
// official client. Each scenario becomes one race_scenario point plus one
// race_day point per day.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordScenario writes the scenario and its days in a single request.
func (s *InfluxSink) RecordScenario(ev coremetrics.ScenarioEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, scenarioPoints(ev)...)
}

func scenarioPoints(ev coremetrics.ScenarioEvent) []*write.Point {
	scenario := strconv.Itoa(ev.Scenario)
	points := make([]*write.Point, 0, len(ev.Days)+1)
	points = append(points, write.NewPointWithMeasurement("race_scenario").
		AddTag("run_id", ev.RunID).
		AddTag("scenario", scenario).
		AddTag("kind", ev.Kind).
		AddTag("wins", strconv.FormatBool(ev.Wins)).
		AddField("battery_kwh", round3(ev.BatteryKWh)).
		AddField("pit_minutes", round3(ev.PitMinutes)).
		AddField("lap_seconds", round3(ev.LapSeconds)).
		AddField("lap_energy_kj", round3(ev.LapEnergyKJ)).
		AddField("total_laps", ev.TotalLaps).
		AddField("total_pits", ev.TotalPits).
		AddField("energy_remaining", round3(ev.EnergyRemaining)).
		AddField("peak_temperature_c", round3(ev.PeakTemperatureC)).
		AddField("over_temperature", ev.OverTemperature).
		AddField("elapsed_ms", round3(ev.Elapsed.Seconds()*1000)).
		SetTime(ev.Time))
	for _, d := range ev.Days {
		points = append(points, write.NewPointWithMeasurement("race_day").
			AddTag("run_id", ev.RunID).
			AddTag("scenario", scenario).
			AddTag("day", strconv.Itoa(d.Day)).
			AddField("gwc_minutes", round3(d.GWCMinutes)).
			AddField("laps", d.Laps).
			AddField("pits", d.Pits).
			AddField("energy_remaining", round3(d.EnergyRemaining)).
			SetTime(ev.Time))
	}
	return points
}

// RecordSweepSummary writes the sweep statistics.
func (s *InfluxSink) RecordSweepSummary(ev coremetrics.SweepSummaryEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("race_sweep").
		AddTag("run_id", ev.RunID).
		AddField("scenarios", ev.Scenarios).
		AddField("wins", ev.Wins).
		AddField("over_temperature", ev.OverTemperature).
		AddField("best_scenario", ev.BestScenario).
		AddField("best_total_laps", ev.BestTotalLaps).
		AddField("mean_total_laps", round3(ev.MeanTotalLaps)).
		AddField("stddev_total_laps", round3(ev.StdDevTotalLaps)).
		AddField("elapsed_ms", round3(ev.Elapsed.Seconds()*1000)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the HTTP client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
