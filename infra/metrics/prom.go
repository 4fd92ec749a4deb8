package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/evrace/core/metrics"
)

// PromSink records sweep outcomes in Prometheus metrics.
type PromSink struct {
	scenarios *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	laps      prometheus.Histogram
	overTemp  prometheus.Counter
	progress  prometheus.Gauge
	bestLaps  prometheus.Gauge
	meanLaps  prometheus.Gauge
	wins      prometheus.Gauge
}

// NewPromSink registers sweep metrics on the default Prometheus registerer.
// The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Metrics
// already registered by an earlier sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.scenarios, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "evrace_scenarios_total",
		Help: "Total number of evaluated sweep scenarios",
	}, []string{"kind", "wins"})); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "evrace_scenario_duration_seconds",
		Help:    "Wall time to simulate one lap and its race schedule",
		Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
	}, []string{"kind"})); err != nil {
		return nil, err
	}
	if s.laps, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "evrace_scenario_total_laps",
		Help:    "Projected race laps per scenario",
		Buckets: prometheus.LinearBuckets(100, 100, 10),
	})); err != nil {
		return nil, err
	}
	if s.overTemp, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "evrace_scenario_over_temperature_total",
		Help: "Scenarios whose storage exceeded its maximum temperature",
	})); err != nil {
		return nil, err
	}
	if s.progress, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "evrace_sweep_progress_ratio",
		Help: "Fraction of scenarios finished in the running sweep",
	})); err != nil {
		return nil, err
	}
	if s.bestLaps, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "evrace_sweep_best_total_laps",
		Help: "Most laps reached by a scenario of the last sweep",
	})); err != nil {
		return nil, err
	}
	if s.meanLaps, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "evrace_sweep_mean_total_laps",
		Help: "Mean laps over the scenarios of the last sweep",
	})); err != nil {
		return nil, err
	}
	if s.wins, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "evrace_sweep_wins",
		Help: "Scenarios of the last sweep beating the winning gas car",
	})); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordScenario implements coremetrics.MetricsSink.
func (s *PromSink) RecordScenario(ev coremetrics.ScenarioEvent) error {
	s.scenarios.WithLabelValues(ev.Kind, strconv.FormatBool(ev.Wins)).Inc()
	s.duration.WithLabelValues(ev.Kind).Observe(ev.Elapsed.Seconds())
	s.laps.Observe(float64(ev.TotalLaps))
	if ev.OverTemperature {
		s.overTemp.Inc()
	}
	return nil
}

// RecordProgress implements coremetrics.ProgressRecorder.
func (s *PromSink) RecordProgress(_ string, done, total int) error {
	if total > 0 {
		s.progress.Set(float64(done) / float64(total))
	}
	return nil
}

// RecordSweepSummary implements coremetrics.SummaryRecorder.
func (s *PromSink) RecordSweepSummary(ev coremetrics.SweepSummaryEvent) error {
	s.bestLaps.Set(float64(ev.BestTotalLaps))
	s.meanLaps.Set(ev.MeanTotalLaps)
	s.wins.Set(float64(ev.Wins))
	return nil
}
