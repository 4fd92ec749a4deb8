package sweep

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/evrace/core/lap"
	"github.com/kilianp07/evrace/core/logger"
	"github.com/kilianp07/evrace/core/metrics"
	"github.com/kilianp07/evrace/core/monitoring"
	"github.com/kilianp07/evrace/core/race"
	"github.com/kilianp07/evrace/core/results"
	"github.com/kilianp07/evrace/core/storage"
	"github.com/kilianp07/evrace/core/vehicle"
	"github.com/kilianp07/evrace/internal/eventbus"
)

// Base holds everything a scenario does not vary.
type Base struct {
	Vehicle   vehicle.Properties
	Kind      storage.Kind
	LookAhead storage.LookAhead
	// Storage is the device template. Battery capacity follows the scenario
	// battery size and the discharge limit follows the vehicle output factor
	// when it is set.
	Storage           storage.Params
	Profile           lap.Profile
	GWCMinutes        []float64
	WinningGasCarLaps int
}

// Validate checks the inputs shared by every scenario.
func (b Base) Validate() error {
	if len(b.Profile) < 2 {
		return lap.ErrEmptyProfile
	}
	if err := b.Vehicle.Validate(); err != nil {
		return err
	}
	if err := b.Storage.Validate(); err != nil {
		return err
	}
	if len(b.GWCMinutes) == 0 {
		return errors.New("sweep: no race days configured")
	}
	return nil
}

// Progress is published on the bus after each finished scenario.
type Progress struct {
	RunID     string
	Scenario  int
	Done      int
	Total     int
	TotalLaps int
}

// Options wires the runner to its collaborators. Nil members are replaced
// by no-op implementations.
type Options struct {
	Workers int
	Sink    metrics.MetricsSink
	Store   results.Store
	Bus     *eventbus.TypedBus[Progress]
	Logger  logger.Logger
}

// Report is the outcome of a sweep. Results are ordered by scenario index.
type Report struct {
	RunID   string           `json:"run_id"`
	Results []results.Record `json:"results"`
	Summary Summary          `json:"summary"`
	Elapsed time.Duration    `json:"elapsed_ns"`
}

// Runner evaluates scenarios concurrently. Each scenario owns its energy
// store and schedule, so workers share nothing but the read-only base.
type Runner struct {
	base    Base
	workers int
	sink    metrics.MetricsSink
	store   results.Store
	bus     *eventbus.TypedBus[Progress]
	log     logger.Logger
	laps    *lap.Runner
	now     func() time.Time
}

// NewRunner validates base and applies option defaults.
func NewRunner(base Base, opts Options) (*Runner, error) {
	if err := base.Validate(); err != nil {
		return nil, fmt.Errorf("sweep base: %w", err)
	}
	r := &Runner{
		base:    base,
		workers: opts.Workers,
		sink:    opts.Sink,
		store:   opts.Store,
		bus:     opts.Bus,
		log:     opts.Logger,
		now:     time.Now,
	}
	if r.workers < 1 {
		r.workers = 1
	}
	if r.sink == nil {
		r.sink = metrics.NopSink{}
	}
	if r.store == nil {
		r.store = results.NopStore{}
	}
	if r.log == nil {
		r.log = logger.NopLogger{}
	}
	r.laps = lap.NewRunner(r.log)
	return r, nil
}

// Evaluate runs one scenario: the lap through the energy store, then the
// race schedule with the resulting lap time and energy. The schedule uses the
// capacity of the simulated device, so a capacitor run ignores the scenario
// battery size.
func (r *Runner) Evaluate(sc Scenario) (results.Record, error) {
	props := r.base.Vehicle.WithBattery(sc.BatteryKWh, sc.ChangeMinutes)
	if err := props.Validate(); err != nil {
		return results.Record{}, err
	}
	p := r.base.Storage
	if r.base.Kind == storage.KindBattery {
		p.Capacity = props.BatteryKWh
	}
	if props.BatteryOutputFactor > 0 {
		p.MaxDischargeW = props.MaxDischargeW()
	}
	prof := r.base.Profile.Scaled(sc.PowerScale)
	store, err := lap.NewStore(r.base.Kind, p, r.base.LookAhead, prof)
	if err != nil {
		return results.Record{}, err
	}
	lr, err := r.laps.Run(store, prof)
	if err != nil {
		return results.Record{}, err
	}
	sched, err := race.New(race.Config{
		PitMinutes:    props.PitMinutes(),
		GWCMinutes:    r.base.GWCMinutes,
		LapSeconds:    lr.LapSeconds,
		EnergyPerLapJ: lr.EnergyJ,
		CapacityKWh:   p.CapacityJoules(r.base.Kind) / storage.JoulesPerKWh,
	})
	if err != nil {
		return results.Record{}, err
	}
	sched.Calculate()
	return results.Record{
		Scenario:         sc.Index,
		Kind:             r.base.Kind.String(),
		BatteryKWh:       sc.BatteryKWh,
		ChangeMinutes:    sc.ChangeMinutes,
		PowerScale:       sc.PowerScale,
		BatteryMassKg:    props.BatteryMassKg(),
		PitMinutes:       props.PitMinutes(),
		LapSeconds:       lr.LapSeconds,
		LapEnergyKJ:      lr.EnergyJ / 1000,
		PeakTemperatureC: lr.Storage.PeakTemperatureC,
		OverTemperature:  lr.Storage.OverTemperature,
		TotalLaps:        sched.TotalLaps,
		TotalPits:        sched.TotalPits(),
		EnergyRemaining:  sched.EnergyRemaining(),
		Wins:             sched.TotalLaps > r.base.WinningGasCarLaps,
		Days:             sched.Days,
	}, nil
}

// Run evaluates every scenario of grid. The first failing scenario cancels
// the rest and its error is returned.
func (r *Runner) Run(ctx context.Context, grid Grid) (*Report, error) {
	scenarios := grid.Expand(r.base.Vehicle.BatteryKWh, r.base.Vehicle.BatteryChangeMinutes)
	runID := uuid.NewString()
	start := r.now()
	r.log.Infow("sweep started", map[string]any{
		"run_id":    runID,
		"scenarios": len(scenarios),
		"workers":   r.workers,
		"kind":      r.base.Kind.String(),
	})

	recs := make([]results.Record, len(scenarios))
	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for _, sc := range scenarios {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t0 := time.Now()
			rec, err := r.Evaluate(sc)
			if err != nil {
				err = fmt.Errorf("scenario %s: %w", sc, err)
				monitoring.CaptureException(err, map[string]string{
					"module":   "sweep",
					"run_id":   runID,
					"scenario": strconv.Itoa(sc.Index),
				})
				return err
			}
			rec.RunID = runID
			rec.Timestamp = r.now()
			recs[sc.Index] = rec
			if err := r.store.Append(gctx, rec); err != nil {
				return fmt.Errorf("store scenario %d: %w", sc.Index, err)
			}
			if err := r.sink.RecordScenario(scenarioEvent(rec, time.Since(t0))); err != nil {
				r.log.Errorf("record scenario %d: %v", sc.Index, err)
			}
			n := int(done.Add(1))
			r.log.Debugf("scenario %s: %d laps, %d pits (%d/%d)", sc, rec.TotalLaps, rec.TotalPits, n, len(scenarios))
			if r.bus != nil {
				r.bus.Publish(Progress{RunID: runID, Scenario: sc.Index, Done: n, Total: len(scenarios), TotalLaps: rec.TotalLaps})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.log.Errorf("sweep %s aborted: %v", runID, err)
		return nil, err
	}

	rep := &Report{RunID: runID, Results: recs, Summary: Summarize(recs), Elapsed: r.now().Sub(start)}
	if sr, ok := r.sink.(metrics.SummaryRecorder); ok {
		if err := sr.RecordSweepSummary(summaryEvent(rep)); err != nil {
			r.log.Errorf("record summary: %v", err)
		}
	}
	r.log.Infow("sweep finished", map[string]any{
		"run_id":          runID,
		"scenarios":       rep.Summary.Scenarios,
		"wins":            rep.Summary.Wins,
		"best_scenario":   rep.Summary.BestScenario,
		"best_total_laps": rep.Summary.BestTotalLaps,
		"elapsed":         rep.Elapsed.String(),
	})
	return rep, nil
}

func scenarioEvent(rec results.Record, elapsed time.Duration) metrics.ScenarioEvent {
	days := make([]metrics.DayStat, len(rec.Days))
	for i, d := range rec.Days {
		days[i] = metrics.DayStat{
			Day:             i + 1,
			GWCMinutes:      d.GWCMinutes,
			Laps:            d.TotalLaps,
			Pits:            d.Pits,
			EnergyRemaining: d.EnergyRemaining,
		}
	}
	return metrics.ScenarioEvent{
		RunID:            rec.RunID,
		Scenario:         rec.Scenario,
		Kind:             rec.Kind,
		BatteryKWh:       rec.BatteryKWh,
		PitMinutes:       rec.PitMinutes,
		LapSeconds:       rec.LapSeconds,
		LapEnergyKJ:      rec.LapEnergyKJ,
		TotalLaps:        rec.TotalLaps,
		TotalPits:        rec.TotalPits,
		EnergyRemaining:  rec.EnergyRemaining,
		PeakTemperatureC: rec.PeakTemperatureC,
		OverTemperature:  rec.OverTemperature,
		Wins:             rec.Wins,
		Days:             days,
		Elapsed:          elapsed,
		Time:             rec.Timestamp,
	}
}

func summaryEvent(rep *Report) metrics.SweepSummaryEvent {
	s := rep.Summary
	return metrics.SweepSummaryEvent{
		RunID:           rep.RunID,
		Scenarios:       s.Scenarios,
		Wins:            s.Wins,
		OverTemperature: s.OverTemperature,
		BestScenario:    s.BestScenario,
		BestTotalLaps:   s.BestTotalLaps,
		MeanTotalLaps:   s.MeanTotalLaps,
		StdDevTotalLaps: s.StdDevTotalLaps,
		Elapsed:         rep.Elapsed,
		Time:            time.Now(),
	}
}
