// Package app wires the configuration to a sensitivity sweep: metrics
// sinks, result store, error monitor, progress bus and export.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/kilianp07/evrace/config"
	"github.com/kilianp07/evrace/core/factory"
	coremetrics "github.com/kilianp07/evrace/core/metrics"
	coremon "github.com/kilianp07/evrace/core/monitoring"
	"github.com/kilianp07/evrace/core/results"
	"github.com/kilianp07/evrace/core/sweep"
	"github.com/kilianp07/evrace/infra/logger"
	"github.com/kilianp07/evrace/infra/metrics"
	"github.com/kilianp07/evrace/infra/monitoring"
	"github.com/kilianp07/evrace/internal/eventbus"
	"github.com/kilianp07/evrace/pkg/export"
)

// progressBuffer keeps slow sinks from losing progress on large grids.
const progressBuffer = 64

// Service runs one configured sweep.
type Service struct {
	cfg    *config.Config
	log    logger.Logger
	sink   coremetrics.MetricsSink
	store  results.Store
	bus    *eventbus.TypedBus[sweep.Progress]
	runner *sweep.Runner
	out    io.Writer

	closeOnce sync.Once
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	if err := logger.Configure(cfg.Logging.Logger()); err != nil {
		return nil, err
	}
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	prof, err := cfg.Storage.Profile.LoadProfile()
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}

	sink, err := coremetrics.NewMetricsSink(sinkModules(cfg.Metrics))
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	store, err := results.Open(cfg.Results.Module())
	if err != nil {
		closeSink(sink)
		return nil, err
	}

	bus := eventbus.NewTypedBuffered[sweep.Progress](progressBuffer)
	runner, err := sweep.NewRunner(sweep.Base{
		Vehicle:           cfg.Vehicle,
		Kind:              cfg.Storage.StorageKind(),
		LookAhead:         cfg.Storage.Mode(),
		Storage:           cfg.Storage.Params,
		Profile:           prof,
		GWCMinutes:        cfg.Race.GWCMinutes,
		WinningGasCarLaps: cfg.Race.WinningGasCarLaps,
	}, sweep.Options{
		Workers: cfg.Sweep.Workers,
		Sink:    sink,
		Store:   store,
		Bus:     bus,
		Logger:  logger.New("sweep"),
	})
	if err != nil {
		closeSink(sink)
		_ = store.Close()
		return nil, err
	}
	return &Service{cfg: cfg, log: logg, sink: sink, store: store, bus: bus, runner: runner, out: os.Stdout}, nil
}

// sinkModules adds a prometheus sink when the endpoint is enabled but no
// sink feeds it.
func sinkModules(cfg coremetrics.Config) []factory.ModuleConfig {
	mods := append([]factory.ModuleConfig(nil), cfg.Sinks...)
	if cfg.PrometheusAddr == "" {
		return mods
	}
	for _, m := range mods {
		if m.Type == "prometheus" {
			return mods
		}
	}
	return append(mods, factory.ModuleConfig{Type: "prometheus"})
}

// SetOutput redirects the export written when no output file is configured.
func (s *Service) SetOutput(w io.Writer) { s.out = w }

// Run executes the sweep and writes the export. The Prometheus endpoint, when
// enabled, serves until Run returns. A Service runs a single sweep.
func (s *Service) Run(ctx context.Context) (*sweep.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	var collected <-chan struct{}
	if rec, ok := s.sink.(coremetrics.ProgressRecorder); ok {
		collected = metrics.StartProgressCollector(ctx, s.bus, rec)
	}

	rep, err := s.runner.Run(ctx, s.cfg.Sweep.Grid)
	// closing the bus lets the collector drain what is buffered
	s.bus.Close()
	if collected != nil {
		<-collected
	}
	if err != nil {
		return nil, err
	}
	if err := s.export(rep); err != nil {
		return rep, fmt.Errorf("export: %w", err)
	}
	return rep, nil
}

func (s *Service) export(rep *sweep.Report) error {
	w := s.out
	if path := s.cfg.Sweep.Output; path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		w = f
		s.log.Infof("writing %d results to %s", len(rep.Results), path)
	}
	return export.WriteResults(w, s.cfg.Sweep.Format, rep.Results)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.bus.Close()
		err = errors.Join(closeSink(s.sink), s.store.Close())
		coremon.Flush(2 * time.Second)
	})
	return err
}

func closeSink(sink coremetrics.MetricsSink) error {
	if c, ok := sink.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
