package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/evrace/app"
	"github.com/kilianp07/evrace/config"
	"github.com/kilianp07/evrace/infra/logger"
)

var sweepOpts struct {
	workers int
	output  string
	format  string
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Evaluate every combination of the configured scenario grid",
	RunE:  runSweep,
}

func init() {
	f := sweepCmd.Flags()
	f.IntVarP(&sweepOpts.workers, "workers", "w", 0, "parallel scenarios, overrides sweep.workers")
	f.StringVarP(&sweepOpts.output, "output", "o", "", "export file, overrides sweep.output")
	f.StringVar(&sweepOpts.format, "format", "", "csv or json, overrides sweep.format")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if sweepOpts.workers > 0 {
		cfg.Sweep.Workers = sweepOpts.workers
	}
	if sweepOpts.output != "" {
		cfg.Sweep.Output = sweepOpts.output
	}
	if sweepOpts.format != "" {
		cfg.Sweep.Format = sweepOpts.format
	}
	if err := cfg.Sweep.Validate(); err != nil {
		return err
	}

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	svc.SetOutput(cmd.OutOrStdout())
	rep, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	s := rep.Summary
	fmt.Fprintf(cmd.ErrOrStderr(), "run %s: %d scenarios, %d wins, best #%d with %d laps (mean %.1f, sd %.1f) in %s\n",
		rep.RunID, s.Scenarios, s.Wins, s.BestScenario, s.BestTotalLaps, s.MeanTotalLaps, s.StdDevTotalLaps, rep.Elapsed)
	return nil
}
