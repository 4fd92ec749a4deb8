package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/evrace/config"
	"github.com/kilianp07/evrace/core/results"
	"github.com/kilianp07/evrace/pkg/export"
)

var resultsOpts struct {
	runID    string
	since    time.Duration
	minLaps  int
	winsOnly bool
	format   string
}

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Stored scenario results",
}

var resultsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored scenario results",
	RunE:  runResultsLs,
}

func init() {
	f := resultsLsCmd.Flags()
	f.StringVar(&resultsOpts.runID, "run", "", "only this sweep run id")
	f.DurationVar(&resultsOpts.since, "since", 0, "only results newer than this duration")
	f.IntVar(&resultsOpts.minLaps, "min-laps", 0, "only scenarios with at least this many laps")
	f.BoolVar(&resultsOpts.winsOnly, "wins", false, "only scenarios beating the gas car")
	f.StringVar(&resultsOpts.format, "format", "csv", "csv or json")
	resultsCmd.AddCommand(resultsLsCmd)
	rootCmd.AddCommand(resultsCmd)
}

func runResultsLs(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	store, err := results.Open(cfg.Results.Module())
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error while closing store: %v\n", err)
		}
	}()
	q := results.Query{RunID: resultsOpts.runID, MinLaps: resultsOpts.minLaps, WinsOnly: resultsOpts.winsOnly}
	if resultsOpts.since > 0 {
		q.Start = time.Now().Add(-resultsOpts.since)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	recs, err := store.Query(ctx, q)
	if err != nil {
		return err
	}
	return export.WriteResults(cmd.OutOrStdout(), resultsOpts.format, recs)
}
