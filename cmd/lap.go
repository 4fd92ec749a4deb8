package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/evrace/config"
	"github.com/kilianp07/evrace/core/lap"
	"github.com/kilianp07/evrace/core/storage"
	"github.com/kilianp07/evrace/infra/logger"
	"github.com/kilianp07/evrace/pkg/export"
)

var lapOpts struct {
	profile   string
	kind      string
	lookAhead string
	trace     string
}

var lapCmd = &cobra.Command{
	Use:   "lap",
	Short: "Run one lap profile through the configured energy store",
	RunE:  runLap,
}

func init() {
	f := lapCmd.Flags()
	f.StringVarP(&lapOpts.profile, "profile", "p", "", "profile CSV (dt_s,requested_w), overrides storage.profile")
	f.StringVar(&lapOpts.kind, "kind", "", "battery or capacitor, overrides storage.kind")
	f.StringVar(&lapOpts.lookAhead, "look-ahead", "", "capacitor look-ahead: stale or requested")
	f.StringVar(&lapOpts.trace, "trace", "", "write the per-step trace CSV to this file")
	rootCmd.AddCommand(lapCmd)
}

func runLap(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Configure(cfg.Logging.Logger()); err != nil {
		return err
	}
	sc := cfg.Storage
	if lapOpts.profile != "" {
		sc.Profile = config.ProfileConfig{Path: lapOpts.profile}
	}
	if lapOpts.kind != "" {
		sc.Kind = lapOpts.kind
	}
	if lapOpts.lookAhead != "" {
		sc.LookAhead = lapOpts.lookAhead
	}
	if err := sc.Validate(); err != nil {
		return err
	}
	prof, err := sc.Profile.LoadProfile()
	if err != nil {
		return fmt.Errorf("profile: %w", err)
	}
	params := sc.Params
	if sc.StorageKind() == storage.KindBattery {
		params.Capacity = cfg.Vehicle.BatteryKWh
	}
	store, err := lap.NewStore(sc.StorageKind(), params, sc.Mode(), prof)
	if err != nil {
		return err
	}
	res, err := lap.NewRunner(logger.New("lap")).Run(store, prof)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	rep := res.Storage
	fmt.Fprintf(out, "storage:          %s\n", store.Kind())
	fmt.Fprintf(out, "points:           %d\n", len(prof))
	fmt.Fprintf(out, "lap time:         %.3f s\n", res.LapSeconds)
	fmt.Fprintf(out, "lap energy:       %.3f kJ\n", res.EnergyJ/1000)
	fmt.Fprintf(out, "heat energy:      %.3f kJ\n", rep.HeatEnergyJ/1000)
	fmt.Fprintf(out, "peak temperature: %.2f C at step %d\n", rep.PeakTemperatureC, rep.PeakTempIndex)
	if rep.OverTemperature {
		fmt.Fprintf(out, "over temperature: first at step %d (max %.1f C)\n", rep.FirstOverIndex, params.MaxTempC)
	}

	if lapOpts.trace != "" {
		f, err := os.Create(lapOpts.trace)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		if err := export.WriteTraceCSV(f, store.Trace().Samples()); err != nil {
			return fmt.Errorf("write trace: %w", err)
		}
	}
	return nil
}
