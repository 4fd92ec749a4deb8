package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/evrace/core/race"
	"github.com/kilianp07/evrace/pkg/export"
)

type raceOptions struct {
	file        string
	pitMinutes  float64
	gwcMinutes  []float64
	lapSeconds  float64
	energyKJ    float64
	capacityKWh float64
	format      string
}

func newRaceCmd() *cobra.Command {
	var opts raceOptions
	cmd := &cobra.Command{
		Use:   "race",
		Short: "Compute laps and pit stops for each race day",
		Long: `Computes the race schedule from a single representative lap.
Inputs come from --file (YAML or JSON race config) or from flags; flags that
are set override the file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRace(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.file, "file", "f", "", "race config file (yaml or json)")
	f.Float64Var(&opts.pitMinutes, "pit-minutes", 0, "battery swap time in minutes")
	f.Float64SliceVar(&opts.gwcMinutes, "gwc", nil, "racing minutes per day, comma separated")
	f.Float64Var(&opts.lapSeconds, "lap-seconds", 0, "lap time in seconds")
	f.Float64Var(&opts.energyKJ, "energy-kj", 0, "energy per lap in kJ")
	f.Float64Var(&opts.capacityKWh, "capacity-kwh", 0, "battery capacity in kWh")
	f.StringVar(&opts.format, "format", "json", "output format: json or csv")
	return cmd
}

func init() {
	rootCmd.AddCommand(newRaceCmd())
}

func runRace(cmd *cobra.Command, opts raceOptions) error {
	var cfg race.Config
	if opts.file != "" {
		c, err := race.LoadConfig(opts.file)
		if err != nil {
			return fmt.Errorf("load race config: %w", err)
		}
		cfg = c
	}
	flags := cmd.Flags()
	if flags.Changed("pit-minutes") {
		cfg.PitMinutes = opts.pitMinutes
	}
	if flags.Changed("gwc") {
		cfg.GWCMinutes = opts.gwcMinutes
	}
	if flags.Changed("lap-seconds") {
		cfg.LapSeconds = opts.lapSeconds
	}
	if flags.Changed("energy-kj") {
		cfg.EnergyPerLapJ = opts.energyKJ * 1000
	}
	if flags.Changed("capacity-kwh") {
		cfg.CapacityKWh = opts.capacityKWh
	}

	s, err := race.New(cfg)
	if err != nil {
		return err
	}
	s.Calculate()
	switch strings.ToLower(opts.format) {
	case "json":
		return export.WriteScheduleJSON(cmd.OutOrStdout(), s)
	case "csv":
		return export.WriteDaysCSV(cmd.OutOrStdout(), s.Days)
	default:
		return fmt.Errorf("unsupported format %q", opts.format)
	}
}
