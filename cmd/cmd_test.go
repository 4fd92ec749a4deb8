package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evrace/core/results"
)

const cmdConfig = `race:
  gwc_minutes: [360, 240]
  winning_gas_car_laps: 500
vehicle:
  battery_kwh: 50
  battery_energy_density_kwh_per_kg: 0.2
  battery_change_minutes: 5
storage:
  kind: battery
  params:
    max_discharge_w: 250000
    max_charge_w: -100000
    voltage_v: 800
    internal_resistance_ohm: 0.02
    thermal_resistance_c_per_w: 0.01
    thermal_mass_j_per_c: 100000
    coolant_temp_c: 25
    max_temp_c: 60
    initial_temp_c: 25
  profile:
    points: 56
    dt_s: 1
    requested_w: 100000
metrics:
  sinks:
    - type: "nop"
results:
  backend: jsonl
  path: %s
logging:
  level: error
`

func writeCmdConfig(t *testing.T) (cfgFile, resultsFile string) {
	t.Helper()
	dir := t.TempDir()
	resultsFile = filepath.Join(dir, "results.jsonl")
	cfgFile = filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgFile, []byte(fmt.Sprintf(cmdConfig, resultsFile)), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgFile, resultsFile
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("execute %v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func runRaceCmd(args ...string) (string, error) {
	var out bytes.Buffer
	c := newRaceCmd()
	c.SetOut(&out)
	c.SetErr(&out)
	c.SetArgs(args)
	err := c.Execute()
	return out.String(), err
}

func TestRaceFlagsJSON(t *testing.T) {
	out, err := runRaceCmd("--pit-minutes", "5", "--gwc", "360,240", "--lap-seconds", "55", "--energy-kj", "5400", "--capacity-kwh", "50")
	require.NoError(t, err)
	var doc struct {
		LapsPerCharge int `json:"laps_per_charge"`
		TotalLaps     int `json:"total_laps"`
		TotalPits     int `json:"total_pits"`
		Days          []struct {
			TotalLaps int `json:"total_laps"`
		} `json:"days"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, 33, doc.LapsPerCharge)
	assert.Equal(t, 567, doc.TotalLaps)
	assert.Equal(t, 16, doc.TotalPits)
	require.Len(t, doc.Days, 2)
	assert.Equal(t, 338, doc.Days[0].TotalLaps)
}

func TestRaceFileWithOverrideCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "race.yaml")
	data := "pit_minutes: 5\ngwc_minutes: [360]\nlap_seconds: 55\nenergy_per_lap_j: 5400000\ncapacity_kwh: 50\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	out, err := runRaceCmd("-f", path, "--gwc", "360,240", "--format", "csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "1,360,338,10,"), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "2,240,229,6,"), lines[2])
}

func TestRaceErrors(t *testing.T) {
	_, err := runRaceCmd("--pit-minutes", "5", "--gwc", "360", "--lap-seconds", "55", "--energy-kj", "0", "--capacity-kwh", "50")
	assert.Error(t, err)
	_, err = runRaceCmd("--pit-minutes", "5", "--gwc", "360", "--lap-seconds", "55", "--energy-kj", "5400", "--capacity-kwh", "50", "--format", "xml")
	assert.Error(t, err)
	_, err = runRaceCmd("-f", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLapCommand(t *testing.T) {
	cfg, _ := writeCmdConfig(t)
	trace := filepath.Join(t.TempDir(), "trace.csv")
	out := execute(t, "lap", "-c", cfg, "--trace", trace)
	assert.Contains(t, out, "lap time:         55.000 s")
	assert.Contains(t, out, "lap energy:       5400.000 kJ")

	b, err := os.ReadFile(trace)
	require.NoError(t, err)
	rows := strings.Split(strings.TrimSpace(string(b)), "\n")
	assert.Len(t, rows, 57)
	assert.True(t, strings.HasPrefix(rows[0], "index,"))
}

func TestResultsLs(t *testing.T) {
	cfg, path := writeCmdConfig(t)
	store, err := results.NewJSONLStore(path)
	require.NoError(t, err)
	now := time.Now()
	for i, laps := range []int{567, 420} {
		rec := results.Record{RunID: "r1", Scenario: i, TotalLaps: laps, Wins: laps > 500, Timestamp: now}
		require.NoError(t, store.Append(context.Background(), rec))
	}
	require.NoError(t, store.Close())

	out := execute(t, "results", "ls", "-c", cfg, "--run", "r1", "--wins", "--format", "json")
	var recs []results.Record
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, 567, recs[0].TotalLaps)
}
