package storage

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParams() Params {
	return Params{
		Capacity:           50,
		MaxDischargeW:      250e3,
		MaxChargeW:         -100e3,
		VoltageV:           800,
		InternalResistance: 0.05,
		ThermalResistance:  0.01,
		ThermalMass:        50e3,
		CoolantTempC:       25,
		MaxTempC:           60,
		InitialTempC:       30,
	}
}

func TestBatteryRequestClamps(t *testing.T) {
	p := testParams()
	b, err := NewBattery(4, p)
	require.NoError(t, err)

	cases := []struct {
		name      string
		requested float64
		want      float64
	}{
		{"at discharge limit", p.MaxDischargeW, p.MaxDischargeW},
		{"one above discharge limit", p.MaxDischargeW + 1, p.MaxDischargeW},
		{"within limits", 1000, 1000},
		{"zero", 0, 0},
		{"charge within limits", -5000, -5000},
		{"charge over limit", -1e6, p.MaxChargeW},
	}
	for _, c := range cases {
		if got := b.Request(1, c.requested, 0.1); got != c.want {
			t.Fatalf("%s: got %v want %v", c.name, got, c.want)
		}
	}
}

func TestBatteryRequestDerivesCurrentAndHeat(t *testing.T) {
	p := testParams()
	b, err := NewBattery(3, p)
	require.NoError(t, err)

	b.Request(1, -80e3, 0.1)
	s, err := b.Trace().Sample(1)
	require.NoError(t, err)
	assert.InDelta(t, -100.0, s.CurrentA, 1e-9)
	assert.InDelta(t, 100.0*100.0*p.InternalResistance, s.HeatPowerW, 1e-9)
	assert.GreaterOrEqual(t, s.HeatPowerW, 0.0)
}

func TestBatteryRequestNeverExceedsLimits(t *testing.T) {
	p := testParams()
	b, err := NewBattery(100, p)
	require.NoError(t, err)
	limit := math.Max(p.MaxDischargeW, math.Abs(p.MaxChargeW))
	rng := rand.New(rand.NewSource(7))
	for i := 1; i < 100; i++ {
		req := (rng.Float64()*2 - 1) * 1e6
		got := b.Request(i, req, 0.05)
		if math.Abs(got) > limit {
			t.Fatalf("step %d: |%v| exceeds %v", i, got, limit)
		}
		b.Settle(i, 0.05)
		s, _ := b.Trace().Sample(i)
		if s.HeatPowerW < 0 {
			t.Fatalf("negative heat power at %d", i)
		}
	}
}

func TestSettleIntegratesPreviousStep(t *testing.T) {
	p := testParams()
	b, err := NewBattery(50, p)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(11))
	dts := make([]float64, 50)
	for i := 1; i < 50; i++ {
		dts[i] = 0.01 + rng.Float64()*0.2
		b.Request(i, (rng.Float64()*2-1)*300e3, dts[i-1])
		b.Settle(i, dts[i])
	}
	tr := b.Trace()
	for i := 1; i < 50; i++ {
		cur, _ := tr.Sample(i)
		prev, _ := tr.Sample(i - 1)
		assert.InDelta(t, prev.PowerW*dts[i], cur.EnergyJ-prev.EnergyJ, 1e-6, "energy step %d", i)
		assert.InDelta(t, prev.HeatPowerW*dts[i], cur.HeatEnergyJ-prev.HeatEnergyJ, 1e-6, "heat step %d", i)
	}
}

func TestSettleThermalStep(t *testing.T) {
	p := testParams()
	b, err := NewBattery(3, p)
	require.NoError(t, err)

	// No heat generated: the pack only cools toward the coolant.
	b.Settle(1, 2)
	s, _ := b.Trace().Sample(1)
	want := p.InitialTempC - (p.InitialTempC-p.CoolantTempC)/p.ThermalResistance*2/p.ThermalMass
	assert.InDelta(t, want, s.TemperatureC, 1e-12)

	// Heat from step 1 warms step 2.
	b.Request(1, 200e3, 2)
	b.Settle(2, 1)
	s1, _ := b.Trace().Sample(1)
	s2, _ := b.Trace().Sample(2)
	heat := s1.HeatPowerW * 1
	want = s1.TemperatureC + (heat-(s1.TemperatureC-p.CoolantTempC)/p.ThermalResistance*1)/p.ThermalMass
	assert.InDelta(t, want, s2.TemperatureC, 1e-12)
}

func TestRequestAtSeedWrapsToLastPoint(t *testing.T) {
	p := testParams()
	b, err := NewBattery(3, p)
	require.NoError(t, err)
	b.Request(2, 1000, 1)
	b.Settle(0, 1)
	s, _ := b.Trace().Sample(0)
	if s.EnergyJ != 1000 {
		t.Fatalf("settle at 0 should read the last point, got %v", s.EnergyJ)
	}
}

func TestSampleOutOfRange(t *testing.T) {
	b, err := NewBattery(2, testParams())
	require.NoError(t, err)
	if _, err := b.Trace().Sample(2); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if _, err := b.Trace().Sample(-1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestNewRejectsEmptyTrace(t *testing.T) {
	if _, err := NewBattery(0, testParams()); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := New(KindBattery, 2, testParams(), nil); err == nil {
		t.Fatalf("expected error for nil policy")
	}
}

func TestReportFlagsOverTemperature(t *testing.T) {
	p := testParams()
	p.ThermalMass = 100
	p.ThermalResistance = 10
	b, err := NewBattery(10, p)
	require.NoError(t, err)
	for i := 1; i < 10; i++ {
		b.Request(i, p.MaxDischargeW, 0.5)
		b.Settle(i, 0.5)
	}
	r := b.Report()
	assert.True(t, r.OverTemperature)
	assert.Greater(t, r.FirstOverIndex, 0)
	assert.Greater(t, r.PeakTemperatureC, p.MaxTempC)
	assert.Equal(t, p.MaxDischargeW, r.PeakDischargeW)

	b.Reset()
	s, _ := b.Trace().Sample(5)
	assert.Zero(t, s.PowerW)
	s0, _ := b.Trace().Sample(0)
	assert.Equal(t, p.InitialTempC, s0.TemperatureC)
	assert.False(t, b.Report().OverTemperature)
}

func TestParamsValidate(t *testing.T) {
	if err := testParams().Validate(); err != nil {
		t.Fatalf("valid params rejected: %v", err)
	}
	mutations := map[string]func(*Params){
		"voltage":            func(p *Params) { p.VoltageV = 0 },
		"thermal resistance": func(p *Params) { p.ThermalResistance = 0 },
		"thermal mass":       func(p *Params) { p.ThermalMass = 0 },
		"positive charge":    func(p *Params) { p.MaxChargeW = 10 },
		"negative discharge": func(p *Params) { p.MaxDischargeW = -1 },
	}
	for name, mut := range mutations {
		p := testParams()
		mut(&p)
		if err := p.Validate(); !errors.Is(err, ErrInvalidParams) {
			t.Fatalf("%s: expected ErrInvalidParams, got %v", name, err)
		}
	}
}

func TestCapacityJoules(t *testing.T) {
	p := Params{Capacity: 50}
	assert.InDelta(t, 180e6, p.CapacityJoules(KindBattery), 1e-6)
	assert.Equal(t, 50.0, p.CapacityJoules(KindCapacitor))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("capacitor")
	require.NoError(t, err)
	assert.Equal(t, KindCapacitor, k)
	assert.Equal(t, "capacitor", k.String())
	_, err = ParseKind("flywheel")
	assert.Error(t, err)
}
