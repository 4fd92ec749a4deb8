package vehicle

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func lemons() Properties {
	return Properties{
		BatteryKWh:           50,
		BatteryEnergyDensity: 0.25,
		BatteryChangeMinutes: 2,
		BatteryMassPitFactor: 0.015,
		BatteryOutputFactor:  4000,
	}
}

func TestDerivedFigures(t *testing.T) {
	p := lemons()
	assert.InDelta(t, 200.0, p.BatteryMassKg(), 1e-9)
	assert.InDelta(t, 5.0, p.PitMinutes(), 1e-9)
	assert.InDelta(t, 200e3, p.MaxDischargeW(), 1e-9)
}

func TestPitTimeGrowsWithBattery(t *testing.T) {
	small := lemons().WithBattery(30, 2)
	big := lemons().WithBattery(70, 2)
	if !(big.PitMinutes() > small.PitMinutes()) {
		t.Fatalf("expected heavier pack to pit longer: %g <= %g", big.PitMinutes(), small.PitMinutes())
	}
	if lemons().BatteryKWh != 50 {
		t.Fatalf("WithBattery modified the receiver")
	}
}

func TestValidate(t *testing.T) {
	if err := lemons().Validate(); err != nil {
		t.Fatalf("valid properties rejected: %v", err)
	}
	cases := map[string]func(*Properties){
		"zero battery":    func(p *Properties) { p.BatteryKWh = 0 },
		"nan battery":     func(p *Properties) { p.BatteryKWh = math.NaN() },
		"zero density":    func(p *Properties) { p.BatteryEnergyDensity = 0 },
		"negative change": func(p *Properties) { p.BatteryChangeMinutes = -1 },
		"negative factor": func(p *Properties) { p.BatteryMassPitFactor = -0.1 },
		"negative output": func(p *Properties) { p.BatteryOutputFactor = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := lemons()
			mutate(&p)
			if err := p.Validate(); !errors.Is(err, ErrInvalidProperties) {
				t.Fatalf("expected ErrInvalidProperties, got %v", err)
			}
		})
	}
}
