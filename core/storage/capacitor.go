package storage

import (
	"fmt"
	"math"
)

// LookAhead selects the power used to estimate whether a capacitor fills or
// drains during the coming step.
type LookAhead int

const (
	// LookAheadStale uses whatever the power slot for the step already holds,
	// which is zero on a fresh trace or the result of an earlier request at
	// the same index.
	LookAheadStale LookAhead = iota
	// LookAheadRequested uses the requested power instead.
	LookAheadRequested
)

func (l LookAhead) String() string {
	if l == LookAheadRequested {
		return "requested"
	}
	return "stale"
}

// ParseLookAhead maps a configuration string to a LookAhead mode.
func ParseLookAhead(s string) (LookAhead, error) {
	switch s {
	case "", "stale":
		return LookAheadStale, nil
	case "requested":
		return LookAheadRequested, nil
	default:
		return 0, fmt.Errorf("unknown look-ahead mode %q", s)
	}
}

// CapacitorClamp limits power so the capacitor does not overfill or drain,
// estimating the step's energy transfer with the previous interval duration.
// The estimate may over- or undershoot; the full/empty checks on the next
// step then force the power to zero.
type CapacitorClamp struct {
	LookAhead LookAhead
}

// Clamp implements ClampPolicy.
func (c CapacitorClamp) Clamp(t *Trace, p Params, i int, requestedW, prevDt float64) float64 {
	stored := t.energy[t.prev(i)]
	estimate := t.power[i]
	if c.LookAhead == LookAheadRequested {
		estimate = requestedW
	}
	transfer := math.Abs(estimate * prevDt)

	if requestedW < 0 {
		switch {
		case stored >= p.Capacity:
			return 0
		case stored+transfer > p.Capacity:
			return (p.Capacity - stored) * prevDt
		default:
			return math.Max(requestedW, p.MaxChargeW)
		}
	}
	switch {
	case stored < 0:
		return 0
	case stored-transfer < 0:
		return stored * prevDt
	default:
		return math.Min(requestedW, p.MaxDischargeW)
	}
}

// NewCapacitor returns a super-capacitor modelled as a constant-voltage
// source. p.Capacity is in joules.
func NewCapacitor(steps int, p Params, mode LookAhead) (*Store, error) {
	return New(KindCapacitor, steps, p, CapacitorClamp{LookAhead: mode})
}
