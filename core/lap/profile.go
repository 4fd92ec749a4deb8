// Package lap drives an energy store over one lap of a closed track.
//
// The per-step power request comes from vehicle dynamics outside this
// repository; here it is read from a profile with one row per track point.
package lap

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrEmptyProfile is returned when a profile has fewer than two points.
var ErrEmptyProfile = errors.New("profile needs at least two points")

// Step is one track point. Dt is the time from the previous point. On the
// closed track the Dt of index 0 is the interval from the last point; it only
// feeds the look-ahead of the first step and is not part of the lap time.
type Step struct {
	Dt         float64 `json:"dt_s"`
	RequestedW float64 `json:"requested_w"`
}

// Profile is the ordered list of steps of one lap.
type Profile []Step

// Duration sums the step durations, skipping the start point.
func (p Profile) Duration() float64 {
	var d float64
	for i := 1; i < len(p); i++ {
		d += p[i].Dt
	}
	return d
}

// Uniform builds a profile of n points with constant dt and request.
func Uniform(n int, dt, requestedW float64) Profile {
	p := make(Profile, n)
	for i := range p {
		p[i] = Step{Dt: dt, RequestedW: requestedW}
	}
	return p
}

// Scaled returns a copy with every power request multiplied by f.
func (p Profile) Scaled(f float64) Profile {
	out := make(Profile, len(p))
	for i, s := range p {
		out[i] = Step{Dt: s.Dt, RequestedW: s.RequestedW * f}
	}
	return out
}

// LoadProfile reads a profile CSV file.
func LoadProfile(path string) (Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return DecodeProfile(f)
}

// DecodeProfile reads CSV rows of dt_s,requested_w. A header row is skipped
// when its first field is not a number.
func DecodeProfile(r io.Reader) (Profile, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true
	var p Profile
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		dt, err := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		if err != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("line %d: dt: %w", line, err)
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: power: %w", line, err)
		}
		if dt < 0 {
			return nil, fmt.Errorf("line %d: negative dt %g", line, dt)
		}
		p = append(p, Step{Dt: dt, RequestedW: w})
	}
	if len(p) < 2 {
		return nil, ErrEmptyProfile
	}
	return p, nil
}
