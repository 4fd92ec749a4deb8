package metrics

import (
	"errors"
	"io"
)

// MultiSink fans out events to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordScenario forwards the event to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordScenario(ev ScenarioEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordScenario(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordSweepSummary forwards the summary to sinks that support it.
func (m *MultiSink) RecordSweepSummary(ev SweepSummaryEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(SummaryRecorder); ok {
			if err := rec.RecordSweepSummary(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordProgress forwards progress to sinks that support it.
func (m *MultiSink) RecordProgress(runID string, done, total int) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(ProgressRecorder); ok {
			if err := rec.RecordProgress(runID, done, total); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes every sink implementing io.Closer and returns the joined
// errors.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.Sinks {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
