package metrics

import (
	"time"

	coremetrics "github.com/transitflow/busalloc/core/metrics"
)

// MultiSink fans allocation records out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordAllocation forwards the record to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordAllocation(rec coremetrics.AllocationRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordAllocation(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordStopCount forwards the observation to sinks that track stop counts.
func (m *MultiSink) RecordStopCount(stopID string, count int, t time.Time) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.StopCountRecorder); ok {
			if err := rec.RecordStopCount(stopID, count, t); err != nil {
				return err
			}
		}
	}
	return nil
}
