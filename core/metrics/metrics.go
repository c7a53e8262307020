package metrics

import "time"

// RouteAllocationSample is the per-route slice of a recorded allocation run.
type RouteAllocationSample struct {
	RouteID     int
	RouteName   string
	TotalPeople float64
	Probability float64
	Buses       int
}

// AllocationRecord captures one completed allocation run for observability
// purposes.
type AllocationRecord struct {
	RunID        string
	TotalBuses   int
	CycleSeconds int
	SavedBuses   int
	Routes       []RouteAllocationSample
	Duration     time.Duration
	Time         time.Time
}

// MetricsSink records allocation runs.
type MetricsSink interface {
	RecordAllocation(rec AllocationRecord) error
}

// StopCountRecorder records per-stop count observations. Implemented by
// sinks that track live demand.
type StopCountRecorder interface {
	RecordStopCount(stopID string, count int, t time.Time) error
}

// NopSink discards all records.
type NopSink struct{}

// RecordAllocation implements MetricsSink.
func (NopSink) RecordAllocation(AllocationRecord) error { return nil }

// RecordStopCount implements StopCountRecorder.
func (NopSink) RecordStopCount(string, int, time.Time) error { return nil }
