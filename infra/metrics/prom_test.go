package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/transitflow/busalloc/core/metrics"
)

func TestPromSink_RecordAllocation(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("sink: %v", err)
	}

	rec := coremetrics.AllocationRecord{
		RunID:      "run-1",
		TotalBuses: 10,
		SavedBuses: 3,
		Duration:   5 * time.Millisecond,
		Time:       time.Now(),
		Routes: []coremetrics.RouteAllocationSample{
			{RouteID: 1, RouteName: "r1", TotalPeople: 40, Buses: 4},
			{RouteID: 2, RouteName: "r2", TotalPeople: 0, Buses: 1},
		},
	}
	if err := sink.RecordAllocation(rec); err != nil {
		t.Fatalf("record: %v", err)
	}

	if got := testutil.ToFloat64(sink.runs); got != 1 {
		t.Errorf("runs counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(sink.savedBuses); got != 3 {
		t.Errorf("saved gauge = %v, want 3", got)
	}
	if got := testutil.ToFloat64(sink.routeBuses.WithLabelValues("1", "r1")); got != 4 {
		t.Errorf("route buses gauge = %v, want 4", got)
	}
}

func TestPromSink_RecordStopCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("sink: %v", err)
	}
	if err := sink.RecordStopCount("B3", 17, time.Now()); err != nil {
		t.Fatalf("record: %v", err)
	}
	if got := testutil.ToFloat64(sink.stopCounts.WithLabelValues("B3")); got != 17 {
		t.Errorf("stop gauge = %v, want 17", got)
	}
}

func TestPromSink_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatalf("second registration must tolerate existing collectors: %v", err)
	}
}
