package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/transitflow/busalloc/core/events"
	"github.com/transitflow/busalloc/core/model"
	"github.com/transitflow/busalloc/internal/eventbus"
)

func TestEventCollector_RecordsAllocation(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	sink := &captureSink{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartEventCollector(ctx, bus, sink)

	// Give the collector goroutine time to subscribe before publishing.
	time.Sleep(10 * time.Millisecond)
	bus.Publish(events.AllocationEvent{
		RunID:   "run-1",
		Request: model.FleetRequest{TotalBuses: 8, CycleSeconds: 120},
		Result: model.AllocationResult{
			SavedBuses: 2,
			Routes:     []model.RouteResult{{RouteID: 1, RouteName: "r1", Buses: 3}},
		},
		Time: time.Now(),
	})
	bus.Publish(events.CountsEvent{StopID: "B2", Count: 5, Time: time.Now()})

	deadline := time.After(time.Second)
	for {
		allocs, stops := sink.snapshot()
		if len(allocs) == 1 && stops["B2"] == 5 {
			if allocs[0].TotalBuses != 8 || allocs[0].SavedBuses != 2 {
				t.Fatalf("unexpected record %+v", allocs[0])
			}
			return
		}
		select {
		case <-deadline:
			t.Fatalf("collector did not record events")
		case <-time.After(5 * time.Millisecond):
		}
	}
}
