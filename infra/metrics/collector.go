package metrics

import (
	"context"

	"github.com/transitflow/busalloc/core/events"
	coremetrics "github.com/transitflow/busalloc/core/metrics"
	"github.com/transitflow/busalloc/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for
// allocation and counts events. It stops when the context is canceled.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case events.AllocationEvent:
					rec := coremetrics.AllocationRecord{
						RunID:        e.RunID,
						TotalBuses:   e.Request.TotalBuses,
						CycleSeconds: e.Request.CycleSeconds,
						SavedBuses:   e.Result.SavedBuses,
						Duration:     e.Duration,
						Time:         e.Time,
					}
					for _, r := range e.Result.Routes {
						rec.Routes = append(rec.Routes, coremetrics.RouteAllocationSample{
							RouteID:     r.RouteID,
							RouteName:   r.RouteName,
							TotalPeople: float64(r.TotalPeople),
							Probability: r.Probability,
							Buses:       r.Buses,
						})
					}
					_ = sink.RecordAllocation(rec)
				case events.CountsEvent:
					if r, ok := sink.(coremetrics.StopCountRecorder); ok {
						_ = r.RecordStopCount(e.StopID, e.Count, e.Time)
					}
				}
			}
		}
	}()
}
