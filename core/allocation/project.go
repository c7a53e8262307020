package allocation

import (
	"math"

	"github.com/transitflow/busalloc/core/model"
)

// Project formats the final allocation for consumption by the transport
// layer. Dispatch frequency is cycle/buses floored at the minimum headway
// and rounded to two decimals; with an unknown cycle the floor itself is
// reported, and a route without buses reports no frequency at all. Demand is
// rounded to the nearest integer for display while probability keeps its
// two-decimal precision.
func Project(allocs []model.RouteAllocation, counts model.StopCounts, req model.FleetRequest, saved int, cfg Tunables) model.AllocationResult {
	routes := make([]model.RouteResult, len(allocs))
	for i, r := range allocs {
		res := model.RouteResult{
			RouteID:     r.RouteID,
			RouteName:   r.RouteName,
			TotalPeople: int(math.Round(r.TotalPeople)),
			Probability: r.Probability,
			Buses:       r.Buses,
		}
		if r.Buses > 0 {
			freq := cfg.MinHeadwaySec
			if req.CycleSeconds > 0 {
				freq = math.Max(float64(req.CycleSeconds)/float64(r.Buses), cfg.MinHeadwaySec)
			}
			freq = round2(freq)
			res.FrequencySec = &freq
		}
		routes[i] = res
	}
	return model.AllocationResult{
		Routes:     routes,
		StopCounts: counts.Clone(),
		SavedBuses: saved,
	}
}
