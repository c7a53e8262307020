package allocation

import (
	"math"

	"github.com/transitflow/busalloc/core/model"
)

// avgWait returns the expected waiting time in seconds for one passenger on
// a route served by the given number of buses over cycleSec seconds. The
// dispatch interval is floored at the minimum headway; with no buses the
// wait is unbounded.
func avgWait(cycleSec float64, buses int, cfg Tunables) float64 {
	if buses <= 0 {
		return math.Inf(1)
	}
	freq := cycleSec / float64(buses)
	if freq < cfg.MinHeadwaySec {
		freq = cfg.MinHeadwaySec
	}
	return freq / 2
}

// objectiveCycle normalizes the cycle duration used inside the objective: an
// unknown (zero) cycle is evaluated as one second, which collapses every
// wait term onto the headway floor.
func objectiveCycle(cycleSeconds int) float64 {
	if cycleSeconds > 0 {
		return float64(cycleSeconds)
	}
	return 1
}

// Objective is the combined cost of a candidate allocation: total
// demand-weighted waiting time plus a per-bus operating penalty. Routes
// without demand contribute no wait term but their buses still count toward
// the penalty.
func Objective(allocs []model.RouteAllocation, cycleSeconds int, cfg Tunables) float64 {
	cycle := objectiveCycle(cycleSeconds)
	var wait float64
	var buses int
	for _, r := range allocs {
		buses += r.Buses
		if r.TotalPeople <= 0 {
			continue
		}
		wait += r.TotalPeople * avgWait(cycle, r.Buses, cfg)
	}
	return wait + cfg.PenaltyPerBus*float64(buses)
}

// marginalGain is the reduction in Objective from granting the route one
// more bus. Only the route's own wait term and the penalty term change, so
// the delta is computed in closed form instead of re-evaluating the whole
// objective. A zero-demand route always loses exactly the penalty.
func marginalGain(r model.RouteAllocation, cycle float64, cfg Tunables) float64 {
	if r.TotalPeople <= 0 {
		return -cfg.PenaltyPerBus
	}
	saved := r.TotalPeople * (avgWait(cycle, r.Buses, cfg) - avgWait(cycle, r.Buses+1, cfg))
	return saved - cfg.PenaltyPerBus
}
