package allocation

import "math"

// Bounds delimits the feasible allocation window for one route.
type Bounds struct {
	// MinRequired is the minimum number of buses needed to carry the
	// route's demand, never below 1: every route keeps baseline service
	// even with no current passengers.
	MinRequired int
	// MaxUseful is the number of buses beyond which the dispatch interval
	// cannot drop any further given the minimum headway.
	MaxUseful int
}

// ComputeBounds derives the allocation bounds for a route carrying
// totalPeople passengers over a cycle of cycleSeconds. Both bounds are capped
// by the per-route hard cap. A zero cycle leaves the hard cap as the only
// ceiling since no cycle-duration constraint is known. Pure function of its
// arguments.
func ComputeBounds(totalPeople float64, cycleSeconds int, cfg Tunables) Bounds {
	need := 1
	if totalPeople > 0 {
		need = int(math.Ceil(totalPeople / float64(cfg.BusCapacity)))
		if need < 1 {
			need = 1
		}
	}
	if need > cfg.MaxBusesPerRoute {
		need = cfg.MaxBusesPerRoute
	}

	useful := cfg.MaxBusesPerRoute
	if cycleSeconds > 0 {
		useful = int(math.Floor(float64(cycleSeconds) / cfg.MinHeadwaySec))
		if useful < 1 {
			useful = 1
		}
		if useful > cfg.MaxBusesPerRoute {
			useful = cfg.MaxBusesPerRoute
		}
	}
	return Bounds{MinRequired: need, MaxUseful: useful}
}
