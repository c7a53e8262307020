package allocation

import (
	"sort"

	"github.com/transitflow/busalloc/core/logger"
	"github.com/transitflow/busalloc/core/model"
)

// gainEpsilon is the smallest marginal gain still worth a bus. Additions
// whose best gain falls at or below it leave the remaining fleet unused.
const gainEpsilon = 1e-6

// Allocator distributes a finite fleet across routes to minimise the
// combined wait-time/operating-cost objective. Each Allocate call works on a
// private copy of its inputs; the allocator itself holds no request state
// and is safe for concurrent use.
type Allocator struct {
	cfg Tunables
	log logger.Logger
}

// NewAllocator builds an allocator with the given tunables. A nil logger is
// replaced with a no-op one.
func NewAllocator(cfg Tunables, log logger.Logger) *Allocator {
	cfg.SetDefaults()
	if log == nil {
		log = nopLogger{}
	}
	return &Allocator{cfg: cfg, log: log}
}

// Allocate assigns req.TotalBuses across the demand routes and returns the
// final per-route allocation together with the number of saved (unused)
// buses.
//
// The fleet must be non-negative and at least one bus per route; otherwise
// an InvalidFleetSizeError or InsufficientFleetError is returned and no
// allocation is attempted. The initial allocation grants every route its
// capacity minimum, a trim pass reconciles it with the fleet, and a
// bounded greedy loop grants the remaining buses to the route with the
// largest marginal gain until no addition pays for its penalty.
func (a *Allocator) Allocate(demands []model.RouteDemand, req model.FleetRequest) ([]model.RouteAllocation, int, error) {
	if req.TotalBuses < 0 {
		return nil, 0, InvalidFleetSizeError{Provided: req.TotalBuses}
	}
	if req.TotalBuses < len(demands) {
		return nil, 0, InsufficientFleetError{Required: len(demands), Provided: req.TotalBuses}
	}

	bounds := make([]Bounds, len(demands))
	allocs := make([]model.RouteAllocation, len(demands))
	used := 0
	for i, d := range demands {
		bounds[i] = ComputeBounds(d.TotalPeople, req.CycleSeconds, a.cfg)
		allocs[i] = model.RouteAllocation{RouteDemand: d, Buses: bounds[i].MinRequired}
		used += bounds[i].MinRequired
	}

	if used > req.TotalBuses {
		used -= a.trim(allocs, used-req.TotalBuses)
	}

	headroom := 0
	for i := range allocs {
		if h := bounds[i].MaxUseful - allocs[i].Buses; h > 0 {
			headroom += h
		}
	}
	additions := req.TotalBuses - used
	if headroom < additions {
		additions = headroom
	}

	cycle := objectiveCycle(req.CycleSeconds)
	for n := 0; n < additions; n++ {
		bestGain := 0.0
		bestIdx := -1
		for i, r := range allocs {
			if r.Buses >= bounds[i].MaxUseful || r.Buses >= a.cfg.MaxBusesPerRoute {
				continue
			}
			if g := marginalGain(r, cycle, a.cfg); g > bestGain {
				bestGain = g
				bestIdx = i
			}
		}
		if bestIdx < 0 || bestGain <= gainEpsilon {
			break
		}
		allocs[bestIdx].Buses++
		used++
	}

	saved := req.TotalBuses - used
	a.log.Debugw("fleet allocated", map[string]any{
		"total_buses": req.TotalBuses,
		"used":        used,
		"saved":       saved,
		"routes":      len(allocs),
	})
	return allocs, saved, nil
}

// trim removes excess buses from the initial allocation, starting with the
// route carrying the fewest passengers (ties keep declaration order) and
// exhausting it down to the floor of one bus before moving to the next.
// Returns the number of buses removed.
func (a *Allocator) trim(allocs []model.RouteAllocation, excess int) int {
	order := make([]int, len(allocs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool {
		return allocs[order[x]].TotalPeople < allocs[order[y]].TotalPeople
	})

	removed := 0
	idx := 0
	for excess > 0 && idx < len(order) {
		r := &allocs[order[idx]]
		if r.Buses > 1 {
			r.Buses--
			excess--
			removed++
		} else {
			idx++
		}
	}
	return removed
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
