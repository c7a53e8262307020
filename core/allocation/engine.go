package allocation

import (
	"fmt"

	"github.com/transitflow/busalloc/core/logger"
	"github.com/transitflow/busalloc/core/model"
	"github.com/transitflow/busalloc/core/topology"
)

// Engine runs the full allocation pipeline over a static route topology:
// demand aggregation, feasibility bounds, greedy fleet allocation and result
// projection. It holds no state across requests; every Allocate call is an
// independent, deterministic computation and the engine is safe for
// concurrent use.
type Engine struct {
	topo  topology.Topology
	cfg   Tunables
	alloc *Allocator
	log   logger.Logger
}

// NewEngine validates the topology and tunables and returns a ready engine.
func NewEngine(topo topology.Topology, cfg Tunables, log logger.Logger) (*Engine, error) {
	cfg.SetDefaults()
	if err := topo.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("tunables: %w", err)
	}
	if log == nil {
		log = nopLogger{}
	}
	return &Engine{topo: topo, cfg: cfg, alloc: NewAllocator(cfg, log), log: log}, nil
}

// Topology returns the engine's static route network.
func (e *Engine) Topology() topology.Topology { return e.topo }

// Tunables returns the engine's constants.
func (e *Engine) Tunables() Tunables { return e.cfg }

// Allocate runs one dispatch cycle: counts are normalized over the
// topology's stops (missing stops count zero), aggregated into per-route
// demand and fed to the allocator. A negative fleet is rejected before any
// aggregation runs.
func (e *Engine) Allocate(req model.FleetRequest, counts model.StopCounts) (model.AllocationResult, error) {
	if req.TotalBuses < 0 {
		return model.AllocationResult{}, InvalidFleetSizeError{Provided: req.TotalBuses}
	}

	norm := e.normalizeCounts(counts)
	demands := Aggregate(e.topo, norm)
	allocs, saved, err := e.alloc.Allocate(demands, req)
	if err != nil {
		return model.AllocationResult{}, err
	}
	return Project(allocs, norm, req, saved, e.cfg), nil
}

// normalizeCounts restricts the raw counts to the topology's stops, filling
// absent stops with zero so an upstream collaborator failing to report a
// value never breaks the engine.
func (e *Engine) normalizeCounts(counts model.StopCounts) model.StopCounts {
	norm := make(model.StopCounts)
	for _, stop := range e.topo.Stops() {
		norm[stop] = counts.Get(stop)
	}
	return norm
}
