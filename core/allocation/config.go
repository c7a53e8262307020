package allocation

import "fmt"

// Tunables groups the constants steering demand aggregation and fleet
// allocation. They are passed explicitly into the engine rather than held as
// process-wide state, so tests can vary them per case.
type Tunables struct {
	// BusCapacity is how many passengers one bus carries.
	BusCapacity int `json:"bus_capacity"`
	// MinHeadwaySec is the minimum allowed dispatch interval in seconds.
	// Buses beyond floor(cycle/MinHeadwaySec) cannot shorten the interval
	// any further.
	MinHeadwaySec float64 `json:"min_headway_sec"`
	// MaxBusesPerRoute is the hard cap on any single route's allocation.
	MaxBusesPerRoute int `json:"max_buses_per_route"`
	// PenaltyPerBus is the operating cost of one bus in the objective.
	// Higher values favour fewer buses.
	PenaltyPerBus float64 `json:"penalty_per_bus"`
}

// DefaultTunables returns the reference depot parameters.
func DefaultTunables() Tunables {
	return Tunables{
		BusCapacity:      20,
		MinHeadwaySec:    10,
		MaxBusesPerRoute: 50,
		PenaltyPerBus:    8,
	}
}

// SetDefaults fills unset fields with the reference values.
func (t *Tunables) SetDefaults() {
	def := DefaultTunables()
	if t.BusCapacity == 0 {
		t.BusCapacity = def.BusCapacity
	}
	if t.MinHeadwaySec == 0 {
		t.MinHeadwaySec = def.MinHeadwaySec
	}
	if t.MaxBusesPerRoute == 0 {
		t.MaxBusesPerRoute = def.MaxBusesPerRoute
	}
	if t.PenaltyPerBus == 0 {
		t.PenaltyPerBus = def.PenaltyPerBus
	}
}

// Validate checks that every tunable is positive.
func (t Tunables) Validate() error {
	if t.BusCapacity <= 0 {
		return fmt.Errorf("bus_capacity must be positive, got %d", t.BusCapacity)
	}
	if t.MinHeadwaySec <= 0 {
		return fmt.Errorf("min_headway_sec must be positive, got %v", t.MinHeadwaySec)
	}
	if t.MaxBusesPerRoute <= 0 {
		return fmt.Errorf("max_buses_per_route must be positive, got %d", t.MaxBusesPerRoute)
	}
	if t.PenaltyPerBus < 0 {
		return fmt.Errorf("penalty_per_bus must be non-negative, got %v", t.PenaltyPerBus)
	}
	return nil
}
