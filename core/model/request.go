package model

// FleetRequest describes one dispatch cycle: the depot's available fleet and
// the duration of a full rotation. A zero CycleSeconds means the cycle
// duration is unknown; the engine then falls back to the per-route hard cap
// as the only ceiling.
type FleetRequest struct {
	TotalBuses   int `json:"total_buses"`
	CycleSeconds int `json:"cycle_seconds"`
}

// RouteResult is the projected outcome for one route. FrequencySec is nil
// when the route received no buses; TotalPeople is rounded to the nearest
// integer for display while Probability keeps two decimals.
type RouteResult struct {
	RouteID      int      `json:"route_id"`
	RouteName    string   `json:"route_name"`
	TotalPeople  int      `json:"total_people"`
	Probability  float64  `json:"probability"`
	Buses        int      `json:"buses_allocated"`
	FrequencySec *float64 `json:"frequency_seconds,omitempty"`
}

// AllocationResult is the engine's complete answer for one request: the
// per-route allocations, the echoed stop counts and the fleet capacity left
// unused.
type AllocationResult struct {
	Routes     []RouteResult  `json:"routes"`
	StopCounts map[string]int `json:"stop_counts"`
	SavedBuses int            `json:"saved_buses"`
}
