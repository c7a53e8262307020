package model

// Route is a bus line: an ordered path of stop identifiers from depot to
// terminus. Routes are static configuration, loaded once and immutable for
// the lifetime of the process.
type Route struct {
	ID   int      `json:"id" validate:"required"`
	Name string   `json:"name" validate:"required"`
	Path []string `json:"path" validate:"required,min=1,dive,required"`
}

// RouteDemand carries the aggregated passenger demand for one route.
// TotalPeople is rounded to two decimals; Probability is the route's
// percentage share of total demand across all routes (0 when total demand
// is zero).
type RouteDemand struct {
	RouteID     int
	RouteName   string
	TotalPeople float64
	Probability float64
}

// RouteAllocation is the allocator's working state for one route. It is
// built per request and never persisted.
type RouteAllocation struct {
	RouteDemand
	Buses int
}
