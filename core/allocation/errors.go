package allocation

import "fmt"

// InvalidFleetSizeError reports a negative fleet size. It is raised before
// any aggregation runs.
type InvalidFleetSizeError struct {
	Provided int
}

func (e InvalidFleetSizeError) Error() string {
	return fmt.Sprintf("total buses must be non-negative, got %d", e.Provided)
}

// InsufficientFleetError reports a fleet too small to grant the minimum one
// bus per route. Required is the number of routes; no partial allocation is
// attempted.
type InsufficientFleetError struct {
	Required int
	Provided int
}

func (e InsufficientFleetError) Error() string {
	return fmt.Sprintf("fleet of %d cannot cover minimum 1 bus per route, need %d", e.Provided, e.Required)
}
