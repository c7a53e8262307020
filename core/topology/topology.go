package topology

import (
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/transitflow/busalloc/core/model"
)

// Topology declares the route network: the ordered stop sequences of every
// route and the branch points whose passengers are shared among the routes
// passing through them. It is loaded once from configuration and treated as
// immutable afterwards.
type Topology struct {
	Routes []model.Route `json:"routes" validate:"required,min=1,dive"`
	// BranchSplits maps a stop identifier to a positive divisor applied to
	// its count during aggregation, modeling passengers distributing across
	// the downstream branches.
	BranchSplits map[string]int `json:"branch_splits"`
}

var validate = validator.New()

// Validate checks the topology for structural soundness: at least one route,
// unique route identifiers, non-empty paths and positive branch divisors.
func (t Topology) Validate() error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("topology: %w", err)
	}
	seen := make(map[int]struct{}, len(t.Routes))
	for _, r := range t.Routes {
		if _, ok := seen[r.ID]; ok {
			return fmt.Errorf("topology: duplicate route id %d", r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	for stop, div := range t.BranchSplits {
		if div <= 0 {
			return fmt.Errorf("topology: branch split for %s must be positive, got %d", stop, div)
		}
	}
	return nil
}

// SplitDivisor returns the branch divisor for the stop, or 0 when the stop
// is not a branch point.
func (t Topology) SplitDivisor(stop string) int {
	return t.BranchSplits[stop]
}

// Stops returns the sorted union of all stop identifiers appearing on any
// route path.
func (t Topology) Stops() []string {
	set := make(map[string]struct{})
	for _, r := range t.Routes {
		for _, s := range r.Path {
			set[s] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Default returns the reference depot network: four routes fanning out from
// a shared trunk (B1-B3), branching at B3 and again at B6.
func Default() Topology {
	return Topology{
		Routes: []model.Route{
			{ID: 1, Name: "Route 1: Northern Express", Path: []string{"B1", "B2", "B3", "B4", "B5"}},
			{ID: 2, Name: "Route 2: Central Link", Path: []string{"B1", "B2", "B3", "B6", "B7"}},
			{ID: 3, Name: "Route 3: Long Haul South", Path: []string{"B1", "B2", "B3", "B6", "B8", "B9"}},
			{ID: 4, Name: "Route 4: Southern Edge", Path: []string{"B1", "B2", "B3", "B6", "B10"}},
		},
		BranchSplits: map[string]int{"B3": 2, "B6": 3},
	}
}
