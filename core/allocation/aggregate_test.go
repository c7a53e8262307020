package allocation

import (
	"math"
	"testing"

	"github.com/transitflow/busalloc/core/model"
	"github.com/transitflow/busalloc/core/topology"
)

func TestAggregate_BranchSplits(t *testing.T) {
	topo := topology.Default()
	counts := model.StopCounts{"B1": 10, "B3": 4, "B6": 9}

	demands := Aggregate(topo, counts)
	if len(demands) != 4 {
		t.Fatalf("expected 4 routes, got %d", len(demands))
	}
	// B3 is split by 2 and B6 by 3, so route 1 sees 10+4/2 and the
	// southern routes see 10+2+3 each.
	want := []float64{12, 15, 15, 15}
	for i, d := range demands {
		if d.TotalPeople != want[i] {
			t.Errorf("route %d total = %v, want %v", d.RouteID, d.TotalPeople, want[i])
		}
	}
}

func TestAggregate_FractionalSplit(t *testing.T) {
	topo := topology.Topology{
		Routes:       []model.Route{{ID: 1, Name: "r1", Path: []string{"S1"}}},
		BranchSplits: map[string]int{"S1": 3},
	}
	demands := Aggregate(topo, model.StopCounts{"S1": 1})
	if demands[0].TotalPeople != 0.33 {
		t.Fatalf("expected 1/3 rounded to 0.33, got %v", demands[0].TotalPeople)
	}
}

func TestAggregate_ProbabilityNormalization(t *testing.T) {
	topo := topology.Default()
	demands := Aggregate(topo, model.StopCounts{"B1": 10, "B4": 7, "B10": 3})

	var sum float64
	for _, d := range demands {
		if d.Probability < 0 {
			t.Fatalf("negative probability for route %d", d.RouteID)
		}
		sum += d.Probability
	}
	if math.Abs(sum-100) > 0.1 {
		t.Fatalf("probabilities sum to %v, want 100 within rounding", sum)
	}
}

func TestAggregate_ZeroDemand(t *testing.T) {
	topo := topology.Default()
	demands := Aggregate(topo, model.StopCounts{})
	for _, d := range demands {
		if d.TotalPeople != 0 || d.Probability != 0 {
			t.Fatalf("route %d should have zero demand and probability, got %v/%v",
				d.RouteID, d.TotalPeople, d.Probability)
		}
	}
}

func TestAggregate_MissingStopsCountZero(t *testing.T) {
	topo := topology.Default()
	full := Aggregate(topo, model.StopCounts{"B4": 5, "B5": 0})
	sparse := Aggregate(topo, model.StopCounts{"B4": 5})
	for i := range full {
		if full[i] != sparse[i] {
			t.Fatalf("absent stop must behave like zero count: %+v vs %+v", full[i], sparse[i])
		}
	}
}
