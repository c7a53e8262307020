package allocation

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/transitflow/busalloc/core/model"
	"github.com/transitflow/busalloc/core/topology"
)

// Aggregate turns raw per-stop counts into per-route demand. Each route sums
// the counts of its constituent stops; counts at branch points are divided by
// the configured divisor before adding, so a shared stop's passengers are
// split among the routes passing through it. The fractional result is
// accumulated unrounded and only the per-route total is rounded to two
// decimals.
//
// Probability is the route's percentage share of the grand total, rounded to
// two decimals; when the grand total is zero every probability is zero. Pure
// function of (counts, topology).
func Aggregate(topo topology.Topology, counts model.StopCounts) []model.RouteDemand {
	totals := make([]float64, len(topo.Routes))
	for i, rt := range topo.Routes {
		var total float64
		for _, stop := range rt.Path {
			n := float64(counts.Get(stop))
			if div := topo.SplitDivisor(stop); div > 0 {
				total += n / float64(div)
			} else {
				total += n
			}
		}
		totals[i] = round2(total)
	}

	grand := floats.Sum(totals)
	demands := make([]model.RouteDemand, len(topo.Routes))
	for i, rt := range topo.Routes {
		p := 0.0
		if grand > 0 {
			p = round2(totals[i] / grand * 100)
		}
		demands[i] = model.RouteDemand{
			RouteID:     rt.ID,
			RouteName:   rt.Name,
			TotalPeople: totals[i],
			Probability: p,
		}
	}
	return demands
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
