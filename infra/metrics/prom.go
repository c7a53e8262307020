package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/transitflow/busalloc/core/metrics"
)

// PromSink records allocation runs in Prometheus metrics.
type PromSink struct {
	runs       prometheus.Counter
	savedBuses prometheus.Gauge
	routeBuses *prometheus.GaugeVec
	demand     *prometheus.GaugeVec
	stopCounts *prometheus.GaugeVec
	duration   prometheus.Histogram
}

// NewPromSink registers allocation metrics on the default Prometheus
// registerer. The Prometheus server should be started separately using
// cfg.PrometheusAddr.
func NewPromSink(cfg coremetrics.Config) (*PromSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "allocation_runs_total",
		Help: "Total number of completed allocation runs",
	})
	saved := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "allocation_saved_buses",
		Help: "Fleet capacity left unused by the last allocation run",
	})
	routeBuses := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "allocation_route_buses",
		Help: "Buses allocated to each route by the last run",
	}, []string{"route_id", "route_name"})
	demand := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "allocation_route_demand_people",
		Help: "Aggregated passenger demand per route in the last run",
	}, []string{"route_id", "route_name"})
	stopCounts := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "stop_passenger_count",
		Help: "Latest passenger count reported per stop",
	}, []string{"stop_id"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "allocation_duration_seconds",
		Help:    "Wall time of one allocation run",
		Buckets: prometheus.DefBuckets,
	})

	s := &PromSink{runs: runs, savedBuses: saved, routeBuses: routeBuses, demand: demand, stopCounts: stopCounts, duration: duration}
	for _, c := range []prometheus.Collector{runs, saved, routeBuses, demand, stopCounts, duration} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}
	return s, nil
}

// RecordAllocation updates the run counter and per-route gauges.
func (s *PromSink) RecordAllocation(rec coremetrics.AllocationRecord) error {
	s.runs.Inc()
	s.savedBuses.Set(float64(rec.SavedBuses))
	s.duration.Observe(rec.Duration.Seconds())
	for _, r := range rec.Routes {
		id := strconv.Itoa(r.RouteID)
		s.routeBuses.WithLabelValues(id, r.RouteName).Set(float64(r.Buses))
		s.demand.WithLabelValues(id, r.RouteName).Set(r.TotalPeople)
	}
	return nil
}

// RecordStopCount sets the per-stop demand gauge.
func (s *PromSink) RecordStopCount(stopID string, count int, _ time.Time) error {
	s.stopCounts.WithLabelValues(stopID).Set(float64(count))
	return nil
}
