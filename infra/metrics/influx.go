package metrics

import (
	"context"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/transitflow/busalloc/core/metrics"
	"github.com/transitflow/busalloc/infra/logger"
)

// InfluxSink writes allocation runs to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB
// endpoint.
func NewInfluxSink(cfg coremetrics.Config) *InfluxSink {
	client := influxdb2.NewClientWithOptions(cfg.InfluxURL, cfg.InfluxToken, influxdb2.DefaultOptions())
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.InfluxOrg, cfg.InfluxBucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink if the health check fails, so a missing backend never blocks
// allocations.
func NewInfluxSinkWithFallback(cfg coremetrics.Config) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordAllocation writes one summary point plus one point per route.
func (s *InfluxSink) RecordAllocation(rec coremetrics.AllocationRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	summary := write.NewPointWithMeasurement("allocation_run").
		AddTag("run_id", rec.RunID).
		AddField("total_buses", rec.TotalBuses).
		AddField("cycle_seconds", rec.CycleSeconds).
		AddField("saved_buses", rec.SavedBuses).
		AddField("duration_ms", rec.Duration.Milliseconds()).
		SetTime(rec.Time)
	if err := s.writeAPI.WritePoint(ctx, summary); err != nil {
		return err
	}
	for _, r := range rec.Routes {
		p := write.NewPointWithMeasurement("route_allocation").
			AddTag("run_id", rec.RunID).
			AddTag("route_id", strconv.Itoa(r.RouteID)).
			AddTag("route_name", r.RouteName).
			AddField("buses", r.Buses).
			AddField("people", r.TotalPeople).
			AddField("probability", r.Probability).
			SetTime(rec.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordStopCount writes the latest observation for one stop.
func (s *InfluxSink) RecordStopCount(stopID string, count int, t time.Time) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("stop_count").
		AddTag("stop_id", stopID).
		AddField("count", count).
		SetTime(t)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }
