package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/transitflow/busalloc/api"
	"github.com/transitflow/busalloc/config"
	"github.com/transitflow/busalloc/core/allocation"
	"github.com/transitflow/busalloc/core/counts"
	"github.com/transitflow/busalloc/core/history"
	coremetrics "github.com/transitflow/busalloc/core/metrics"
	"github.com/transitflow/busalloc/infra/logger"
	"github.com/transitflow/busalloc/infra/metrics"
	"github.com/transitflow/busalloc/infra/mqtt"
	"github.com/transitflow/busalloc/internal/eventbus"
)

// Service orchestrates the allocation engine, the counts feed and the HTTP API.
type Service struct {
	Engine *allocation.Engine

	server      *http.Server
	feed        *mqtt.CountsFeed
	store       history.Store
	sink        coremetrics.MetricsSink
	bus         eventbus.EventBus
	log         logger.Logger
	promEnabled bool
	promAddr    string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	engine, err := allocation.NewEngine(cfg.Topology, cfg.Engine, logger.New("engine"))
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink coremetrics.MetricsSink
	switch len(sinks) {
	case 0:
		sink = coremetrics.NopSink{}
	case 1:
		sink = sinks[0]
	default:
		sink = metrics.NewMultiSink(sinks...)
	}

	bus := eventbus.New()

	var source counts.Source = counts.StaticSource{}
	var feed *mqtt.CountsFeed
	var pub api.ResultPublisher
	if cfg.MQTT.Enabled {
		feed, err = mqtt.NewCountsFeed(cfg.MQTT, bus, logger.New("mqtt"))
		if err != nil {
			return nil, fmt.Errorf("counts feed: %w", err)
		}
		source = feed
		pub = feed
	}

	var store history.Store
	if cfg.History.Enabled {
		switch cfg.History.Backend {
		case "sqlite":
			store, err = history.NewSQLiteStore(cfg.History.Path)
		default:
			store, err = history.NewJSONLStore(cfg.History.Path)
		}
		if err != nil {
			return nil, fmt.Errorf("history store: %w", err)
		}
	}

	srv := api.NewServer(engine, source, store, bus, pub, cfg.Server.APIToken, logger.New("api"))

	svc := &Service{
		Engine: engine,
		server: &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           srv.Router(),
			ReadHeaderTimeout: 5 * time.Second,
		},
		feed:        feed,
		store:       store,
		sink:        sink,
		bus:         bus,
		log:         logg,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promAddr:    cfg.Metrics.PrometheusAddr,
	}
	return svc, nil
}

// Run starts the service and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	go metrics.StartEventCollector(ctx, s.bus, s.sink)
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.feed != nil {
		s.feed.Close()
	}
	var err error
	if s.store != nil {
		err = s.store.Close()
	}
	if closer, ok := s.sink.(interface{ Close() }); ok {
		closer.Close()
	}
	s.bus.Close()
	return err
}
