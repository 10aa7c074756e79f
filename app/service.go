package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/kilianp07/liftbank/api"
	"github.com/kilianp07/liftbank/config"
	"github.com/kilianp07/liftbank/core/clock"
	"github.com/kilianp07/liftbank/core/dispatch"
	coremetrics "github.com/kilianp07/liftbank/core/metrics"
	"github.com/kilianp07/liftbank/core/model"
	coremon "github.com/kilianp07/liftbank/core/monitoring"
	"github.com/kilianp07/liftbank/core/triplog"
	"github.com/kilianp07/liftbank/infra/logger"
	"github.com/kilianp07/liftbank/infra/metrics"
	"github.com/kilianp07/liftbank/infra/monitoring"
	"github.com/kilianp07/liftbank/infra/mqtt"
	"github.com/kilianp07/liftbank/internal/eventbus"
)

// Service orchestrates the dispatcher, its metrics sinks, the MQTT bridge and
// the HTTP API.
type Service struct {
	Dispatcher *dispatch.Dispatcher

	cfg   *config.Config
	sink  coremetrics.MetricsSink
	bus   *eventbus.Bus
	mqtt  *mqtt.PahoClient
	trips triplog.Store
	log   logger.Logger
}

// New creates a Service from the configuration. The MQTT bridge is only
// started when a broker is configured, the HTTP API only when api.addr is set.
func New(cfg *config.Config) (*Service, error) {
	if err := logger.Configure(logger.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format}); err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	sel, err := dispatch.NewSelector(cfg.Dispatch.Selector)
	if err != nil {
		return nil, fmt.Errorf("selector: %w", err)
	}
	bus := eventbus.New()
	d, err := dispatch.NewDispatcher(cfg.DispatcherConfig(), sel, clock.System{}, sink, bus, logger.New("dispatcher"))
	if err != nil {
		return nil, fmt.Errorf("dispatcher: %w", err)
	}
	svc := &Service{Dispatcher: d, cfg: cfg, sink: sink, bus: bus, log: logg}

	if cfg.MQTTEnabled() {
		client, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.mqtt = client
	}
	if cfg.API.TripLog != "" {
		store, err := triplog.Open(cfg.API.TripLog, triplog.DefaultOptions())
		if err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("trip log: %w", err)
		}
		svc.trips = store
	}
	return svc, nil
}

// Run serves calls until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	var calls <-chan model.Call
	if s.mqtt != nil {
		calls = s.mqtt.Calls()
		go s.mqtt.Forward(ctx, s.bus.Subscribe())
		s.log.Infof("listening for calls on %s", s.mqtt.CallTopic())
	}
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr, nil); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if addr := s.cfg.API.Addr; addr != "" {
		mux := api.NewMux(api.Options{Fleet: s.Dispatcher, Trips: s.trips, Token: s.cfg.API.Token})
		go func() {
			if err := api.Serve(ctx, addr, mux); err != nil {
				s.log.Errorf("api server: %v", err)
			}
		}()
	}
	s.log.Infof("%s started", s.Dispatcher)
	s.Dispatcher.Run(ctx, calls)
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	var errs []error
	if err := s.Dispatcher.Close(); err != nil {
		errs = append(errs, err)
	}
	if s.mqtt != nil {
		s.mqtt.Disconnect()
	}
	if s.trips != nil {
		if err := s.trips.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if c, ok := s.sink.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	coremon.Flush(2 * time.Second)
	return errors.Join(errs...)
}
