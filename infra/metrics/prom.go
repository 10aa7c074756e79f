package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/liftbank/core/metrics"
)

// PromSink records trip timings and fleet occupancy in Prometheus metrics.
type PromSink struct {
	wait     *prometheus.HistogramVec
	travel   *prometheus.HistogramVec
	distance *prometheus.CounterVec
	fleet    *prometheus.GaugeVec
}

// NewPromSink registers trip metrics on the default Prometheus registerer.
// The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	wait := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "liftbank_trip_wait_seconds",
		Help:    "Time between a hall call and the car reaching the floor",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"car"})
	travel := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "liftbank_trip_travel_seconds",
		Help:    "Time a car spent moving to the call floor",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
	}, []string{"car"})
	distance := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "liftbank_trip_distance_meters_total",
		Help: "Distance travelled by each car",
	}, []string{"car"})
	fleet := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "liftbank_fleet_state",
		Help: "Cars busy, cars idle and calls queued after the last change",
	}, []string{"state"})

	var err error
	if wait, err = register(reg, wait); err != nil {
		return nil, err
	}
	if travel, err = register(reg, travel); err != nil {
		return nil, err
	}
	if distance, err = register(reg, distance); err != nil {
		return nil, err
	}
	if fleet, err = register(reg, fleet); err != nil {
		return nil, err
	}
	return &PromSink{wait: wait, travel: travel, distance: distance, fleet: fleet}, nil
}

// register returns the already registered collector when c was registered
// by an earlier sink.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordTrip observes the wait and travel time of the trip.
func (s *PromSink) RecordTrip(rec coremetrics.TripRecord) error {
	car := strconv.Itoa(rec.CarID)
	s.wait.WithLabelValues(car).Observe(rec.WaitTime().Seconds())
	s.travel.WithLabelValues(car).Observe(rec.TravelTime().Seconds())
	s.distance.WithLabelValues(car).Add(rec.Distance)
	return nil
}

// RecordFleetState sets the occupancy gauges.
func (s *PromSink) RecordFleetState(st coremetrics.FleetState) error {
	s.fleet.WithLabelValues("busy").Set(float64(st.Busy))
	s.fleet.WithLabelValues("idle").Set(float64(st.Idle))
	s.fleet.WithLabelValues("queued").Set(float64(st.Queued))
	return nil
}
