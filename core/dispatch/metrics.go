package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	callsTotal       *prometheus.CounterVec
	assignmentsTotal *prometheus.CounterVec
	queueDepth       prometheus.Gauge
	carsBusy         prometheus.Gauge
	staleTimers      prometheus.Counter
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, *prometheus.CounterVec, prometheus.Gauge, prometheus.Gauge, prometheus.Counter) {
	calls := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "liftbank_calls_total",
			Help: "Hall calls submitted, by outcome",
		},
		[]string{"outcome"},
	)
	assign := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "liftbank_assignments_total",
			Help: "Calls assigned to a car",
		},
		[]string{"car"},
	)
	depth := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "liftbank_queue_depth",
			Help: "Calls waiting for a car",
		},
	)
	busy := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "liftbank_cars_busy",
			Help: "Cars currently running a trip",
		},
	)
	stale := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "liftbank_stale_timers_total",
			Help: "Phase timers ignored because the car had moved on",
		},
	)
	return calls, assign, depth, busy, stale
}

func init() {
	callsTotal, assignmentsTotal, queueDepth, carsBusy, staleTimers = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers dispatcher metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(callsTotal, assignmentsTotal, queueDepth, carsBusy, staleTimers)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	callsTotal, assignmentsTotal, queueDepth, carsBusy, staleTimers = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
