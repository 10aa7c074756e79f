package metrics

import (
	"time"

	"github.com/kilianp07/liftbank/core/events"
	"github.com/kilianp07/liftbank/core/model"
)

// TripRecord describes one completed trip.
type TripRecord struct {
	TripID    string     `json:"trip_id"`
	CarID     int        `json:"car_id"`
	Call      model.Call `json:"call"`
	Origin    int        `json:"origin"`
	Distance  float64    `json:"distance_m"`
	Submitted time.Time  `json:"submitted"`
	Assigned  time.Time  `json:"assigned"`
	Arrived   time.Time  `json:"arrived"`
	Completed time.Time  `json:"completed"`
}

// WaitTime is the delay between the call and the car reaching the floor.
func (r TripRecord) WaitTime() time.Duration { return r.Arrived.Sub(r.Submitted) }

// QueueTime is the delay between the call and its assignment to a car.
func (r TripRecord) QueueTime() time.Duration { return r.Assigned.Sub(r.Submitted) }

// TravelTime is the time spent moving.
func (r TripRecord) TravelTime() time.Duration { return r.Arrived.Sub(r.Assigned) }

// MetricsSink records completed trips.
type MetricsSink interface {
	RecordTrip(rec TripRecord) error
}

// CallRecord captures what happened to a submitted call.
type CallRecord struct {
	Call    model.Call
	Outcome events.CallOutcome
	Time    time.Time
}

// CallRecorder records call outcomes.
type CallRecorder interface {
	RecordCall(rec CallRecord) error
}

// FleetState is the occupancy of the bank after a change.
type FleetState struct {
	Busy   int
	Idle   int
	Queued int
	Time   time.Time
}

// FleetRecorder records fleet occupancy snapshots.
type FleetRecorder interface {
	RecordFleetState(st FleetState) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordTrip(TripRecord) error       { return nil }
func (NopSink) RecordCall(CallRecord) error       { return nil }
func (NopSink) RecordFleetState(FleetState) error { return nil }
