package lift

import (
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/liftbank/core/model"
)

var (
	// ErrCarBusy is returned when a trip is assigned to a car that is not idle.
	ErrCarBusy = errors.New("car busy")
	// ErrCarIdle is returned when an idle car is advanced.
	ErrCarIdle = errors.New("car idle")
)

// Trip is the call a car is currently serving.
type Trip struct {
	ID        string
	Call      model.Call
	Origin    int
	Submitted time.Time
	Assigned  time.Time
	Arrived   time.Time
}

// Car is one elevator. It is not safe for concurrent use.
type Car struct {
	id      int
	floor   int
	phase   model.Phase
	trip    *Trip
	timings Timings
}

// NewCar returns an idle car on floor 1.
func NewCar(id int, timings Timings) *Car {
	return &Car{id: id, floor: 1, phase: model.PhaseIdle, timings: timings}
}

func (c *Car) ID() int            { return c.id }
func (c *Car) Floor() int         { return c.floor }
func (c *Car) Phase() model.Phase { return c.phase }
func (c *Car) Busy() bool         { return c.phase != model.PhaseIdle }

// Trip returns the active trip, if any.
func (c *Car) Trip() (Trip, bool) {
	if c.trip == nil {
		return Trip{}, false
	}
	return *c.trip, true
}

// Status returns a snapshot of the car.
func (c *Car) Status() model.CarStatus {
	st := model.CarStatus{ID: c.id, Floor: c.floor, Phase: c.phase, Busy: c.Busy()}
	if c.trip != nil {
		target := c.trip.Call.Floor
		dir := c.trip.Call.Direction
		st.Target = &target
		st.Direction = &dir
		st.TripID = c.trip.ID
	}
	return st
}

// Assign starts a trip towards t.Call.Floor and returns the travel duration.
func (c *Car) Assign(t Trip) (time.Duration, error) {
	if c.Busy() || c.trip != nil {
		return 0, fmt.Errorf("car %d: %w", c.id, ErrCarBusy)
	}
	t.Origin = c.floor
	c.trip = &t
	return c.moveTo(t.Call.Floor), nil
}

// Advance ends the current phase. It returns the phase just entered and how
// long the car stays in it. Reaching PhaseIdle ends the trip.
func (c *Car) Advance(now time.Time) (model.Phase, time.Duration, error) {
	switch c.phase {
	case model.PhaseMoving:
		c.floor = c.trip.Call.Floor
		c.trip.Arrived = now
		return c.phase, c.openDoors(), nil
	case model.PhaseDoorsOpening:
		return c.phase, c.dwell(), nil
	case model.PhaseDwelling:
		return c.phase, c.closeDoors(), nil
	case model.PhaseDoorsClosing:
		c.phase = model.PhaseIdle
		c.trip = nil
		return c.phase, 0, nil
	default:
		return c.phase, 0, fmt.Errorf("car %d: %w", c.id, ErrCarIdle)
	}
}

func (c *Car) moveTo(floor int) time.Duration {
	c.phase = model.PhaseMoving
	return c.timings.TravelDuration(c.floor, floor)
}

func (c *Car) openDoors() time.Duration {
	c.phase = model.PhaseDoorsOpening
	return c.timings.DoorOpen
}

func (c *Car) dwell() time.Duration {
	c.phase = model.PhaseDwelling
	return c.timings.Dwell
}

func (c *Car) closeDoors() time.Duration {
	c.phase = model.PhaseDoorsClosing
	return c.timings.DoorClose
}
