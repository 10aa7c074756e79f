package lift

import (
	"fmt"
	"math"
	"time"

	"github.com/kilianp07/liftbank/core/model"
)

// Timings holds the physical constants shared by the fleet.
type Timings struct {
	FloorHeight float64 // metres between two floors
	Speed       float64 // floors per second
	DoorOpen    time.Duration
	Dwell       time.Duration
	DoorClose   time.Duration
}

// DefaultTimings returns one floor per second, 1s door movements and a 1.5s dwell.
func DefaultTimings() Timings {
	return Timings{
		FloorHeight: 3,
		Speed:       1,
		DoorOpen:    time.Second,
		Dwell:       1500 * time.Millisecond,
		DoorClose:   time.Second,
	}
}

// Validate checks that travel times can be computed.
func (t Timings) Validate() error {
	if t.FloorHeight <= 0 {
		return fmt.Errorf("%w: floor height must be positive", model.ErrInvalidConfiguration)
	}
	if t.Speed <= 0 {
		return fmt.Errorf("%w: speed must be positive", model.ErrInvalidConfiguration)
	}
	if t.DoorOpen < 0 || t.Dwell < 0 || t.DoorClose < 0 {
		return fmt.Errorf("%w: phase durations must not be negative", model.ErrInvalidConfiguration)
	}
	return nil
}

// Distance returns the travel distance in metres between two floors.
func (t Timings) Distance(from, to int) float64 {
	return math.Abs(float64(to-from)) * t.FloorHeight
}

// TravelDuration is the distance divided by the car speed expressed in metres per second.
func (t Timings) TravelDuration(from, to int) time.Duration {
	secs := t.Distance(from, to) / (t.Speed * t.FloorHeight)
	return time.Duration(math.Round(secs * float64(time.Second)))
}
