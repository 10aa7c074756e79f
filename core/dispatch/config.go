package dispatch

import (
	"fmt"

	"github.com/kilianp07/liftbank/core/lift"
	"github.com/kilianp07/liftbank/core/model"
)

// Config describes the building served by a Dispatcher.
type Config struct {
	Floors  int
	Lifts   int
	Timings lift.Timings
}

// Validate rejects buildings that cannot exist. Zero lifts is allowed: calls
// are then queued and never served.
func (c Config) Validate() error {
	if c.Floors < 1 {
		return fmt.Errorf("%w: floor count %d must be at least 1", model.ErrInvalidConfiguration, c.Floors)
	}
	if c.Lifts < 0 {
		return fmt.Errorf("%w: lift count %d must not be negative", model.ErrInvalidConfiguration, c.Lifts)
	}
	return c.Timings.Validate()
}
