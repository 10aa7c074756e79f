package model

import "fmt"

// Call is a hall call waiting for a car. Two calls with the same floor and
// direction are the same call.
type Call struct {
	Floor     int       `json:"floor" yaml:"floor"`
	Direction Direction `json:"direction" yaml:"direction"`
}

// Validate checks the call against a building with floorCount floors.
// Up is not available on the top floor and Down not on the ground floor.
func (c Call) Validate(floorCount int) error {
	if c.Floor < 1 || c.Floor > floorCount {
		return fmt.Errorf("%w: floor %d outside [1,%d]", ErrInvalidCall, c.Floor, floorCount)
	}
	if !c.Direction.Valid() {
		return fmt.Errorf("%w: unknown direction %q", ErrInvalidCall, c.Direction)
	}
	if c.Direction == Up && c.Floor == floorCount {
		return fmt.Errorf("%w: up from top floor %d", ErrInvalidCall, c.Floor)
	}
	if c.Direction == Down && c.Floor == 1 {
		return fmt.Errorf("%w: down from ground floor", ErrInvalidCall)
	}
	return nil
}

func (c Call) String() string { return fmt.Sprintf("%d/%s", c.Floor, c.Direction) }
