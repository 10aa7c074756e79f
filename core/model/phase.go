package model

import "fmt"

// Phase is the state of a car's trip cycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseMoving
	PhaseDoorsOpening
	PhaseDwelling
	PhaseDoorsClosing
)

// String returns a human-readable representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseMoving:
		return "moving"
	case PhaseDoorsOpening:
		return "doors_opening"
	case PhaseDwelling:
		return "dwelling"
	case PhaseDoorsClosing:
		return "doors_closing"
	default:
		return "unknown"
	}
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText decodes a phase name written by MarshalText.
func (p *Phase) UnmarshalText(b []byte) error {
	for q := PhaseIdle; q <= PhaseDoorsClosing; q++ {
		if q.String() == string(b) {
			*p = q
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", b)
}

// CarStatus is a point-in-time snapshot of one car.
type CarStatus struct {
	ID        int        `json:"id"`
	Floor     int        `json:"floor"`
	Phase     Phase      `json:"phase"`
	Busy      bool       `json:"busy"`
	Target    *int       `json:"target,omitempty"`
	Direction *Direction `json:"direction,omitempty"`
	TripID    string     `json:"trip_id,omitempty"`
}

// Serves reports whether the car is busy with the given call.
func (s CarStatus) Serves(c Call) bool {
	return s.Busy && s.Target != nil && s.Direction != nil &&
		*s.Target == c.Floor && *s.Direction == c.Direction
}
