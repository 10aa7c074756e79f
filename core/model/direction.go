package model

import (
	"fmt"
	"strings"
)

// Direction is the travel direction requested by a hall call.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection converts a case-insensitive "up"/"down" string.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Up:
		return Up, nil
	case Down:
		return Down, nil
	default:
		return "", fmt.Errorf("%w: unknown direction %q", ErrInvalidCall, s)
	}
}

// Valid reports whether d is Up or Down.
func (d Direction) Valid() bool { return d == Up || d == Down }

func (d Direction) String() string { return string(d) }
