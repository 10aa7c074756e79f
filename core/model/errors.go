package model

import "errors"

var (
	// ErrInvalidConfiguration is returned when a building cannot be created.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrInvalidCall is returned for calls that can never be served.
	ErrInvalidCall = errors.New("invalid call")
	// ErrClosed is returned once the dispatcher has been closed.
	ErrClosed = errors.New("dispatcher closed")
)
