// Package clock abstracts the timer used to sequence car phases so the
// dispatcher can run on wall time in production and on virtual time in
// simulations and tests.
package clock

import "time"

// Timer is a pending callback.
type Timer interface {
	// Stop prevents the callback from running. It returns false if the
	// callback already ran or was stopped.
	Stop() bool
}

// Clock schedules callbacks. Implementations must run f exactly once after d
// unless stopped, and never synchronously from AfterFunc.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// System is the wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

func (System) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
