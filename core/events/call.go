package events

import (
	"time"

	"github.com/kilianp07/liftbank/core/model"
)

// CallOutcome describes what the dispatcher did with a submitted call.
type CallOutcome string

const (
	CallAccepted  CallOutcome = "accepted"
	CallDuplicate CallOutcome = "duplicate"
	CallRejected  CallOutcome = "rejected"
)

// CallEvent is published for every submitted call.
type CallEvent struct {
	Call    model.Call
	Outcome CallOutcome
	Err     error
	Time    time.Time
}
