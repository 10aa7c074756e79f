package events

import (
	"time"

	"github.com/kilianp07/liftbank/core/model"
)

// PhaseEvent is published each time a car changes phase. Call is the call
// being served; it is kept on the final idle event of a trip.
type PhaseEvent struct {
	CarID  int         `json:"car_id"`
	TripID string      `json:"trip_id"`
	Phase  model.Phase `json:"phase"`
	Floor  int         `json:"floor"`
	Call   model.Call  `json:"call"`
	Time   time.Time   `json:"time"`
}
