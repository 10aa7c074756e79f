package mqtt

import (
	"encoding/json"
	"fmt"

	"github.com/kilianp07/liftbank/core/events"
	"github.com/kilianp07/liftbank/core/model"
)

// callMessage is the payload of the call topic, e.g.
// {"floor": 3, "direction": "up"}.
type callMessage struct {
	Floor     int    `json:"floor"`
	Direction string `json:"direction"`
}

func encodeCall(c model.Call) ([]byte, error) {
	return json.Marshal(callMessage{Floor: c.Floor, Direction: c.Direction.String()})
}

// decodeCall parses a call payload. Range checks are left to the dispatcher,
// which knows the building.
func decodeCall(payload []byte) (model.Call, error) {
	var m callMessage
	if err := json.Unmarshal(payload, &m); err != nil {
		return model.Call{}, fmt.Errorf("decode call: %w", err)
	}
	dir, err := model.ParseDirection(m.Direction)
	if err != nil {
		return model.Call{}, err
	}
	return model.Call{Floor: m.Floor, Direction: dir}, nil
}

func encodePhase(ev events.PhaseEvent) ([]byte, error) {
	return json.Marshal(ev)
}
