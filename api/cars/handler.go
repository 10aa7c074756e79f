package cars

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kilianp07/liftbank/core/model"
)

// Fleet is the part of the dispatcher exposed over HTTP.
type Fleet interface {
	Cars() []model.CarStatus
	Pending() []model.Call
	SubmitCall(floor int, dir model.Direction) error
}

// Status is the body of GET /api/cars.
type Status struct {
	Cars    []model.CarStatus `json:"cars"`
	Pending []model.Call      `json:"pending"`
}

// NewStatusHandler returns an HTTP handler exposing the car snapshot and the
// pending calls via GET /api/cars.
func NewStatusHandler(f Fleet) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		st := Status{Cars: f.Cars(), Pending: f.Pending()}
		if st.Pending == nil {
			st.Pending = []model.Call{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(st); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

type callRequest struct {
	Floor     int    `json:"floor"`
	Direction string `json:"direction"`
}

// NewCallHandler returns an HTTP handler accepting hall calls via
// POST /api/calls with a body like {"floor":4,"direction":"up"}.
// Accepted and duplicate calls both answer 202.
func NewCallHandler(f Fleet) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req callRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&req); err != nil {
			http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
			return
		}
		dir, err := model.ParseDirection(req.Direction)
		if err == nil {
			err = f.SubmitCall(req.Floor, dir)
		}
		switch {
		case err == nil:
			w.WriteHeader(http.StatusAccepted)
		case errors.Is(err, model.ErrInvalidCall):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, model.ErrClosed):
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
