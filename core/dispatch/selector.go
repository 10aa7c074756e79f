package dispatch

import (
	"github.com/kilianp07/liftbank/core/factory"
	"github.com/kilianp07/liftbank/core/model"
)

// CarSelector picks the car that should serve call among cars, which are
// ordered by ID. It returns the index of the chosen car, or false when no
// car can take the call right now. Only idle cars may be chosen.
type CarSelector interface {
	Select(cars []model.CarStatus, call model.Call) (int, bool)
}

// NearestIdle chooses the idle car closest to the call floor. Ties go to the
// lowest car ID.
type NearestIdle struct{}

func (NearestIdle) Select(cars []model.CarStatus, call model.Call) (int, bool) {
	best, bestDist := -1, 0
	for i, c := range cars {
		if c.Busy {
			continue
		}
		d := c.Floor - call.Floor
		if d < 0 {
			d = -d
		}
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, best >= 0
}

// FirstIdle chooses the idle car with the lowest ID regardless of distance.
type FirstIdle struct{}

func (FirstIdle) Select(cars []model.CarStatus, _ model.Call) (int, bool) {
	for i, c := range cars {
		if !c.Busy {
			return i, true
		}
	}
	return -1, false
}

var selectorRegistry = factory.NewRegistry[CarSelector]()

func init() {
	_ = RegisterSelector("nearest", func(map[string]any) (CarSelector, error) { return NearestIdle{}, nil })
	_ = RegisterSelector("first_idle", func(map[string]any) (CarSelector, error) { return FirstIdle{}, nil })
}

// RegisterSelector adds a selector factory identified by name.
func RegisterSelector(name string, f factory.Factory[CarSelector]) error {
	return selectorRegistry.Register(name, f)
}

// NewSelector builds the selector named by cfg.Type. An empty type yields
// NearestIdle.
func NewSelector(cfg factory.ModuleConfig) (CarSelector, error) {
	if cfg.Type == "" {
		return NearestIdle{}, nil
	}
	return selectorRegistry.Create(cfg)
}
