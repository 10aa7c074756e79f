package scenarios

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/liftbank/config"
	"github.com/kilianp07/liftbank/core/model"
)

// CallDef is one hall call pressed AtMS milliseconds after the start.
type CallDef struct {
	AtMS      int    `yaml:"at_ms"`
	Floor     int    `yaml:"floor"`
	Direction string `yaml:"direction"`
}

func (c CallDef) At() time.Duration { return time.Duration(c.AtMS) * time.Millisecond }

// ToModel parses the direction. Floors are checked by the dispatcher.
func (c CallDef) ToModel() (model.Call, error) {
	dir, err := model.ParseDirection(c.Direction)
	if err != nil {
		return model.Call{}, err
	}
	return model.Call{Floor: c.Floor, Direction: dir}, nil
}

// Expected lists the outcomes a scenario asserts. Nil fields are not checked.
type Expected struct {
	Trips       *int     `yaml:"trips,omitempty"`
	Rejected    *int     `yaml:"rejected,omitempty"`
	Duplicates  *int     `yaml:"duplicates,omitempty"`
	Unserved    *int     `yaml:"unserved,omitempty"`
	MaxWaitS    *float64 `yaml:"max_wait_s,omitempty"`
	FinalFloors []int    `yaml:"final_floors,omitempty"`
}

type Scenario struct {
	Name        string                `yaml:"name"`
	Description string                `yaml:"description,omitempty"`
	Building    config.BuildingConfig `yaml:"building"`
	Timing      config.TimingConfig   `yaml:"timing"`
	Selector    string                `yaml:"selector,omitempty"`
	Calls       []CallDef             `yaml:"calls"`
	Expected    Expected              `yaml:"expected"`
}

// Load reads a scenario file, applies the building defaults and sorts the
// calls by time, keeping file order for calls pressed at the same instant.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("%s: scenario name is required", path)
	}
	sc.Building.SetDefaults()
	sc.Timing.SetDefaults()
	if err := sc.Building.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := sc.Timing.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for i, c := range sc.Calls {
		if c.AtMS < 0 {
			return nil, fmt.Errorf("%s: call %d has negative at_ms", path, i)
		}
	}
	sort.SliceStable(sc.Calls, func(i, j int) bool { return sc.Calls[i].AtMS < sc.Calls[j].AtMS })
	return &sc, nil
}
