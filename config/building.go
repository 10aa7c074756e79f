package config

import (
	"time"

	"github.com/kilianp07/liftbank/core/dispatch"
	"github.com/kilianp07/liftbank/core/factory"
	"github.com/kilianp07/liftbank/core/lift"
)

// BuildingConfig describes the shaft and the bank of cars.
type BuildingConfig struct {
	Floors int `json:"floors" yaml:"floors"`
	Lifts  int `json:"lifts" yaml:"lifts"`
	// FloorHeightM is the distance between two floors in metres.
	FloorHeightM float64 `json:"floor_height_m" yaml:"floor_height_m"`
	// SpeedFloorsPerS is the cruising speed of every car.
	SpeedFloorsPerS float64 `json:"speed_floors_per_s" yaml:"speed_floors_per_s"`
}

// SetDefaults applies the 3 m floor and 1 floor/s speed.
func (c *BuildingConfig) SetDefaults() {
	if c.FloorHeightM == 0 {
		c.FloorHeightM = 3
	}
	if c.SpeedFloorsPerS == 0 {
		c.SpeedFloorsPerS = 1
	}
}

func (c BuildingConfig) Validate() error {
	if c.Floors < 1 {
		return invalid("building.floors must be at least 1, got %d", c.Floors)
	}
	if c.Lifts < 0 {
		return invalid("building.lifts must not be negative, got %d", c.Lifts)
	}
	if c.FloorHeightM <= 0 {
		return invalid("building.floor_height_m must be positive")
	}
	if c.SpeedFloorsPerS <= 0 {
		return invalid("building.speed_floors_per_s must be positive")
	}
	return nil
}

// TimingConfig holds the door cycle durations in milliseconds.
type TimingConfig struct {
	DoorOpenMS  int `json:"door_open_ms" yaml:"door_open_ms"`
	DwellMS     int `json:"dwell_ms" yaml:"dwell_ms"`
	DoorCloseMS int `json:"door_close_ms" yaml:"door_close_ms"`
}

// SetDefaults applies a 1 s opening, 1.5 s dwell and 1 s closing.
func (c *TimingConfig) SetDefaults() {
	if c.DoorOpenMS == 0 {
		c.DoorOpenMS = 1000
	}
	if c.DwellMS == 0 {
		c.DwellMS = 1500
	}
	if c.DoorCloseMS == 0 {
		c.DoorCloseMS = 1000
	}
}

func (c TimingConfig) Validate() error {
	if c.DoorOpenMS < 0 || c.DwellMS < 0 || c.DoorCloseMS < 0 {
		return invalid("timing durations must not be negative")
	}
	return nil
}

// DispatchConfig selects the car selection policy.
type DispatchConfig struct {
	// Selector names a registered selector ("nearest", "first_idle").
	// Empty means nearest.
	Selector factory.ModuleConfig `json:"selector" yaml:"selector"`
}

func (c DispatchConfig) Validate() error {
	if _, err := dispatch.NewSelector(c.Selector); err != nil {
		return invalid("dispatch.selector: %v", err)
	}
	return nil
}

// Timings converts the building and timing sections.
func (c Config) Timings() lift.Timings {
	return lift.Timings{
		FloorHeight: c.Building.FloorHeightM,
		Speed:       c.Building.SpeedFloorsPerS,
		DoorOpen:    time.Duration(c.Timing.DoorOpenMS) * time.Millisecond,
		Dwell:       time.Duration(c.Timing.DwellMS) * time.Millisecond,
		DoorClose:   time.Duration(c.Timing.DoorCloseMS) * time.Millisecond,
	}
}

// DispatcherConfig returns the settings used by dispatch.NewDispatcher.
func (c Config) DispatcherConfig() dispatch.Config {
	return dispatch.Config{Floors: c.Building.Floors, Lifts: c.Building.Lifts, Timings: c.Timings()}
}
