package model

import (
	"fmt"
	"math"
	"time"
)

const (
	// DefaultHorizon is one day at 15-minute resolution.
	DefaultHorizon = 96
	// DefaultSlotDuration is the width of a slot in the scenario datasets.
	DefaultSlotDuration = 15 * time.Minute
)

// ChargingParameters are the scalars shared by every vehicle of a run.
type ChargingParameters struct {
	PlugPowerKW  float64
	Horizon      int
	SlotDuration time.Duration
}

// DefaultParameters returns parameters for a 24h day at 15-minute resolution.
func DefaultParameters(plugPowerKW float64) ChargingParameters {
	return ChargingParameters{
		PlugPowerKW:  plugPowerKW,
		Horizon:      DefaultHorizon,
		SlotDuration: DefaultSlotDuration,
	}
}

// SlotHours returns the slot duration in hours.
func (p ChargingParameters) SlotHours() float64 { return p.SlotDuration.Hours() }

// EnergyPerSlot is the energy a vehicle can draw during one full slot.
func (p ChargingParameters) EnergyPerSlot() float64 {
	return p.PlugPowerKW * p.SlotHours()
}

// Validate checks that the parameters describe a usable grid.
func (p ChargingParameters) Validate() error {
	if !(p.PlugPowerKW > 0) || math.IsInf(p.PlugPowerKW, 0) {
		return fmt.Errorf("plug power must be positive and finite, got %v", p.PlugPowerKW)
	}
	if p.Horizon <= 0 {
		return fmt.Errorf("horizon must be positive, got %d", p.Horizon)
	}
	if p.SlotDuration <= 0 {
		return fmt.Errorf("slot duration must be positive, got %v", p.SlotDuration)
	}
	return nil
}
