package config

import (
	"fmt"
	"math"
	"time"

	"github.com/kilianp07/cevcharge/core/model"
)

// DefaultPlugParameter names the plug power in the scenario parameter table.
const DefaultPlugParameter = "DCH_MCS_plug"

// ChargingConfig holds the allocator settings.
type ChargingConfig struct {
	// PlugPowerKW overrides the plug power of the parameter table when positive.
	PlugPowerKW        float64 `json:"plug_power_kw"`
	PlugPowerParameter string  `json:"plug_power_parameter"`
	HorizonSlots       int     `json:"horizon_slots"`
	SlotMinutes        int     `json:"slot_minutes"`
	// RequireRecords rejects scenarios without any work record.
	RequireRecords bool `json:"require_records"`
}

// SetDefaults applies a 24h horizon at 15-minute resolution.
func (c *ChargingConfig) SetDefaults() {
	if c.PlugPowerParameter == "" {
		c.PlugPowerParameter = DefaultPlugParameter
	}
	if c.HorizonSlots == 0 {
		c.HorizonSlots = model.DefaultHorizon
	}
	if c.SlotMinutes == 0 {
		c.SlotMinutes = int(model.DefaultSlotDuration / time.Minute)
	}
}

// Validate checks the grid settings.
func (c ChargingConfig) Validate() error {
	if c.PlugPowerKW < 0 || math.IsNaN(c.PlugPowerKW) || math.IsInf(c.PlugPowerKW, 0) {
		return fmt.Errorf("plug_power_kw must be a finite non-negative number")
	}
	if c.HorizonSlots <= 0 {
		return fmt.Errorf("horizon_slots must be positive")
	}
	if c.SlotMinutes <= 0 {
		return fmt.Errorf("slot_minutes must be positive")
	}
	return nil
}

// Parameters builds allocator parameters for the given plug power.
func (c ChargingConfig) Parameters(plugPowerKW float64) model.ChargingParameters {
	return model.ChargingParameters{
		PlugPowerKW:  plugPowerKW,
		Horizon:      c.HorizonSlots,
		SlotDuration: time.Duration(c.SlotMinutes) * time.Minute,
	}
}

// ResolvePlugPower returns the configured plug power, or the value of the
// plug parameter in params when none is configured.
func (c ChargingConfig) ResolvePlugPower(params map[string]float64) (float64, error) {
	if c.PlugPowerKW > 0 {
		return c.PlugPowerKW, nil
	}
	v, ok := params[c.PlugPowerParameter]
	if !ok {
		return 0, fmt.Errorf("plug power not configured and parameter %q not found", c.PlugPowerParameter)
	}
	if !(v > 0) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("parameter %q must be a positive finite number, got %v", c.PlugPowerParameter, v)
	}
	return v, nil
}
