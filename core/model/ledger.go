package model

// LedgerEntry records the charging of one vehicle during one slot.
type LedgerEntry struct {
	Location        string  `json:"location"`
	Vehicle         string  `json:"vehicle"`
	Slot            int     `json:"slot"`
	PowerKW         float64 `json:"power_kw"`
	EnergyKWh       float64 `json:"energy_kwh"`
	Price           float64 `json:"price"`
	CO2Factor       float64 `json:"co2_factor"`
	ElectricityCost float64 `json:"electricity_cost"`
	CO2Cost         float64 `json:"co2_cost"`
}

// Key returns the vehicle the entry belongs to.
func (e LedgerEntry) Key() VehicleKey {
	return VehicleKey{Location: e.Location, Vehicle: e.Vehicle}
}

// TotalCost is the electricity cost plus the emissions cost.
func (e LedgerEntry) TotalCost() float64 { return e.ElectricityCost + e.CO2Cost }
