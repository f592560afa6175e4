package charging

import "github.com/kilianp07/cevcharge/core/model"

// VehicleSchedule is the contiguous charging session of one vehicle.
type VehicleSchedule struct {
	Location  string  `json:"location"`
	Vehicle   string  `json:"vehicle"`
	StartSlot int     `json:"start_slot"`
	EndSlot   int     `json:"end_slot"` // inclusive
	PowerKW   float64 `json:"power_kw"`
	EnergyKWh float64 `json:"energy_kwh"`
}

// Schedules collapses the ledger into one session per vehicle, in ledger order.
func Schedules(ledger []model.LedgerEntry) []VehicleSchedule {
	var out []VehicleSchedule
	idx := make(map[model.VehicleKey]int)
	for _, e := range ledger {
		k := e.Key()
		i, ok := idx[k]
		if !ok {
			idx[k] = len(out)
			out = append(out, VehicleSchedule{
				Location:  e.Location,
				Vehicle:   e.Vehicle,
				StartSlot: e.Slot,
				EndSlot:   e.Slot,
				PowerKW:   e.PowerKW,
				EnergyKWh: e.EnergyKWh,
			})
			continue
		}
		s := &out[i]
		if e.Slot < s.StartSlot {
			s.StartSlot = e.Slot
		}
		if e.Slot > s.EndSlot {
			s.EndSlot = e.Slot
		}
		s.EnergyKWh += e.EnergyKWh
	}
	return out
}
