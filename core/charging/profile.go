package charging

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/cevcharge/core/model"
)

// PowerProfile is the grid power drawn by all vehicles over the horizon.
type PowerProfile struct {
	PowerKW    []float64 `json:"power_kw"`
	EnergyKWh  []float64 `json:"energy_kwh"`
	PeakKW     float64   `json:"peak_kw"`
	PeakSlot   int       `json:"peak_slot"`
	MeanKW     float64   `json:"mean_kw"`
	LoadFactor float64   `json:"load_factor"`
}

// Profile sums ledger power and energy per slot. Entries outside the horizon
// are ignored. PeakSlot is -1 when nothing is charged.
func Profile(ledger []model.LedgerEntry, horizon int) PowerProfile {
	if horizon <= 0 {
		return PowerProfile{PeakSlot: -1}
	}
	p := PowerProfile{
		PowerKW:   make([]float64, horizon),
		EnergyKWh: make([]float64, horizon),
		PeakSlot:  -1,
	}
	for _, e := range ledger {
		if e.Slot < 0 || e.Slot >= horizon {
			continue
		}
		p.PowerKW[e.Slot] += e.PowerKW
		p.EnergyKWh[e.Slot] += e.EnergyKWh
	}
	if floats.Sum(p.PowerKW) == 0 {
		return p
	}
	p.PeakSlot = floats.MaxIdx(p.PowerKW)
	p.PeakKW = p.PowerKW[p.PeakSlot]
	p.MeanKW = stat.Mean(p.PowerKW, nil)
	p.LoadFactor = p.MeanKW / p.PeakKW
	return p
}
