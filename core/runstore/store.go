package runstore

import (
	"context"
	"time"

	"github.com/kilianp07/cevcharge/core/charging"
	"github.com/kilianp07/cevcharge/core/model"
)

// Params mirrors model.ChargingParameters with a serializable slot width.
type Params struct {
	PlugPowerKW float64 `json:"plug_power_kw"`
	Horizon     int     `json:"horizon"`
	SlotMinutes float64 `json:"slot_minutes"`
}

// ParamsFrom converts charging parameters for storage.
func ParamsFrom(p model.ChargingParameters) Params {
	return Params{PlugPowerKW: p.PlugPowerKW, Horizon: p.Horizon, SlotMinutes: p.SlotDuration.Minutes()}
}

// Run is one persisted allocation run.
type Run struct {
	ID         string               `json:"id"`
	Scenario   string               `json:"scenario"`
	CreatedAt  time.Time            `json:"created_at"`
	Params     Params               `json:"params"`
	Totals     charging.Totals      `json:"totals"`
	PeakKW     float64              `json:"peak_kw"`
	PeakSlot   int                  `json:"peak_slot"`
	Shortfalls []charging.Shortfall `json:"shortfalls,omitempty"`
	Ledger     []model.LedgerEntry  `json:"ledger"`
}

// NewRun builds a Run from an allocation result.
func NewRun(id, scenario string, at time.Time, res *charging.Result, prof charging.PowerProfile) Run {
	return Run{
		ID:         id,
		Scenario:   scenario,
		CreatedAt:  at.UTC(),
		Params:     ParamsFrom(res.Params),
		Totals:     res.Totals,
		PeakKW:     prof.PeakKW,
		PeakSlot:   prof.PeakSlot,
		Shortfalls: res.Shortfalls,
		Ledger:     res.Ledger,
	}
}

// HasVehicle reports whether the run charged the given vehicle.
func (r Run) HasVehicle(vehicle string) bool {
	for _, e := range r.Ledger {
		if e.Vehicle == vehicle {
			return true
		}
	}
	for _, s := range r.Shortfalls {
		if s.Key.Vehicle == vehicle {
			return true
		}
	}
	return false
}

// Query filters stored runs. Zero fields match everything.
type Query struct {
	Scenario string
	Vehicle  string
	Since    time.Time
	Until    time.Time
	// Limit keeps the most recent runs when positive.
	Limit int
}

// Match reports whether r satisfies the filters other than Limit.
func (q Query) Match(r Run) bool {
	if q.Scenario != "" && r.Scenario != q.Scenario {
		return false
	}
	if !q.Since.IsZero() && r.CreatedAt.Before(q.Since) {
		return false
	}
	if !q.Until.IsZero() && r.CreatedAt.After(q.Until) {
		return false
	}
	if q.Vehicle != "" && !r.HasVehicle(q.Vehicle) {
		return false
	}
	return true
}

// Store persists runs and supports querying. Query returns runs ordered by
// creation time.
type Store interface {
	Append(ctx context.Context, run Run) error
	Query(ctx context.Context, q Query) ([]Run, error)
	Close() error
}

// ApplyLimit keeps the last n runs of a chronologically sorted slice.
func ApplyLimit(runs []Run, n int) []Run {
	if n > 0 && len(runs) > n {
		return runs[len(runs)-n:]
	}
	return runs
}
