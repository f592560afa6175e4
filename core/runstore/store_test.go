package runstore

import (
	"context"
	"testing"
	"time"

	"github.com/kilianp07/cevcharge/core/charging"
	"github.com/kilianp07/cevcharge/core/model"
)

func sampleRun(id, scenario, vehicle string, at time.Time) Run {
	return Run{
		ID:        id,
		Scenario:  scenario,
		CreatedAt: at,
		Totals:    charging.Totals{EnergyKWh: 10},
		Ledger:    []model.LedgerEntry{{Location: "n1", Vehicle: vehicle, Slot: 3, EnergyKWh: 10}},
	}
}

func TestMemoryStore_Query(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, r := range []Run{
		sampleRun("r2", "4MCS", "e2", base.Add(2*time.Hour)),
		sampleRun("r1", "4MCS", "e1", base.Add(time.Hour)),
		sampleRun("r3", "1MCS", "e1", base.Add(3*time.Hour)),
	} {
		if err := s.Append(ctx, r); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	all, err := s.Query(ctx, Query{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 || all[0].ID != "r1" || all[2].ID != "r3" {
		t.Fatalf("unexpected order: %v", ids(all))
	}

	byScenario, _ := s.Query(ctx, Query{Scenario: "4MCS"})
	if len(byScenario) != 2 {
		t.Fatalf("expected 2 runs, got %v", ids(byScenario))
	}
	byVehicle, _ := s.Query(ctx, Query{Vehicle: "e1"})
	if len(byVehicle) != 2 || byVehicle[0].ID != "r1" {
		t.Fatalf("unexpected vehicle filter: %v", ids(byVehicle))
	}
	since, _ := s.Query(ctx, Query{Since: base.Add(90 * time.Minute), Until: base.Add(150 * time.Minute)})
	if len(since) != 1 || since[0].ID != "r2" {
		t.Fatalf("unexpected range filter: %v", ids(since))
	}
	last, _ := s.Query(ctx, Query{Limit: 1})
	if len(last) != 1 || last[0].ID != "r3" {
		t.Fatalf("unexpected limit: %v", ids(last))
	}
}

func TestNewRun(t *testing.T) {
	res := &charging.Result{
		Params:     model.DefaultParameters(40),
		Totals:     charging.Totals{EnergyKWh: 5, UnmetKWh: 5},
		Shortfalls: []charging.Shortfall{{Key: model.VehicleKey{Location: "n1", Vehicle: "e9"}, UnmetKWh: 5}},
	}
	r := NewRun("id", "s", time.Now(), res, charging.PowerProfile{PeakKW: 40, PeakSlot: 7})
	if r.Params.SlotMinutes != 15 || r.Params.Horizon != 96 || r.PeakSlot != 7 {
		t.Fatalf("unexpected run %+v", r)
	}
	if !r.HasVehicle("e9") || r.HasVehicle("e1") {
		t.Fatal("vehicle lookup should include shortfalls only")
	}
}

func ids(runs []Run) []string {
	out := make([]string, len(runs))
	for i, r := range runs {
		out[i] = r.ID
	}
	return out
}
