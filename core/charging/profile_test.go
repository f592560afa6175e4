package charging

import (
	"math"
	"testing"

	"github.com/kilianp07/cevcharge/core/model"
)

func TestProfile(t *testing.T) {
	ledger := []model.LedgerEntry{
		{Slot: 1, PowerKW: 40, EnergyKWh: 10},
		{Slot: 2, PowerKW: 40, EnergyKWh: 5},
		{Slot: 2, PowerKW: 40, EnergyKWh: 10},
		{Slot: 9, PowerKW: 40, EnergyKWh: 10},
	}
	p := Profile(ledger, 4)
	if p.PeakSlot != 2 || p.PeakKW != 80 {
		t.Fatalf("unexpected peak %d/%f", p.PeakSlot, p.PeakKW)
	}
	if p.EnergyKWh[2] != 15 {
		t.Fatalf("expected 15 kWh at slot 2, got %f", p.EnergyKWh[2])
	}
	if math.Abs(p.MeanKW-30) > 1e-9 {
		t.Fatalf("expected mean 30, got %f", p.MeanKW)
	}
	if math.Abs(p.LoadFactor-0.375) > 1e-9 {
		t.Fatalf("expected load factor 0.375, got %f", p.LoadFactor)
	}
}

func TestProfileEmpty(t *testing.T) {
	p := Profile(nil, 4)
	if p.PeakSlot != -1 || p.PeakKW != 0 || p.LoadFactor != 0 {
		t.Fatalf("unexpected profile %+v", p)
	}
	if len(p.PowerKW) != 4 {
		t.Fatalf("expected 4 slots")
	}
	if q := Profile(nil, 0); q.PowerKW != nil {
		t.Fatalf("expected empty profile")
	}
}

func TestSchedules(t *testing.T) {
	ledger := []model.LedgerEntry{
		{Location: "n1", Vehicle: "e1", Slot: 3, PowerKW: 40, EnergyKWh: 10},
		{Location: "n1", Vehicle: "e1", Slot: 4, PowerKW: 40, EnergyKWh: 2},
		{Location: "n1", Vehicle: "e2", Slot: 7, PowerKW: 40, EnergyKWh: 10},
	}
	s := Schedules(ledger)
	if len(s) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(s))
	}
	if s[0].StartSlot != 3 || s[0].EndSlot != 4 || s[0].EnergyKWh != 12 {
		t.Fatalf("unexpected session %+v", s[0])
	}
	if s[1].Vehicle != "e2" || s[1].StartSlot != 7 || s[1].EndSlot != 7 {
		t.Fatalf("unexpected session %+v", s[1])
	}
}
