package charging

import (
	"testing"

	"github.com/kilianp07/cevcharge/core/model"
)

func TestSummarize(t *testing.T) {
	work := []model.WorkRecord{
		{Location: "n2", Vehicle: "e1", Slot: 0, LoadKWh: 3},
		{Location: "n1", Vehicle: "e1", Slot: 5, LoadKWh: 2},
		{Location: "n1", Vehicle: "e1", Slot: 2, LoadKWh: 4},
		{Location: "n1", Vehicle: "e1", Slot: 9, LoadKWh: 0},
		{Location: "n1", Vehicle: "e2", Slot: 1, LoadKWh: 0},
		{Location: "n2", Vehicle: "e1", Slot: 7, LoadKWh: -1},
	}
	got := Summarize(work)
	if len(got) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(got))
	}
	if got[0].Key != (model.VehicleKey{Location: "n1", Vehicle: "e1"}) || got[0].FinishSlot != 5 || got[0].EnergyConsumedKWh != 6 {
		t.Fatalf("unexpected first summary %+v", got[0])
	}
	if got[1].Key != (model.VehicleKey{Location: "n2", Vehicle: "e1"}) || got[1].FinishSlot != 0 || got[1].EnergyConsumedKWh != 3 {
		t.Fatalf("unexpected second summary %+v", got[1])
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if got := Summarize(nil); len(got) != 0 {
		t.Fatalf("expected no summary, got %v", got)
	}
}
