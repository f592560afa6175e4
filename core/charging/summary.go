package charging

import (
	"sort"

	"github.com/kilianp07/cevcharge/core/model"
)

// Summarize groups work records by location and vehicle and returns, for each
// vehicle with at least one positive load, its finish slot and the energy it
// consumed. Summaries are sorted by location then vehicle.
func Summarize(records []model.WorkRecord) []model.VehicleWorkSummary {
	idx := make(map[model.VehicleKey]int)
	var out []model.VehicleWorkSummary
	for _, r := range records {
		if !(r.LoadKWh > 0) {
			continue
		}
		k := r.Key()
		i, ok := idx[k]
		if !ok {
			idx[k] = len(out)
			out = append(out, model.VehicleWorkSummary{Key: k, FinishSlot: r.Slot, EnergyConsumedKWh: r.LoadKWh})
			continue
		}
		s := &out[i]
		if r.Slot > s.FinishSlot {
			s.FinishSlot = r.Slot
		}
		s.EnergyConsumedKWh += r.LoadKWh
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key.Less(out[j].Key) })
	return out
}
