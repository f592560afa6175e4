package model

// WorkRecord is the energy a vehicle draws for its work at a location during
// one slot of the day.
type WorkRecord struct {
	Location string
	Vehicle  string
	Slot     int
	LoadKWh  float64
}

// Key returns the grouping key of the record.
func (w WorkRecord) Key() VehicleKey {
	return VehicleKey{Location: w.Location, Vehicle: w.Vehicle}
}

// VehicleKey identifies a vehicle working at a given location.
type VehicleKey struct {
	Location string
	Vehicle  string
}

// Less orders keys by location, then vehicle.
func (k VehicleKey) Less(o VehicleKey) bool {
	if k.Location != o.Location {
		return k.Location < o.Location
	}
	return k.Vehicle < o.Vehicle
}

func (k VehicleKey) String() string { return k.Location + "/" + k.Vehicle }

// VehicleWorkSummary is derived from the work records of one vehicle.
// It only exists when at least one slot carries a positive load.
type VehicleWorkSummary struct {
	Key               VehicleKey
	FinishSlot        int     // last slot with load > 0
	EnergyConsumedKWh float64 // sum of positive loads
}
