package model

// TimeSlotRate holds the electricity price and emission factor of one slot.
type TimeSlotRate struct {
	Slot      int
	Price     float64 // currency per kWh
	CO2Factor float64 // emissions cost per kWh
}
