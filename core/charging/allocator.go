package charging

import (
	"fmt"
	"math"

	"github.com/kilianp07/cevcharge/core/logger"
	"github.com/kilianp07/cevcharge/core/model"
)

// Totals aggregates a ledger.
type Totals struct {
	EnergyKWh       float64 `json:"energy_kwh"`
	ElectricityCost float64 `json:"electricity_cost"`
	CO2Cost         float64 `json:"co2_cost"`
	// UnmetKWh is the energy that could not be scheduled before the end of
	// the horizon. It is not part of EnergyKWh.
	UnmetKWh float64 `json:"unmet_kwh"`
}

// TotalCost returns the electricity cost plus the emissions cost.
func (t Totals) TotalCost() float64 { return t.ElectricityCost + t.CO2Cost }

// Shortfall reports a vehicle whose energy need did not fit in the horizon.
type Shortfall struct {
	Key          model.VehicleKey `json:"key"`
	RequiredKWh  float64          `json:"required_kwh"`
	DeliveredKWh float64          `json:"delivered_kwh"`
	UnmetKWh     float64          `json:"unmet_kwh"`
}

// Result is the outcome of one allocation run.
type Result struct {
	Params     model.ChargingParameters   `json:"-"`
	Ledger     []model.LedgerEntry        `json:"ledger"`
	Summaries  []model.VehicleWorkSummary `json:"-"`
	Shortfalls []Shortfall                `json:"shortfalls"`
	Totals     Totals                     `json:"totals"`
}

// Delivered returns the energy charged per vehicle.
func (r *Result) Delivered() map[model.VehicleKey]float64 {
	out := make(map[model.VehicleKey]float64, len(r.Summaries))
	for _, e := range r.Ledger {
		out[e.Key()] += e.EnergyKWh
	}
	return out
}

// Allocator schedules charging right after each vehicle's work shift.
type Allocator struct {
	params         model.ChargingParameters
	requireRecords bool
	log            logger.Logger
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithLogger sets the logger used to report runs and shortfalls.
func WithLogger(l logger.Logger) Option {
	return func(a *Allocator) {
		if l != nil {
			a.log = l
		}
	}
}

// RequireRecords makes Allocate fail with ErrEmptyInput when no work record
// is supplied instead of returning an empty result.
func RequireRecords() Option {
	return func(a *Allocator) { a.requireRecords = true }
}

// NewAllocator returns an allocator for the given parameters.
func NewAllocator(p model.ChargingParameters, opts ...Option) *Allocator {
	a := &Allocator{params: p, log: nopLogger{}}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Params returns the parameters used by the allocator.
func (a *Allocator) Params() model.ChargingParameters { return a.params }

// Allocate validates the inputs and builds the charging ledger. Inputs are
// left untouched; a validation failure returns no partial result.
func (a *Allocator) Allocate(records []model.WorkRecord, rates []model.TimeSlotRate) (*Result, error) {
	if err := a.validate(records, rates); err != nil {
		return nil, err
	}
	p := a.params
	perSlot := p.EnergyPerSlot()
	res := &Result{Params: p, Summaries: Summarize(records)}

	for _, s := range res.Summaries {
		remaining := s.EnergyConsumedKWh
		for t := s.FinishSlot + 1; t < p.Horizon && remaining > 0; t++ {
			energy := math.Min(perSlot, remaining)
			rate := rates[t]
			entry := model.LedgerEntry{
				Location:        s.Key.Location,
				Vehicle:         s.Key.Vehicle,
				Slot:            t,
				PowerKW:         p.PlugPowerKW,
				EnergyKWh:       energy,
				Price:           rate.Price,
				CO2Factor:       rate.CO2Factor,
				ElectricityCost: energy * rate.Price,
				CO2Cost:         energy * rate.CO2Factor,
			}
			res.Ledger = append(res.Ledger, entry)
			res.Totals.EnergyKWh += entry.EnergyKWh
			res.Totals.ElectricityCost += entry.ElectricityCost
			res.Totals.CO2Cost += entry.CO2Cost
			remaining -= energy
		}
		if remaining > 0 {
			sf := Shortfall{
				Key:          s.Key,
				RequiredKWh:  s.EnergyConsumedKWh,
				DeliveredKWh: s.EnergyConsumedKWh - remaining,
				UnmetKWh:     remaining,
			}
			res.Shortfalls = append(res.Shortfalls, sf)
			res.Totals.UnmetKWh += remaining
			a.log.Warnf("vehicle %s finished work at slot %d, %.3f kWh left unscheduled", s.Key, s.FinishSlot, remaining)
		}
	}

	a.log.Debugw("charging allocated", map[string]any{
		"vehicles":         len(res.Summaries),
		"entries":          len(res.Ledger),
		"energy_kwh":       res.Totals.EnergyKWh,
		"electricity_cost": res.Totals.ElectricityCost,
		"co2_cost":         res.Totals.CO2Cost,
		"unmet_kwh":        res.Totals.UnmetKWh,
	})
	return res, nil
}

func (a *Allocator) validate(records []model.WorkRecord, rates []model.TimeSlotRate) error {
	p := a.params
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	if len(records) == 0 && a.requireRecords {
		return ErrEmptyInput
	}
	if len(rates) < p.Horizon {
		return fmt.Errorf("%w: %d rate slots for a horizon of %d", ErrDataAlignment, len(rates), p.Horizon)
	}
	for i, r := range rates {
		if r.Slot != i {
			return fmt.Errorf("%w: rate at position %d is indexed %d", ErrDataAlignment, i, r.Slot)
		}
		if !finite(r.Price) || !finite(r.CO2Factor) {
			return fmt.Errorf("%w: rate at slot %d is not finite", ErrDataAlignment, i)
		}
	}
	for _, r := range records {
		if r.Slot < 0 || r.Slot >= len(rates) {
			return fmt.Errorf("%w: work slot %d of %s outside rate table [0,%d)", ErrDataAlignment, r.Slot, r.Key(), len(rates))
		}
		if !finite(r.LoadKWh) {
			return fmt.Errorf("%w: load %v of %s at slot %d", ErrDataAlignment, r.LoadKWh, r.Key(), r.Slot)
		}
	}
	return nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Infow(string, map[string]any)  {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
