package scenarios

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/cevcharge/core/model"
)

// WorkDef is the work of one vehicle, as a map from slot to load in kWh.
type WorkDef struct {
	Location string          `yaml:"location"`
	Vehicle  string          `yaml:"vehicle"`
	Loads    map[int]float64 `yaml:"loads"`
}

// RatesDef lists per-slot prices and emission factors. A single value is
// repeated over the whole horizon.
type RatesDef struct {
	Price []float64 `yaml:"price"`
	CO2   []float64 `yaml:"co2"`
}

type Expected struct {
	Error           string  `yaml:"error,omitempty"`
	Entries         int     `yaml:"entries"`
	EnergyKWh       float64 `yaml:"energy_kwh"`
	ElectricityCost float64 `yaml:"electricity_cost"`
	CO2Cost         float64 `yaml:"co2_cost"`
	UnmetKWh        float64 `yaml:"unmet_kwh"`
	PeakKW          float64 `yaml:"peak_kw"`
	Schedules       int     `yaml:"schedules"`
}

type Scenario struct {
	Name           string    `yaml:"name"`
	Description    string    `yaml:"description,omitempty"`
	PlugPowerKW    float64   `yaml:"plug_power_kw"`
	Horizon        int       `yaml:"horizon"`
	SlotMinutes    int       `yaml:"slot_minutes"`
	RequireRecords bool      `yaml:"require_records,omitempty"`
	Rates          RatesDef  `yaml:"rates"`
	Work           []WorkDef `yaml:"work"`
	FailVehicles   []string  `yaml:"fail_vehicles,omitempty"`
	Expected       Expected  `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("%s: scenario name is required", path)
	}
	return &sc, nil
}

// Params returns the charging parameters of the scenario, defaulting to a
// 96-slot day of 15-minute slots.
func (s *Scenario) Params() model.ChargingParameters {
	p := model.DefaultParameters(s.PlugPowerKW)
	if s.Horizon != 0 {
		p.Horizon = s.Horizon
	}
	if s.SlotMinutes != 0 {
		p.SlotDuration = time.Duration(s.SlotMinutes) * time.Minute
	}
	return p
}

// Records expands the work definitions into work records.
func (s *Scenario) Records() []model.WorkRecord {
	var out []model.WorkRecord
	for _, w := range s.Work {
		for slot, load := range w.Loads {
			out = append(out, model.WorkRecord{Location: w.Location, Vehicle: w.Vehicle, Slot: slot, LoadKWh: load})
		}
	}
	return out
}

// RateTable builds the rate table. Lists shorter than the horizon are
// padded with their last value; lists longer than it are kept.
func (s *Scenario) RateTable() []model.TimeSlotRate {
	n := s.Params().Horizon
	if len(s.Rates.Price) > n {
		n = len(s.Rates.Price)
	}
	if len(s.Rates.CO2) > n {
		n = len(s.Rates.CO2)
	}
	out := make([]model.TimeSlotRate, n)
	for i := range out {
		out[i] = model.TimeSlotRate{Slot: i, Price: at(s.Rates.Price, i), CO2Factor: at(s.Rates.CO2, i)}
	}
	return out
}

func at(vals []float64, i int) float64 {
	switch {
	case len(vals) == 0:
		return 0
	case i < len(vals):
		return vals[i]
	default:
		return vals[len(vals)-1]
	}
}
