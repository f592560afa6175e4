package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/cevcharge/core/charging"
	"github.com/kilianp07/cevcharge/core/model"
)

// LedgerHeader is the column layout of the charging schedule CSV.
var LedgerHeader = []string{
	"Location", "EV", "Time_Period", "Charging_Power", "Energy",
	"Electricity_Price", "CO2_Factor", "Electricity_Cost", "CO2_Cost",
}

// WriteLedgerCSV writes one row per ledger entry. Time_Period is the 1-based
// period label used by the scenario tables, i.e. slot + 1.
func WriteLedgerCSV(w io.Writer, ledger []model.LedgerEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(LedgerHeader); err != nil {
		return err
	}
	for _, e := range ledger {
		rec := []string{
			e.Location,
			e.Vehicle,
			strconv.Itoa(e.Slot + 1),
			formatFloat(e.PowerKW),
			formatFloat(e.EnergyKWh),
			formatFloat(e.Price),
			formatFloat(e.CO2Factor),
			formatFloat(e.ElectricityCost),
			formatFloat(e.CO2Cost),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Report is the JSON document written for a run.
type Report struct {
	RunID      string                     `json:"run_id,omitempty"`
	Scenario   string                     `json:"scenario,omitempty"`
	Totals     charging.Totals            `json:"totals"`
	TotalCost  float64                    `json:"total_cost"`
	Shortfalls []charging.Shortfall       `json:"shortfalls"`
	Schedules  []charging.VehicleSchedule `json:"schedules"`
	Ledger     []model.LedgerEntry        `json:"ledger"`
}

// WriteLedgerJSON writes the totals, shortfalls, schedules and ledger of res.
func WriteLedgerJSON(w io.Writer, runID, scenario string, res *charging.Result) error {
	rep := Report{
		RunID:      runID,
		Scenario:   scenario,
		Totals:     res.Totals,
		TotalCost:  res.Totals.TotalCost(),
		Shortfalls: res.Shortfalls,
		Schedules:  charging.Schedules(res.Ledger),
		Ledger:     res.Ledger,
	}
	if rep.Shortfalls == nil {
		rep.Shortfalls = []charging.Shortfall{}
	}
	if rep.Ledger == nil {
		rep.Ledger = []model.LedgerEntry{}
	}
	if rep.Schedules == nil {
		rep.Schedules = []charging.VehicleSchedule{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// WriteProfileCSV writes the aggregated power and energy of every slot.
func WriteProfileCSV(w io.Writer, p charging.PowerProfile) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Time_Period", "Power_kW", "Energy_kWh"}); err != nil {
		return err
	}
	for i := range p.PowerKW {
		rec := []string{strconv.Itoa(i + 1), formatFloat(p.PowerKW[i]), formatFloat(p.EnergyKWh[i])}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
