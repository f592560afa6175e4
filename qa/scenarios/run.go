package scenarios

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kilianp07/cevcharge/core/charging"
	coremetrics "github.com/kilianp07/cevcharge/core/metrics"
	coremqtt "github.com/kilianp07/cevcharge/core/mqtt"
	"github.com/kilianp07/cevcharge/infra/logger"
	"github.com/kilianp07/cevcharge/infra/metrics"
	"github.com/kilianp07/cevcharge/infra/mqtt"
)

const tolerance = 1e-6

var errorsByName = map[string]error{
	"configuration":  charging.ErrConfiguration,
	"data_alignment": charging.ErrDataAlignment,
	"empty_input":    charging.ErrEmptyInput,
}

// RunScenario allocates the scenario, records it on a Prometheus sink,
// publishes the schedules to a mock publisher and checks the expectations.
//
//nolint:gocyclo
func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}

	opts := []charging.Option{charging.WithLogger(logger.NopLogger{})}
	if sc.RequireRecords {
		opts = append(opts, charging.RequireRecords())
	}
	res, err := charging.NewAllocator(sc.Params(), opts...).Allocate(sc.Records(), sc.RateTable())
	if sc.Expected.Error != "" {
		want, ok := errorsByName[sc.Expected.Error]
		if !ok {
			t.Fatalf("unknown expected error %q", sc.Expected.Error)
		}
		if !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
		return
	}
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}

	prof := charging.Profile(res.Ledger, res.Params.Horizon)
	if err := sink.RecordRun(coremetrics.RunEvent{RunID: sc.Name, Scenario: sc.Name, Time: time.Unix(0, 0), Result: res, Profile: prof}); err != nil {
		t.Fatalf("record run: %v", err)
	}

	exp := sc.Expected
	check := func(name string, got, want float64) {
		if math.Abs(got-want) > tolerance {
			t.Errorf("%s = %v, want %v", name, got, want)
		}
	}
	if len(res.Ledger) != exp.Entries {
		t.Errorf("entries = %d, want %d", len(res.Ledger), exp.Entries)
	}
	check("energy_kwh", res.Totals.EnergyKWh, exp.EnergyKWh)
	check("electricity_cost", res.Totals.ElectricityCost, exp.ElectricityCost)
	check("co2_cost", res.Totals.CO2Cost, exp.CO2Cost)
	check("unmet_kwh", res.Totals.UnmetKWh, exp.UnmetKWh)
	check("peak_kw", prof.PeakKW, exp.PeakKW)
	check("metric energy", testutil.ToFloat64(sink.EnergyGauge(sc.Name)), exp.EnergyKWh)
	check("metric unmet", testutil.ToFloat64(sink.UnmetGauge(sc.Name)), exp.UnmetKWh)

	pub := mqtt.NewMockPublisher()
	for _, id := range sc.FailVehicles {
		pub.FailIDs[id] = true
	}
	sent := 0
	for _, s := range charging.Schedules(res.Ledger) {
		if _, err := pub.PublishSchedule(context.Background(), coremqtt.ScheduleOrder{RunID: sc.Name, Schedule: s}); err == nil {
			sent++
		}
	}
	if sent != exp.Schedules {
		t.Errorf("schedules sent = %d, want %d", sent, exp.Schedules)
	}
}
