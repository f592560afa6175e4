package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/cevcharge/core/metrics"
	"github.com/kilianp07/cevcharge/infra/logger"
)

// InfluxSink writes runs and ledger entries to an InfluxDB instance.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a NopSink
// if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.Sink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRun writes one charging_run point followed by one
// charging_ledger_entry point per ledger entry. Ledger points are stamped
// with the start of their slot on the day of the run.
func (s *InfluxSink) RecordRun(ev coremetrics.RunEvent) error {
	if ev.Result == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	t := ev.Result.Totals
	points := make([]*write.Point, 0, len(ev.Result.Ledger)+1)
	points = append(points, write.NewPointWithMeasurement("charging_run").
		AddTag("run_id", ev.RunID).
		AddTag("scenario", ev.Scenario).
		AddTag("component", "allocator").
		AddField("energy_kwh", round3(t.EnergyKWh)).
		AddField("electricity_cost", round3(t.ElectricityCost)).
		AddField("co2_cost", round3(t.CO2Cost)).
		AddField("unmet_kwh", round3(t.UnmetKWh)).
		AddField("peak_kw", round3(ev.Profile.PeakKW)).
		AddField("entries", len(ev.Result.Ledger)).
		SetTime(ev.Time))

	day := ev.Time.UTC().Truncate(24 * time.Hour)
	slot := ev.Result.Params.SlotDuration
	for _, e := range ev.Result.Ledger {
		points = append(points, write.NewPointWithMeasurement("charging_ledger_entry").
			AddTag("run_id", ev.RunID).
			AddTag("scenario", ev.Scenario).
			AddTag("location", e.Location).
			AddTag("vehicle", e.Vehicle).
			AddField("slot", e.Slot).
			AddField("power_kw", round3(e.PowerKW)).
			AddField("energy_kwh", round3(e.EnergyKWh)).
			AddField("electricity_cost", round3(e.ElectricityCost)).
			AddField("co2_cost", round3(e.CO2Cost)).
			SetTime(day.Add(time.Duration(e.Slot)*slot)))
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

// RecordPublish writes the outcome of a schedule publication.
func (s *InfluxSink) RecordPublish(ev coremetrics.PublishEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("charging_schedule_publish").
		AddTag("run_id", ev.RunID).
		AddTag("location", ev.Location).
		AddTag("vehicle", ev.Vehicle).
		AddField("command_id", ev.CommandID).
		AddField("latency_ms", round3(ev.Latency.Seconds()*1000)).
		AddField("error", ev.Err).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the HTTP client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
