package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/cevcharge/core/metrics"
)

// PromSink exposes allocation runs as Prometheus metrics.
type PromSink struct {
	energy     *prometheus.GaugeVec
	elecCost   *prometheus.GaugeVec
	co2Cost    *prometheus.GaugeVec
	unmet      *prometheus.GaugeVec
	peak       *prometheus.GaugeVec
	slotPower  *prometheus.GaugeVec
	entries    *prometheus.CounterVec
	publishes  *prometheus.CounterVec
	pubLatency prometheus.Histogram
}

// NewPromSink registers the metrics on the default Prometheus registerer.
// The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers the metrics on reg. A nil registerer
// defaults to the global one.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	scenario := []string{"scenario"}
	s := &PromSink{
		energy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "charging_energy_kwh",
			Help: "Energy drawn from the grid by the last run",
		}, scenario),
		elecCost: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "charging_electricity_cost",
			Help: "Electricity cost of the last run",
		}, scenario),
		co2Cost: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "charging_co2_cost",
			Help: "Emissions cost of the last run",
		}, scenario),
		unmet: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "charging_unmet_energy_kwh",
			Help: "Energy left unscheduled at the end of the horizon",
		}, scenario),
		peak: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "charging_peak_power_kw",
			Help: "Peak aggregated charging power of the last run",
		}, scenario),
		slotPower: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "charging_slot_power_kw",
			Help: "Aggregated charging power per slot of the last run",
		}, []string{"scenario", "slot"}),
		entries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "charging_ledger_entries_total",
			Help: "Number of ledger entries produced",
		}, []string{"scenario", "location"}),
		publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "charging_schedule_publish_total",
			Help: "Charging schedules sent to the field",
		}, []string{"result"}),
		pubLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "charging_schedule_publish_seconds",
			Help:    "Time spent publishing a schedule",
			Buckets: prometheus.DefBuckets,
		}),
	}
	var err error
	if s.energy, err = register(reg, s.energy); err != nil {
		return nil, err
	}
	if s.elecCost, err = register(reg, s.elecCost); err != nil {
		return nil, err
	}
	if s.co2Cost, err = register(reg, s.co2Cost); err != nil {
		return nil, err
	}
	if s.unmet, err = register(reg, s.unmet); err != nil {
		return nil, err
	}
	if s.peak, err = register(reg, s.peak); err != nil {
		return nil, err
	}
	if s.slotPower, err = register(reg, s.slotPower); err != nil {
		return nil, err
	}
	if s.entries, err = register(reg, s.entries); err != nil {
		return nil, err
	}
	if s.publishes, err = register(reg, s.publishes); err != nil {
		return nil, err
	}
	if s.pubLatency, err = register(reg, s.pubLatency); err != nil {
		return nil, err
	}
	return s, nil
}

// register reuses an already registered collector of the same shape.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordRun sets the run gauges and counts ledger entries per location.
func (s *PromSink) RecordRun(ev coremetrics.RunEvent) error {
	if ev.Result == nil {
		return nil
	}
	t := ev.Result.Totals
	s.energy.WithLabelValues(ev.Scenario).Set(t.EnergyKWh)
	s.elecCost.WithLabelValues(ev.Scenario).Set(t.ElectricityCost)
	s.co2Cost.WithLabelValues(ev.Scenario).Set(t.CO2Cost)
	s.unmet.WithLabelValues(ev.Scenario).Set(t.UnmetKWh)
	s.peak.WithLabelValues(ev.Scenario).Set(ev.Profile.PeakKW)
	for slot, kw := range ev.Profile.PowerKW {
		s.slotPower.WithLabelValues(ev.Scenario, strconv.Itoa(slot)).Set(kw)
	}
	for _, e := range ev.Result.Ledger {
		s.entries.WithLabelValues(ev.Scenario, e.Location).Inc()
	}
	return nil
}

// RecordPublish counts publications and observes their latency.
func (s *PromSink) RecordPublish(ev coremetrics.PublishEvent) error {
	result := "ok"
	if ev.Err != "" {
		result = "error"
	}
	s.publishes.WithLabelValues(result).Inc()
	s.pubLatency.Observe(ev.Latency.Seconds())
	return nil
}

// EnergyGauge returns the energy gauge of a scenario.
func (s *PromSink) EnergyGauge(scenario string) prometheus.Gauge {
	return s.energy.WithLabelValues(scenario)
}

// UnmetGauge returns the unmet energy gauge of a scenario.
func (s *PromSink) UnmetGauge(scenario string) prometheus.Gauge {
	return s.unmet.WithLabelValues(scenario)
}
