package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/cevcharge/core/charging"
	"github.com/kilianp07/cevcharge/core/factory"
	coremetrics "github.com/kilianp07/cevcharge/core/metrics"
	"github.com/kilianp07/cevcharge/core/model"
)

func sampleEvent(t *testing.T) coremetrics.RunEvent {
	t.Helper()
	p := model.DefaultParameters(40)
	records := []model.WorkRecord{
		{Location: "A", Vehicle: "EV1", Slot: 2, LoadKWh: 15},
		{Location: "B", Vehicle: "EV2", Slot: 94, LoadKWh: 30},
	}
	rates := make([]model.TimeSlotRate, p.Horizon)
	for i := range rates {
		rates[i] = model.TimeSlotRate{Slot: i, Price: 0.2, CO2Factor: 0.05}
	}
	res, err := charging.NewAllocator(p).Allocate(records, rates)
	require.NoError(t, err)
	return coremetrics.RunEvent{
		RunID:    "r1",
		Scenario: "demo",
		Time:     time.Now(),
		Result:   res,
		Profile:  charging.Profile(res.Ledger, p.Horizon),
	}
}

func TestPromSink_RecordRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	ev := sampleEvent(t)
	require.NoError(t, sink.RecordRun(ev))

	// A: 10 + 5 kWh at slots 3-4. B: 10 kWh at slot 95, 20 kWh unmet.
	assert.InDelta(t, 25.0, testutil.ToFloat64(sink.energy.WithLabelValues("demo")), 1e-9)
	assert.InDelta(t, 5.0, testutil.ToFloat64(sink.elecCost.WithLabelValues("demo")), 1e-9)
	assert.InDelta(t, 1.25, testutil.ToFloat64(sink.co2Cost.WithLabelValues("demo")), 1e-9)
	assert.InDelta(t, 20.0, testutil.ToFloat64(sink.unmet.WithLabelValues("demo")), 1e-9)
	assert.InDelta(t, 40.0, testutil.ToFloat64(sink.peak.WithLabelValues("demo")), 1e-9)
	assert.Equal(t, 2.0, testutil.ToFloat64(sink.entries.WithLabelValues("demo", "A")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.entries.WithLabelValues("demo", "B")))
	assert.Equal(t, 40.0, testutil.ToFloat64(sink.slotPower.WithLabelValues("demo", "95")))
	assert.Equal(t, 0.0, testutil.ToFloat64(sink.slotPower.WithLabelValues("demo", "0")))
}

func TestPromSink_RecordPublish(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordPublish(coremetrics.PublishEvent{Latency: time.Millisecond}))
	require.NoError(t, sink.RecordPublish(coremetrics.PublishEvent{Err: "timeout"}))

	assert.Equal(t, 1.0, testutil.ToFloat64(sink.publishes.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.publishes.WithLabelValues("error")))
	assert.Equal(t, 1, testutil.CollectAndCount(sink.pubLatency))
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	second, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, first.RecordRun(sampleEvent(t)))
	assert.Same(t, first.energy, second.energy)
	assert.InDelta(t, 25.0, testutil.ToFloat64(second.energy.WithLabelValues("demo")), 1e-9)
}

func TestPromSink_NilResult(t *testing.T) {
	sink, err := NewPromSinkWithRegistry(prometheus.NewRegistry())
	require.NoError(t, err)
	assert.NoError(t, sink.RecordRun(coremetrics.RunEvent{Scenario: "empty"}))
}

func TestNewSink_FromRegistry(t *testing.T) {
	s, err := coremetrics.NewSink([]factory.ModuleConfig{{Type: "nop"}})
	require.NoError(t, err)
	assert.IsType(t, coremetrics.NopSink{}, s)

	_, err = coremetrics.NewSink([]factory.ModuleConfig{{Type: "bogus"}})
	assert.Error(t, err)
}

func TestHandler_ExposesMetrics(t *testing.T) {
	sink, err := NewPromSink()
	require.NoError(t, err)
	require.NoError(t, sink.RecordRun(sampleEvent(t)))

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "charging_energy_kwh"))
}
