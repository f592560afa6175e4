package metrics

import (
	"time"

	"github.com/kilianp07/cevcharge/core/charging"
)

// RunEvent describes one completed allocation run.
type RunEvent struct {
	RunID    string
	Scenario string
	Time     time.Time
	Result   *charging.Result
	Profile  charging.PowerProfile
}

// Sink records allocation runs for observability purposes.
type Sink interface {
	RecordRun(ev RunEvent) error
}

// PublishEvent captures the outcome of sending a vehicle's schedule.
type PublishEvent struct {
	RunID     string
	CommandID string
	Location  string
	Vehicle   string
	Latency   time.Duration
	Err       string
	Time      time.Time
}

// PublishRecorder records schedule publications.
type PublishRecorder interface {
	RecordPublish(ev PublishEvent) error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunEvent) error         { return nil }
func (NopSink) RecordPublish(PublishEvent) error { return nil }
