package monitoring

import "time"

// Monitor reports unexpected failures to an error tracker.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Recover()
	Flush(timeout time.Duration)
}

// NopMonitor discards everything.
type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover()                                  {}
func (NopMonitor) Flush(time.Duration)                       {}

var current Monitor = NopMonitor{}

// Init sets the global monitor implementation. A nil monitor is ignored.
func Init(m Monitor) {
	if m != nil {
		current = m
	}
}

// RunTags returns the tags attached to errors raised while processing a run.
func RunTags(runID, scenario string) map[string]string {
	tags := map[string]string{}
	if runID != "" {
		tags["run_id"] = runID
	}
	if scenario != "" {
		tags["scenario"] = scenario
	}
	return tags
}

// CaptureException records the error with optional tags.
func CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	current.CaptureException(err, tags)
}

// Recover reports a panic and re-panics. It must be deferred.
func Recover() { current.Recover() }

// Flush waits for buffered events to be sent.
func Flush(d time.Duration) { current.Flush(d) }
