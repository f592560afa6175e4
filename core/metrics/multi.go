package metrics

// MultiSink fans events out to several sinks.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRun forwards the run to all sinks, returning the first error encountered.
func (m *MultiSink) RecordRun(ev RunEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordRun(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordPublish forwards publish events to the sinks that support them.
func (m *MultiSink) RecordPublish(ev PublishEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(PublishRecorder); ok {
			if err := rec.RecordPublish(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
