package metrics

import coremetrics "github.com/dineshvn/metroplan/core/metrics"

// MultiSink fans generation events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordGeneration forwards the event to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordGeneration(ev coremetrics.GenerationEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordGeneration(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordPersistenceFailure forwards to sinks that count store failures.
func (m *MultiSink) RecordPersistenceFailure(planningDate string) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.PersistenceFailureRecorder); ok {
			if err := rec.RecordPersistenceFailure(planningDate); err != nil {
				return err
			}
		}
	}
	return nil
}
