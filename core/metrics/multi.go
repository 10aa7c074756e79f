package metrics

import (
	"errors"
	"io"
)

// MultiSink fans records out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordTrip forwards the record to all sinks and joins their errors.
func (m *MultiSink) RecordTrip(rec TripRecord) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordTrip(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordCall forwards call outcomes to sinks that support them.
func (m *MultiSink) RecordCall(rec CallRecord) error {
	var errs []error
	for _, s := range m.Sinks {
		if cr, ok := s.(CallRecorder); ok {
			if err := cr.RecordCall(rec); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// RecordFleetState forwards occupancy snapshots to sinks that support them.
func (m *MultiSink) RecordFleetState(st FleetState) error {
	var errs []error
	for _, s := range m.Sinks {
		if fr, ok := s.(FleetRecorder); ok {
			if err := fr.RecordFleetState(st); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink implementing io.Closer.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.Sinks {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
