package metrics

import (
	"errors"
	"testing"
	"time"
)

type recordSink struct {
	trips  int
	calls  int
	fleets int
	err    error
}

func (r *recordSink) RecordTrip(TripRecord) error {
	r.trips++
	return r.err
}

func (r *recordSink) RecordCall(CallRecord) error {
	r.calls++
	return nil
}

func (r *recordSink) RecordFleetState(FleetState) error {
	r.fleets++
	return nil
}

type tripOnly struct{ n int }

func (s *tripOnly) RecordTrip(TripRecord) error { s.n++; return nil }

// TestMultiSink ensures records are forwarded to all sinks.
func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &recordSink{}
	s3 := &tripOnly{}
	m := NewMultiSink(s1, s2, s3)
	if err := m.RecordTrip(TripRecord{}); err != nil {
		t.Fatalf("record trip: %v", err)
	}
	if err := m.RecordCall(CallRecord{}); err != nil {
		t.Fatalf("record call: %v", err)
	}
	if err := m.RecordFleetState(FleetState{}); err != nil {
		t.Fatalf("record fleet: %v", err)
	}
	if s1.trips != 1 || s2.trips != 1 || s3.n != 1 {
		t.Fatalf("trips not forwarded")
	}
	if s1.calls != 1 || s2.fleets != 1 {
		t.Fatalf("optional records not forwarded")
	}
}

func TestMultiSinkKeepsGoingOnError(t *testing.T) {
	boom := errors.New("boom")
	s1 := &recordSink{err: boom}
	s2 := &recordSink{}
	err := NewMultiSink(s1, s2).RecordTrip(TripRecord{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom got %v", err)
	}
	if s2.trips != 1 {
		t.Fatalf("second sink skipped")
	}
}

func TestTripRecordDurations(t *testing.T) {
	base := time.Unix(0, 0)
	r := TripRecord{
		Submitted: base,
		Assigned:  base.Add(2 * time.Second),
		Arrived:   base.Add(5 * time.Second),
		Completed: base.Add(8 * time.Second),
	}
	if r.QueueTime() != 2*time.Second || r.TravelTime() != 3*time.Second || r.WaitTime() != 5*time.Second {
		t.Fatalf("unexpected durations %v %v %v", r.QueueTime(), r.TravelTime(), r.WaitTime())
	}
}

type closingSink struct {
	tripOnly
	closed bool
}

func (c *closingSink) Close() error { c.closed = true; return nil }

func TestMultiSinkClose(t *testing.T) {
	c := &closingSink{}
	if err := NewMultiSink(&tripOnly{}, c).Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !c.closed {
		t.Fatalf("closer not closed")
	}
}
