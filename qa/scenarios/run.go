package scenarios

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kilianp07/liftbank/config"
	"github.com/kilianp07/liftbank/core/clock"
	"github.com/kilianp07/liftbank/core/dispatch"
	"github.com/kilianp07/liftbank/core/events"
	"github.com/kilianp07/liftbank/core/factory"
	"github.com/kilianp07/liftbank/core/logger"
	coremetrics "github.com/kilianp07/liftbank/core/metrics"
	"github.com/kilianp07/liftbank/core/model"
)

// Epoch is the virtual instant every scenario starts at.
var Epoch = time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC)

// maxSteps bounds the timers fired after the last call.
const maxSteps = 1_000_000

// Result is the outcome of a virtual-time run.
type Result struct {
	Scenario   string
	Trips      []coremetrics.TripRecord
	Accepted   int
	Duplicates int
	Rejected   int
	Unserved   int
	Cars       []model.CarStatus
	Elapsed    time.Duration
}

type recorder struct {
	mu    sync.Mutex
	trips []coremetrics.TripRecord
	calls map[events.CallOutcome]int
	extra coremetrics.MetricsSink
}

func (r *recorder) RecordTrip(rec coremetrics.TripRecord) error {
	r.mu.Lock()
	r.trips = append(r.trips, rec)
	r.mu.Unlock()
	if r.extra != nil {
		return r.extra.RecordTrip(rec)
	}
	return nil
}

func (r *recorder) RecordCall(rec coremetrics.CallRecord) error {
	r.mu.Lock()
	r.calls[rec.Outcome]++
	r.mu.Unlock()
	if cr, ok := r.extra.(coremetrics.CallRecorder); ok {
		return cr.RecordCall(rec)
	}
	return nil
}

func (r *recorder) RecordFleetState(st coremetrics.FleetState) error {
	if fr, ok := r.extra.(coremetrics.FleetRecorder); ok {
		return fr.RecordFleetState(st)
	}
	return nil
}

// Options tunes a run. The zero value is usable.
type Options struct {
	// Sink also receives every record, e.g. a trip log.
	Sink   coremetrics.MetricsSink
	Logger logger.Logger
}

// Run replays the scenario on a virtual clock: each call is submitted at
// its offset from Epoch, then the clock runs until every car is idle.
func Run(sc *Scenario, opts Options) (*Result, error) {
	cfg := config.Config{Building: sc.Building, Timing: sc.Timing}
	sel, err := dispatch.NewSelector(factory.ModuleConfig{Type: sc.Selector})
	if err != nil {
		return nil, err
	}
	clk := clock.NewManual(Epoch)
	rec := &recorder{calls: map[events.CallOutcome]int{}, extra: opts.Sink}
	d, err := dispatch.NewDispatcher(cfg.DispatcherConfig(), sel, clk, rec, nil, opts.Logger)
	if err != nil {
		return nil, err
	}
	defer func() { _ = d.Close() }()

	for i, c := range sc.Calls {
		if wait := Epoch.Add(c.At()).Sub(clk.Now()); wait > 0 {
			clk.Advance(wait)
		}
		call, err := c.ToModel()
		if err != nil {
			return nil, fmt.Errorf("call %d: %w", i, err)
		}
		// rejections are part of the result
		_ = d.SubmitCall(call.Floor, call.Direction)
	}
	if n := clk.RunUntilIdle(maxSteps); n == maxSteps && clk.Pending() > 0 {
		return nil, fmt.Errorf("scenario %s did not settle after %d steps", sc.Name, maxSteps)
	}
	if err := d.Flush(context.Background()); err != nil {
		return nil, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	return &Result{
		Scenario:   sc.Name,
		Trips:      append([]coremetrics.TripRecord(nil), rec.trips...),
		Accepted:   rec.calls[events.CallAccepted],
		Duplicates: rec.calls[events.CallDuplicate],
		Rejected:   rec.calls[events.CallRejected],
		Unserved:   len(d.Pending()),
		Cars:       d.Cars(),
		Elapsed:    clk.Now().Sub(Epoch),
	}, nil
}

// Check compares a result with the scenario expectations.
func Check(sc *Scenario, res *Result) error {
	exp := sc.Expected
	intChecks := []struct {
		name string
		want *int
		got  int
	}{
		{"trips", exp.Trips, len(res.Trips)},
		{"rejected", exp.Rejected, res.Rejected},
		{"duplicates", exp.Duplicates, res.Duplicates},
		{"unserved", exp.Unserved, res.Unserved},
	}
	for _, c := range intChecks {
		if c.want != nil && *c.want != c.got {
			return fmt.Errorf("%s: expected %d %s, got %d", sc.Name, *c.want, c.name, c.got)
		}
	}
	if exp.MaxWaitS != nil {
		for _, tr := range res.Trips {
			if w := tr.WaitTime().Seconds(); w > *exp.MaxWaitS {
				return fmt.Errorf("%s: trip %s waited %.1fs, limit %.1fs", sc.Name, tr.TripID, w, *exp.MaxWaitS)
			}
		}
	}
	if exp.FinalFloors != nil {
		if len(exp.FinalFloors) != len(res.Cars) {
			return fmt.Errorf("%s: expected %d cars, got %d", sc.Name, len(exp.FinalFloors), len(res.Cars))
		}
		for i, f := range exp.FinalFloors {
			if res.Cars[i].Floor != f {
				return fmt.Errorf("%s: car %d ended on floor %d, expected %d", sc.Name, i+1, res.Cars[i].Floor, f)
			}
		}
	}
	return nil
}
