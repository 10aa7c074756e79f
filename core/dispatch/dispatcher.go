package dispatch

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/liftbank/core/clock"
	"github.com/kilianp07/liftbank/core/events"
	"github.com/kilianp07/liftbank/core/lift"
	"github.com/kilianp07/liftbank/core/logger"
	"github.com/kilianp07/liftbank/core/metrics"
	"github.com/kilianp07/liftbank/core/model"
	"github.com/kilianp07/liftbank/core/monitoring"
	"github.com/kilianp07/liftbank/core/queue"
	"github.com/kilianp07/liftbank/internal/eventbus"
)

// Dispatcher owns the cars and the queue of pending calls.
type Dispatcher struct {
	cfg      Config
	selector CarSelector
	clock    clock.Clock
	sink     metrics.MetricsSink
	bus      eventbus.EventBus
	logger   logger.Logger
	newID    func() string

	mu      sync.Mutex
	cars    []*lift.Car
	timers  []clock.Timer
	queue   *queue.RequestQueue
	closed  bool
	changed chan struct{}
	// flushing counts outboxes queued for delivery but not yet handed to
	// the sink.
	flushing   int
	deliveries []outbox
	wake       chan struct{}
	delivered  chan struct{}
}

// outbox collects records produced under the lock. Sinks may block on I/O,
// so outboxes are handed to them in order by the delivery goroutine.
type outbox struct {
	calls []metrics.CallRecord
	trips []metrics.TripRecord
	fleet *metrics.FleetState
}

// NewDispatcher validates cfg and creates cfg.Lifts idle cars on floor 1.
// A nil selector defaults to NearestIdle, a nil clock to the wall clock and
// a nil sink to metrics.NopSink. bus may be nil.
func NewDispatcher(cfg Config, sel CarSelector, clk clock.Clock, sink metrics.MetricsSink, bus eventbus.EventBus, log logger.Logger) (*Dispatcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sel == nil {
		sel = NearestIdle{}
	}
	if clk == nil {
		clk = clock.System{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if log == nil {
		log = logger.Nop{}
	}
	d := &Dispatcher{
		cfg:       cfg,
		selector:  sel,
		clock:     clk,
		sink:      sink,
		bus:       bus,
		logger:    log,
		newID:     uuid.NewString,
		cars:      make([]*lift.Car, cfg.Lifts),
		timers:    make([]clock.Timer, cfg.Lifts),
		queue:     queue.New(),
		changed:   make(chan struct{}),
		wake:      make(chan struct{}, 1),
		delivered: make(chan struct{}),
	}
	for i := range d.cars {
		d.cars[i] = lift.NewCar(i+1, cfg.Timings)
	}
	go d.deliver()
	return d, nil
}

// Config returns the building configuration.
func (d *Dispatcher) Config() Config { return d.cfg }

// SubmitCall registers a hall call. Invalid calls are rejected with an error
// wrapping model.ErrInvalidCall. A call equal to one already queued or being
// served by a car is dropped without error. Otherwise the call is queued and
// an assignment pass runs immediately. SubmitCall never waits for a trip or
// for the sink.
func (d *Dispatcher) SubmitCall(floor int, dir model.Direction) error {
	call := model.Call{Floor: floor, Direction: dir}
	now := d.clock.Now()
	if err := call.Validate(d.cfg.Floors); err != nil {
		d.logger.Warnf("rejected call %s: %v", call, err)
		d.publish(events.CallEvent{Call: call, Outcome: events.CallRejected, Err: err, Time: now})
		callsTotal.WithLabelValues(string(events.CallRejected)).Inc()
		d.mu.Lock()
		if !d.closed {
			d.enqueueLocked(outbox{calls: []metrics.CallRecord{{Call: call, Outcome: events.CallRejected, Time: now}}})
		}
		d.mu.Unlock()
		return err
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return model.ErrClosed
	}
	var out outbox
	outcome := events.CallAccepted
	if d.ownedLocked(call) {
		outcome = events.CallDuplicate
		d.logger.Debugf("call %s already queued or being served", call)
	} else {
		d.queue.Push(queue.Request{Call: call, Submitted: now})
		d.logger.Debugw("call queued", map[string]any{"floor": floor, "direction": string(dir), "queued": d.queue.Len()})
	}
	d.publish(events.CallEvent{Call: call, Outcome: outcome, Time: now})
	callsTotal.WithLabelValues(string(outcome)).Inc()
	out.calls = append(out.calls, metrics.CallRecord{Call: call, Outcome: outcome, Time: now})
	if outcome == events.CallAccepted {
		d.assignLocked(now, &out)
		d.snapshotLocked(now, &out)
	}
	d.enqueueLocked(out)
	d.mu.Unlock()
	return nil
}

// ownedLocked reports whether the call is already queued or is the target of
// a busy car.
func (d *Dispatcher) ownedLocked(call model.Call) bool {
	if d.queue.Contains(call) {
		return true
	}
	for _, c := range d.cars {
		if c.Status().Serves(call) {
			return true
		}
	}
	return false
}

// assignLocked hands queued calls, oldest first, to idle cars until the
// queue is empty or no car is available.
func (d *Dispatcher) assignLocked(now time.Time, out *outbox) {
	for d.queue.Len() > 0 {
		head, _ := d.queue.Peek()
		idx, ok := d.selector.Select(d.statusesLocked(), head.Call)
		if !ok {
			return
		}
		if idx < 0 || idx >= len(d.cars) || d.cars[idx].Busy() {
			d.logger.Errorf("selector returned unusable car index %d for %s", idx, head.Call)
			return
		}
		d.queue.Pop()
		car := d.cars[idx]
		trip := lift.Trip{ID: d.newID(), Call: head.Call, Submitted: head.Submitted, Assigned: now}
		travel, err := car.Assign(trip)
		if err != nil {
			d.logger.Errorf("assign %s: %v", head.Call, err)
			return
		}
		assignmentsTotal.WithLabelValues(strconv.Itoa(car.ID())).Inc()
		d.logger.Infof("car %d moving from floor %d to floor %d for %s call (trip %s, %s)",
			car.ID(), car.Floor(), trip.Call.Floor, trip.Call.Direction, trip.ID, travel)
		d.publishPhaseLocked(car, trip, now)
		d.scheduleLocked(idx, trip.ID, model.PhaseMoving, travel)
	}
}

func (d *Dispatcher) scheduleLocked(idx int, tripID string, phase model.Phase, after time.Duration) {
	d.timers[idx] = d.clock.AfterFunc(after, func() {
		d.onPhaseElapsed(idx, tripID, phase)
	})
}

// onPhaseElapsed runs when the timer of a car phase fires. Timers that no
// longer match the car's trip and phase are ignored.
func (d *Dispatcher) onPhaseElapsed(idx int, tripID string, phase model.Phase) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	car := d.cars[idx]
	trip, ok := car.Trip()
	if !ok || trip.ID != tripID || car.Phase() != phase {
		staleTimers.Inc()
		d.logger.Warnf("car %d: ignoring stale %s timer for trip %s", car.ID(), phase, tripID)
		d.mu.Unlock()
		return
	}

	now := d.clock.Now()
	next, dur, err := car.Advance(now)
	if err != nil {
		d.logger.Errorf("car %d: %v", car.ID(), err)
		d.mu.Unlock()
		return
	}
	if next == model.PhaseDoorsOpening {
		trip.Arrived = now
	}
	d.publishPhaseLocked(car, trip, now)

	if next != model.PhaseIdle {
		d.scheduleLocked(idx, tripID, next, dur)
		d.mu.Unlock()
		return
	}

	d.timers[idx] = nil
	var out outbox
	out.trips = append(out.trips, metrics.TripRecord{
		TripID:    trip.ID,
		CarID:     car.ID(),
		Call:      trip.Call,
		Origin:    trip.Origin,
		Distance:  d.cfg.Timings.Distance(trip.Origin, trip.Call.Floor),
		Submitted: trip.Submitted,
		Assigned:  trip.Assigned,
		Arrived:   trip.Arrived,
		Completed: now,
	})
	d.logger.Infof("car %d completed trip %s at floor %d", car.ID(), trip.ID, car.Floor())
	d.assignLocked(now, &out)
	d.snapshotLocked(now, &out)
	d.enqueueLocked(out)
	d.mu.Unlock()
}

func (d *Dispatcher) publishPhaseLocked(car *lift.Car, trip lift.Trip, now time.Time) {
	d.logger.Debugw("car phase", map[string]any{
		"car":   car.ID(),
		"trip":  trip.ID,
		"phase": car.Phase().String(),
		"floor": car.Floor(),
	})
	d.publish(events.PhaseEvent{
		CarID:  car.ID(),
		TripID: trip.ID,
		Phase:  car.Phase(),
		Floor:  car.Floor(),
		Call:   trip.Call,
		Time:   now,
	})
}

func (d *Dispatcher) publish(e eventbus.Event) {
	if d.bus != nil {
		d.bus.Publish(e)
	}
}

func (d *Dispatcher) snapshotLocked(now time.Time, out *outbox) {
	busy := 0
	for _, c := range d.cars {
		if c.Busy() {
			busy++
		}
	}
	queueDepth.Set(float64(d.queue.Len()))
	carsBusy.Set(float64(busy))
	out.fleet = &metrics.FleetState{Busy: busy, Idle: len(d.cars) - busy, Queued: d.queue.Len(), Time: now}
}

func (d *Dispatcher) notifyLocked() {
	close(d.changed)
	d.changed = make(chan struct{})
}

// enqueueLocked queues out for the delivery goroutine. It never blocks.
func (d *Dispatcher) enqueueLocked(out outbox) {
	d.deliveries = append(d.deliveries, out)
	d.flushing++
	d.signal()
}

func (d *Dispatcher) signal() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// deliver hands queued outboxes to the sink in order. It returns once the
// dispatcher is closed and the queue is drained.
func (d *Dispatcher) deliver() {
	defer close(d.delivered)
	for {
		d.mu.Lock()
		for len(d.deliveries) == 0 {
			if d.closed {
				d.mu.Unlock()
				return
			}
			d.mu.Unlock()
			<-d.wake
			d.mu.Lock()
		}
		out := d.deliveries[0]
		d.deliveries[0] = outbox{}
		d.deliveries = d.deliveries[1:]
		d.mu.Unlock()

		d.flush(out)

		d.mu.Lock()
		d.flushing--
		d.notifyLocked()
		d.mu.Unlock()
	}
}

func (d *Dispatcher) flush(out outbox) {
	for _, rec := range out.calls {
		if cr, ok := d.sink.(metrics.CallRecorder); ok {
			if err := cr.RecordCall(rec); err != nil {
				d.logger.Errorf("record call: %v", err)
				monitoring.CaptureException(err, map[string]string{"module": "dispatcher", "record": "call"})
			}
		}
	}
	for _, rec := range out.trips {
		if err := d.sink.RecordTrip(rec); err != nil {
			d.logger.Errorf("record trip %s: %v", rec.TripID, err)
			monitoring.CaptureException(err, map[string]string{"module": "dispatcher", "record": "trip", "car": strconv.Itoa(rec.CarID)})
		}
	}
	if out.fleet != nil {
		if fr, ok := d.sink.(metrics.FleetRecorder); ok {
			if err := fr.RecordFleetState(*out.fleet); err != nil {
				d.logger.Errorf("record fleet state: %v", err)
				monitoring.CaptureException(err, map[string]string{"module": "dispatcher", "record": "fleet"})
			}
		}
	}
}

func (d *Dispatcher) statusesLocked() []model.CarStatus {
	st := make([]model.CarStatus, len(d.cars))
	for i, c := range d.cars {
		st[i] = c.Status()
	}
	return st
}

// Cars returns a snapshot of every car ordered by ID.
func (d *Dispatcher) Cars() []model.CarStatus {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.statusesLocked()
}

// Pending returns the queued calls, oldest first.
func (d *Dispatcher) Pending() []model.Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.queue.Calls()
}

// Idle reports whether no call is queued and every car is idle.
func (d *Dispatcher) Idle() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.idleLocked()
}

func (d *Dispatcher) idleLocked() bool {
	if d.queue.Len() > 0 {
		return false
	}
	for _, c := range d.cars {
		if c.Busy() {
			return false
		}
	}
	return true
}

// Flush blocks until every record produced so far has been handed to the
// sink, or ctx is done.
func (d *Dispatcher) Flush(ctx context.Context) error {
	for {
		d.mu.Lock()
		if d.flushing == 0 {
			d.mu.Unlock()
			return nil
		}
		ch := d.changed
		d.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// WaitIdle blocks until Idle is true and every record has been handed to
// the sink, or ctx is done. With no cars and a pending call it only returns
// through ctx.
func (d *Dispatcher) WaitIdle(ctx context.Context) error {
	for {
		d.mu.Lock()
		if d.idleLocked() && d.flushing == 0 {
			d.mu.Unlock()
			return nil
		}
		if d.closed {
			d.mu.Unlock()
			return model.ErrClosed
		}
		ch := d.changed
		d.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Run submits calls received on the channel until the context is canceled
// or the channel is closed.
func (d *Dispatcher) Run(ctx context.Context, calls <-chan model.Call) {
	defer monitoring.Recover()
	for {
		select {
		case c, ok := <-calls:
			if !ok {
				return
			}
			if err := d.SubmitCall(c.Floor, c.Direction); err != nil {
				d.logger.Warnf("call %s: %v", c, err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Close stops pending phase timers and the event bus, then waits for queued
// records to reach the sink. Cars stay where they are; later calls fail with
// model.ErrClosed.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	stopped := 0
	for i, t := range d.timers {
		if t != nil && t.Stop() {
			stopped++
		}
		d.timers[i] = nil
	}
	d.notifyLocked()
	d.signal()
	d.mu.Unlock()
	<-d.delivered
	if stopped > 0 {
		d.logger.Infof("dispatcher closed with %d trips in progress", stopped)
	}
	if d.bus != nil {
		d.bus.Close()
	}
	return nil
}

// String describes the dispatcher for logs.
func (d *Dispatcher) String() string {
	return fmt.Sprintf("dispatcher(%d floors, %d cars)", d.cfg.Floors, d.cfg.Lifts)
}
