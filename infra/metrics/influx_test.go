package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/liftbank/core/events"
	coremetrics "github.com/kilianp07/liftbank/core/metrics"
	"github.com/kilianp07/liftbank/core/model"
)

type bodyRecorder struct {
	mu     sync.Mutex
	bodies []string
}

func (b *bodyRecorder) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.bodies = append(b.bodies, strings.TrimSpace(string(data)))
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func lineProtocol(p *write.Point) string {
	return strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
}

func TestInfluxSink_RecordTrip(t *testing.T) {
	rec := &bodyRecorder{}
	srv := rec.server(t)
	sink := NewInfluxSink(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "token", Org: "org", Bucket: "bucket"})
	defer sink.Close()

	now := time.Now()
	trip := coremetrics.TripRecord{
		TripID:    "t1",
		CarID:     2,
		Call:      model.Call{Floor: 4, Direction: model.Down},
		Origin:    1,
		Distance:  9,
		Submitted: now.Add(-5 * time.Second),
		Assigned:  now.Add(-4 * time.Second),
		Arrived:   now.Add(-1 * time.Second),
		Completed: now,
	}
	require.NoError(t, sink.RecordTrip(trip))

	p := write.NewPointWithMeasurement("lift_trip").
		AddTag("car_id", "2").
		AddTag("direction", "down").
		AddTag("trip_id", "t1").
		AddField("floor", 4).
		AddField("origin", 1).
		AddField("distance_m", 9.0).
		AddField("wait_s", 4.0).
		AddField("queue_s", 1.0).
		AddField("travel_s", 3.0).
		SetTime(now)
	require.Len(t, rec.bodies, 1)
	assert.Equal(t, lineProtocol(p), rec.bodies[0])
}

func TestInfluxSink_RecordCallAndFleet(t *testing.T) {
	rec := &bodyRecorder{}
	srv := rec.server(t)
	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Token: "token", Org: "org", Bucket: "bucket"})
	defer sink.Close()

	now := time.Now()
	require.NoError(t, sink.RecordCall(coremetrics.CallRecord{
		Call:    model.Call{Floor: 3, Direction: model.Up},
		Outcome: events.CallDuplicate,
		Time:    now,
	}))
	require.NoError(t, sink.RecordFleetState(coremetrics.FleetState{Busy: 2, Idle: 1, Queued: 4, Time: now}))

	call := write.NewPointWithMeasurement("hall_call").
		AddTag("direction", "up").
		AddTag("outcome", "duplicate").
		AddField("floor", 3).
		SetTime(now)
	fleet := write.NewPointWithMeasurement("fleet_state").
		AddField("busy", 2).
		AddField("idle", 1).
		AddField("queued", 4).
		SetTime(now)
	assert.Equal(t, []string{lineProtocol(call), lineProtocol(fleet)}, rec.bodies)
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "tok", Org: "org", Bucket: "bucket"})
	_, ok := sink.(coremetrics.NopSink)
	assert.True(t, ok, "expected NopSink on failing health check, got %T", sink)
	assert.True(t, called, "health endpoint not called")
}

func TestNewInfluxSinkWithFallback_Healthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"influxdb","message":"ready for queries and writes","status":"pass","checks":[]}`))
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(InfluxConfig{URL: srv.URL, Token: "tok", Org: "org", Bucket: "bucket"})
	s, ok := sink.(*InfluxSink)
	require.True(t, ok, "expected InfluxSink, got %T", sink)
	_ = s.Close()
}
