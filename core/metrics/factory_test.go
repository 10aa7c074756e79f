package metrics_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/liftbank/core/factory"
	metrics "github.com/kilianp07/liftbank/core/metrics"
	"github.com/kilianp07/liftbank/core/model"
	"github.com/kilianp07/liftbank/core/triplog"
	inframetrics "github.com/kilianp07/liftbank/infra/metrics"
)

var start = time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC)

func trip(id string, car, floor int) metrics.TripRecord {
	return metrics.TripRecord{
		TripID:    id,
		CarID:     car,
		Call:      model.Call{Floor: floor, Direction: model.Down},
		Origin:    1,
		Distance:  float64(floor-1) * 3,
		Submitted: start,
		Assigned:  start,
		Arrived:   start.Add(time.Duration(floor-1) * time.Second),
		Completed: start.Add(time.Duration(floor-1)*time.Second + 3500*time.Millisecond),
	}
}

func TestNewMetricsSinkDefaultsToNop(t *testing.T) {
	s, err := metrics.NewMetricsSink(nil)
	require.NoError(t, err)
	assert.IsType(t, metrics.NopSink{}, s)
}

func TestNewMetricsSinkUnknownType(t *testing.T) {
	_, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "graphite"}})
	assert.ErrorContains(t, err, "metrics sink 0 (graphite)")
}

func TestNewMetricsSinkPrometheus(t *testing.T) {
	s, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "prometheus"}})
	require.NoError(t, err)
	require.IsType(t, &inframetrics.PromSink{}, s)

	require.NoError(t, s.RecordTrip(trip("t1", 2, 4)))
	fr, ok := s.(metrics.FleetRecorder)
	require.True(t, ok, "prometheus sink records fleet state")
	require.NoError(t, fr.RecordFleetState(metrics.FleetState{Busy: 1, Idle: 1, Time: start}))

	n, err := testutil.GatherAndCount(prometheus.DefaultGatherer, "liftbank_fleet_state")
	require.NoError(t, err)
	assert.Equal(t, 3, n, "busy, idle and queued")
	n, err = testutil.GatherAndCount(prometheus.DefaultGatherer, "liftbank_trip_distance_meters_total")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1)

	// a second prometheus sink reuses the registered collectors
	_, err = metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "prometheus"}})
	assert.NoError(t, err)
}

func TestNewMetricsSinkTripLogBackends(t *testing.T) {
	dir := t.TempDir()
	jsonl := filepath.Join(dir, "trips.jsonl")
	db := filepath.Join(dir, "trips.db")
	s, err := metrics.NewMetricsSink([]factory.ModuleConfig{
		{Type: "triplog", Conf: map[string]any{"path": jsonl, "max_size_mb": 1}},
		{Type: "triplog", Conf: map[string]any{"path": db}},
		{Type: "prometheus"},
	})
	require.NoError(t, err)
	multi, ok := s.(*metrics.MultiSink)
	require.True(t, ok, "expected MultiSink, got %T", s)
	require.Len(t, multi.Sinks, 3)
	assert.IsType(t, triplog.Sink{}, multi.Sinks[0])
	assert.IsType(t, triplog.Sink{}, multi.Sinks[1])

	require.NoError(t, s.RecordTrip(trip("t1", 1, 3)))
	require.NoError(t, s.RecordTrip(trip("t2", 2, 5)))
	require.NoError(t, multi.Close())

	for _, path := range []string{jsonl, db} {
		store, err := triplog.Open(path, triplog.DefaultOptions())
		require.NoError(t, err, path)
		recs, err := store.Query(context.Background(), triplog.Query{CarID: 2})
		require.NoError(t, err, path)
		require.Len(t, recs, 1, path)
		assert.Equal(t, "t2", recs[0].TripID, path)
		assert.Equal(t, 12.0, recs[0].Distance, path)
		require.NoError(t, store.Close())
	}
}

func TestNewMetricsSinkTripLogRequiresPath(t *testing.T) {
	_, err := metrics.NewMetricsSink([]factory.ModuleConfig{
		{Type: "triplog", Conf: map[string]any{"path": filepath.Join(t.TempDir(), "trips.db")}},
		{Type: "triplog"},
	})
	assert.ErrorContains(t, err, "metrics sink 1 (triplog)")
	assert.ErrorContains(t, err, "path is required")
}
