package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/liftbank/api/cars"
	"github.com/kilianp07/liftbank/core/clock"
	"github.com/kilianp07/liftbank/core/dispatch"
	"github.com/kilianp07/liftbank/core/lift"
	"github.com/kilianp07/liftbank/core/logger"
	"github.com/kilianp07/liftbank/core/metrics"
	"github.com/kilianp07/liftbank/core/model"
	"github.com/kilianp07/liftbank/core/triplog"
)

func TestMuxDrivesDispatcher(t *testing.T) {
	clk := clock.NewManual(time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC))
	store, err := triplog.Open(filepath.Join(t.TempDir(), "trips.jsonl"), triplog.DefaultOptions())
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	d, err := dispatch.NewDispatcher(dispatch.Config{Floors: 6, Lifts: 2, Timings: lift.DefaultTimings()},
		nil, clk, triplog.Sink{Store: store}, nil, logger.Nop{})
	require.NoError(t, err)
	defer func() { _ = d.Close() }()

	srv := httptest.NewServer(NewMux(Options{Fleet: d, Trips: store}))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/calls", "application/json", strings.NewReader(`{"floor":4,"direction":"up"}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	var st cars.Status
	getJSON(t, srv.URL+"/api/cars", &st)
	require.Len(t, st.Cars, 2)
	assert.True(t, st.Cars[0].Busy)
	assert.Equal(t, model.PhaseMoving, st.Cars[0].Phase)

	clk.RunUntilIdle(0)
	require.NoError(t, d.WaitIdle(context.Background()))

	var recs []metrics.TripRecord
	getJSON(t, srv.URL+"/api/trips?floor=4", &recs)
	require.Len(t, recs, 1)
	assert.Equal(t, 1, recs[0].CarID)
}

func TestMuxWithoutTrips(t *testing.T) {
	d, err := dispatch.NewDispatcher(dispatch.Config{Floors: 3, Lifts: 1, Timings: lift.DefaultTimings()},
		nil, clock.NewManual(time.Now()), nil, nil, logger.Nop{})
	require.NoError(t, err)
	defer func() { _ = d.Close() }()
	rr := httptest.NewRecorder()
	NewMux(Options{Fleet: d}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/trips", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, "127.0.0.1:0", http.NewServeMux()) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
	}
}

func getJSON(t *testing.T, url string, v any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}
