package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/liftbank/core/metrics"
	"github.com/kilianp07/liftbank/infra/logger"
)

// InfluxConfig holds the connection settings of an InfluxSink.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes trips, call outcomes and fleet snapshots to an InfluxDB
// instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordTrip writes one lift_trip point per completed trip.
func (s *InfluxSink) RecordTrip(rec coremetrics.TripRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("lift_trip").
		AddTag("car_id", strconv.Itoa(rec.CarID)).
		AddTag("direction", rec.Call.Direction.String()).
		AddTag("trip_id", rec.TripID).
		AddField("floor", rec.Call.Floor).
		AddField("origin", rec.Origin).
		AddField("distance_m", round3(rec.Distance)).
		AddField("wait_s", round3(rec.WaitTime().Seconds())).
		AddField("queue_s", round3(rec.QueueTime().Seconds())).
		AddField("travel_s", round3(rec.TravelTime().Seconds())).
		SetTime(rec.Completed)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordCall writes the outcome of a hall call.
func (s *InfluxSink) RecordCall(rec coremetrics.CallRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("hall_call").
		AddTag("direction", rec.Call.Direction.String()).
		AddTag("outcome", string(rec.Outcome)).
		AddField("floor", rec.Call.Floor).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordFleetState writes a snapshot of the bank occupancy.
func (s *InfluxSink) RecordFleetState(st coremetrics.FleetState) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("fleet_state").
		AddField("busy", st.Busy).
		AddField("idle", st.Idle).
		AddField("queued", st.Queued).
		SetTime(st.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the HTTP client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
