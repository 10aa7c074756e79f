//go:build integration

package metrics

import (
	"context"
	"fmt"
	"os/exec"
	"testing"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	coremetrics "github.com/kilianp07/liftbank/core/metrics"
	"github.com/kilianp07/liftbank/core/model"
)

const (
	itOrg    = "liftbank"
	itBucket = "trips"
	itToken  = "integration-token"
)

// startInflux starts an InfluxDB 2.7 container in setup mode so the
// organisation, bucket and token exist, and returns its base URL.
func startInflux(ctx context.Context, t *testing.T) (tc.Container, string) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "influxdb:2.7",
		ExposedPorts: []string{"8086/tcp"},
		Env: map[string]string{
			"DOCKER_INFLUXDB_INIT_MODE":        "setup",
			"DOCKER_INFLUXDB_INIT_USERNAME":    "liftbank",
			"DOCKER_INFLUXDB_INIT_PASSWORD":    "liftbank-password",
			"DOCKER_INFLUXDB_INIT_ORG":         itOrg,
			"DOCKER_INFLUXDB_INIT_BUCKET":      itBucket,
			"DOCKER_INFLUXDB_INIT_ADMIN_TOKEN": itToken,
		},
		WaitingFor: wait.ForHTTP("/health").WithPort("8086/tcp").WithStartupTimeout(60 * time.Second),
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("unable to start influx container: %v", err)
	}
	host, _ := cont.Host(ctx)
	port, _ := cont.MappedPort(ctx, "8086")
	return cont, fmt.Sprintf("http://%s:%s", host, port.Port())
}

// TestInfluxSinkIntegration writes trips through the sink and reads them
// back with a Flux query.
func TestInfluxSinkIntegration(t *testing.T) {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skipf("docker not installed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cont, url := startInflux(ctx, t)
	defer cont.Terminate(ctx) //nolint:errcheck

	sink := NewInfluxSinkWithFallback(InfluxConfig{URL: url, Token: itToken, Org: itOrg, Bucket: itBucket})
	influx, ok := sink.(*InfluxSink)
	if !ok {
		t.Fatalf("expected InfluxSink, got %T", sink)
	}
	defer influx.Close()

	now := time.Now().UTC()
	for i, floor := range []int{3, 5} {
		rec := coremetrics.TripRecord{
			TripID:    fmt.Sprintf("trip-%d", i),
			CarID:     i + 1,
			Call:      model.Call{Floor: floor, Direction: model.Up},
			Origin:    1,
			Distance:  float64(floor-1) * 3,
			Submitted: now.Add(-10 * time.Second),
			Assigned:  now.Add(-10 * time.Second),
			Arrived:   now.Add(-5 * time.Second),
			Completed: now.Add(time.Duration(i) * time.Millisecond),
		}
		if err := influx.RecordTrip(rec); err != nil {
			t.Fatalf("record trip: %v", err)
		}
	}

	client := influxdb2.NewClient(url, itToken)
	defer client.Close()
	flux := fmt.Sprintf(`from(bucket:"%s") |> range(start:-5m) |> filter(fn: (r) => r._measurement == "lift_trip" and r._field == "floor")`, itBucket)
	res, err := client.QueryAPI(itOrg).Query(ctx, flux)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer res.Close()
	floors := map[string]int64{}
	for res.Next() {
		rec := res.Record()
		v, _ := rec.Value().(int64)
		floors[fmt.Sprint(rec.ValueByKey("car_id"))] = v
	}
	if err := res.Err(); err != nil {
		t.Fatalf("query result: %v", err)
	}
	if floors["1"] != 3 || floors["2"] != 5 {
		t.Fatalf("unexpected floors per car: %v", floors)
	}
}
