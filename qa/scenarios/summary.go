package scenarios

import (
	"fmt"
	"io"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	coremetrics "github.com/kilianp07/liftbank/core/metrics"
)

// Summary aggregates trip statistics.
type Summary struct {
	Trips      int
	MeanWait   time.Duration
	P95Wait    time.Duration
	MaxWait    time.Duration
	MeanTravel time.Duration
	DistanceM  float64
	TripsByCar map[int]int
}

// Summarize computes wait and travel statistics over trips.
func Summarize(trips []coremetrics.TripRecord) Summary {
	s := Summary{Trips: len(trips), TripsByCar: map[int]int{}}
	if len(trips) == 0 {
		return s
	}
	waits := make([]float64, len(trips))
	travels := make([]float64, len(trips))
	for i, tr := range trips {
		waits[i] = tr.WaitTime().Seconds()
		travels[i] = tr.TravelTime().Seconds()
		s.DistanceM += tr.Distance
		s.TripsByCar[tr.CarID]++
	}
	sort.Float64s(waits)
	s.MeanWait = seconds(stat.Mean(waits, nil))
	s.P95Wait = seconds(stat.Quantile(0.95, stat.Empirical, waits, nil))
	s.MaxWait = seconds(waits[len(waits)-1])
	s.MeanTravel = seconds(stat.Mean(travels, nil))
	return s
}

func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second)).Round(time.Millisecond)
}

// Print writes a short report of the run.
func (r *Result) Print(w io.Writer) {
	s := Summarize(r.Trips)
	fmt.Fprintf(w, "scenario %s: %d trips in %s (accepted %d, duplicate %d, rejected %d, unserved %d)\n",
		r.Scenario, s.Trips, r.Elapsed, r.Accepted, r.Duplicates, r.Rejected, r.Unserved)
	fmt.Fprintf(w, "wait mean %s p95 %s max %s, travel mean %s, distance %.1f m\n",
		s.MeanWait, s.P95Wait, s.MaxWait, s.MeanTravel, s.DistanceM)
	for _, c := range r.Cars {
		fmt.Fprintf(w, "car %d: floor %d, %d trips\n", c.ID, c.Floor, s.TripsByCar[c.ID])
	}
}
