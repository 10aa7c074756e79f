package scenarios

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	coremetrics "github.com/kilianp07/liftbank/core/metrics"
	"github.com/kilianp07/liftbank/core/model"
)

// RenderChart writes an HTML page plotting the wait and travel time of every
// trip in completion order.
func (r *Result) RenderChart(w io.Writer) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Scenario " + r.Scenario}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Trip"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Seconds"}),
	)

	labels := make([]string, len(r.Trips))
	waits := make([]opts.BarData, len(r.Trips))
	travels := make([]opts.BarData, len(r.Trips))
	for i, tr := range r.Trips {
		labels[i] = fmt.Sprintf("car %d to %d%s", tr.CarID, tr.Call.Floor, arrow(tr))
		waits[i] = opts.BarData{Value: tr.WaitTime().Seconds()}
		travels[i] = opts.BarData{Value: tr.TravelTime().Seconds()}
	}
	bar.SetXAxis(labels).
		AddSeries("Wait", waits).
		AddSeries("Travel", travels)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

func arrow(tr coremetrics.TripRecord) string {
	if tr.Call.Direction == model.Up {
		return "↑"
	}
	return "↓"
}
