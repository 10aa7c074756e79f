package metrics

import (
	"fmt"

	"github.com/kilianp07/liftbank/core/factory"
	coremetrics "github.com/kilianp07/liftbank/core/metrics"
	"github.com/kilianp07/liftbank/core/triplog"
)

// init registers built-in metrics sinks.
func init() {
	_ = coremetrics.RegisterMetricsSink("nop", func(map[string]any) (coremetrics.MetricsSink, error) {
		return coremetrics.NopSink{}, nil
	})

	_ = coremetrics.RegisterMetricsSink("prometheus", func(map[string]any) (coremetrics.MetricsSink, error) {
		return NewPromSink()
	})

	_ = coremetrics.RegisterMetricsSink("influx", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c InfluxConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.URL == "" {
			return nil, fmt.Errorf("influx sink: url is required")
		}
		return NewInfluxSinkWithFallback(c), nil
	})

	_ = coremetrics.RegisterMetricsSink("triplog", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		c := struct {
			Path            string `json:"path"`
			triplog.Options `json:",squash"`
		}{Options: triplog.DefaultOptions()}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			return nil, fmt.Errorf("triplog sink: path is required")
		}
		store, err := triplog.Open(c.Path, c.Options)
		if err != nil {
			return nil, err
		}
		return triplog.Sink{Store: store}, nil
	})
}
