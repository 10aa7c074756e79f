// Package metrics defines the sinks that record dispatcher activity.
// Sinks like PromSink and InfluxSink (package infra/metrics) record completed
// trips, call outcomes and fleet occupancy, and can be combined with
// NewMultiSink. NewMetricsSink builds a MultiSink automatically when several
// sinks are configured.
package metrics
