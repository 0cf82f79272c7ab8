// Package metrics exposes a small metrics facade used by the call-logging
// components.
//
// Two registries implement it:
//   - ScrapeRegistry (server): metrics live in a Prometheus registry and are served on /metrics
//   - PushRegistry (CLI): values are buffered and sent in one remote write request by Flush
//
// Components that do not care about metrics take a Registry and fall back to
// Discard when none is configured.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Gauge is a metric that represents a single numerical value that can go up and down.
type Gauge interface {
	// Set sets the Gauge to the given value.
	Set(float64)
}

// Counter is a metric that represents a single monotonically increasing counter.
type Counter interface {
	// Inc increments the counter by 1.
	Inc()
	// Add adds the given value to the counter.
	Add(float64)
}

// GaugeVec is a Gauge with labels.
type GaugeVec interface {
	// With returns the Gauge for the given Labels.
	With(prometheus.Labels) Gauge
}

// CounterVec is a Counter with labels.
type CounterVec interface {
	// With returns the Counter for the given Labels.
	With(prometheus.Labels) Counter
}

// Registry creates and registers metrics.
type Registry interface {
	NewGauge(opts prometheus.GaugeOpts) (Gauge, error)
	NewGaugeVec(opts prometheus.GaugeOpts, labels []string) (GaugeVec, error)
	NewCounter(opts prometheus.CounterOpts) (Counter, error)
	NewCounterVec(opts prometheus.CounterOpts, labels []string) (CounterVec, error)
}

// Discard is a Registry whose metrics record nothing.
var Discard Registry = discardRegistry{}

type discardRegistry struct{}

type discardMetric struct{}

func (discardMetric) Set(float64) {}
func (discardMetric) Inc()        {}
func (discardMetric) Add(float64) {}

func (discardMetric) With(prometheus.Labels) Gauge { return discardMetric{} }

type discardCounterVec struct{}

func (discardCounterVec) With(prometheus.Labels) Counter { return discardMetric{} }

func (discardRegistry) NewGauge(prometheus.GaugeOpts) (Gauge, error) { return discardMetric{}, nil }

func (discardRegistry) NewGaugeVec(prometheus.GaugeOpts, []string) (GaugeVec, error) {
	return discardMetric{}, nil
}

func (discardRegistry) NewCounter(prometheus.CounterOpts) (Counter, error) {
	return discardMetric{}, nil
}

func (discardRegistry) NewCounterVec(prometheus.CounterOpts, []string) (CounterVec, error) {
	return discardCounterVec{}, nil
}
