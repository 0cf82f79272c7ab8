package salesactivity

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nomis52/gocti/metrics"
	"github.com/nomis52/gocti/workflow"
)

const resultSuccess = "success"

type loggerMetrics struct {
	invocations metrics.CounterVec
	steps       metrics.CounterVec
}

func newLoggerMetrics(registry metrics.Registry) (*loggerMetrics, error) {
	invocations, err := registry.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_activity_invocations_total",
		Help: "Sales activity invocations by result.",
	}, []string{"result"})
	if err != nil {
		return nil, fmt.Errorf("creating invocations counter: %w", err)
	}

	steps, err := registry.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_activity_steps_total",
		Help: "Sales activity steps by final state.",
	}, []string{"step", "state"})
	if err != nil {
		return nil, fmt.Errorf("creating steps counter: %w", err)
	}

	return &loggerMetrics{invocations: invocations, steps: steps}, nil
}

func (m *loggerMetrics) observeInvocation(result string) {
	m.invocations.With(prometheus.Labels{"result": result}).Inc()
}

// observeStep is a workflow.Observer.
func (m *loggerMetrics) observeStep(id workflow.ActivityID, r workflow.Result) {
	state := r.State.String()
	if r.State == workflow.Completed && r.Error != nil {
		state = "failed"
	}
	m.steps.With(prometheus.Labels{"step": stepName(id), "state": state}).Inc()
}
