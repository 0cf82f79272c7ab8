package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nomis52/gocti/metrics"
	"github.com/nomis52/gocti/salesactivity"
	"github.com/nomis52/gocti/server/types"
)

// ReferenceChecker resolves the configured sales activity type and outcome.
type ReferenceChecker interface {
	CheckReferenceData(ctx context.Context) (salesactivity.ReferenceData, error)
}

// ReferenceProbe periodically confirms that the configured activity type and
// outcome still exist, so a renamed outcome shows up before an operator
// tries to log a call.
type ReferenceProbe struct {
	checker ReferenceChecker
	ready   metrics.Gauge
	logger  *slog.Logger
	now     func() time.Time

	mu      sync.RWMutex
	status  types.ProbeStatus
	nextRun func() time.Time
}

// NewReferenceProbe creates a probe that records its result in the
// reference_data_ready gauge.
func NewReferenceProbe(checker ReferenceChecker, registry metrics.Registry, logger *slog.Logger) (*ReferenceProbe, error) {
	if registry == nil {
		registry = metrics.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	ready, err := registry.NewGauge(prometheus.GaugeOpts{
		Name: "reference_data_ready",
		Help: "1 when the configured sales activity type and outcome resolved on the last check.",
	})
	if err != nil {
		return nil, fmt.Errorf("creating reference data gauge: %w", err)
	}
	return &ReferenceProbe{
		checker: checker,
		ready:   ready,
		logger:  logger.With("component", "reference_probe"),
		now:     time.Now,
	}, nil
}

// Run checks the reference data once and records the result.
func (p *ReferenceProbe) Run(ctx context.Context) error {
	ref, err := p.checker.CheckReferenceData(ctx)
	checked := p.now()

	status := types.ProbeStatus{CheckedAt: &checked, Ready: err == nil}
	if err != nil {
		status.Error = err.Error()
		var e *salesactivity.Error
		if errors.As(err, &e) {
			status.Kind = e.Kind.String()
		}
		p.ready.Set(0)
		p.logger.Warn("reference data check failed", "kind", status.Kind, "error", err)
	} else {
		status.Reference = &ref
		p.ready.Set(1)
		p.logger.Debug("reference data resolved",
			"type_id", int64(ref.Type.ID),
			"outcome_id", int64(ref.Outcome.ID),
		)
	}

	p.mu.Lock()
	p.status = status
	p.mu.Unlock()
	return err
}

// Status returns the result of the last check.
func (p *ReferenceProbe) Status() types.ProbeStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()

	status := p.status
	if p.nextRun != nil {
		next := p.nextRun()
		status.NextCheck = &next
	}
	return status
}

func (p *ReferenceProbe) setSchedule(nextRun func() time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextRun = nextRun
}
