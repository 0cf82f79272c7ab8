// Package workflow runs a fixed sequence of dependent activities.
//
// A Pipeline executes its activities strictly in the order they were added.
// Each activity usually consumes the output of the ones before it, so the first
// failure stops the pipeline: every later activity is marked Skipped and never
// executed.
//
//	p := workflow.NewPipeline(workflow.WithLogger(logger), workflow.WithStepTimeout(10*time.Second))
//	if err := p.AddActivity(lookup, write); err != nil {
//	    return err
//	}
//	err := p.Execute(ctx)
//	if r := p.GetResult(write); !r.IsSuccess() {
//	    ...
//	}
//
// # Activity Contract
//
// Init() is called for every activity before any of them executes. It checks
// structure and configuration: required fields set, collaborators injected.
// It must not look at the output of other activities, which do not exist yet.
//
// Execute() performs the work and returns nil on success. The context passed
// to it carries the per-step timeout when one is configured.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Activity is a single step of a Pipeline.
type Activity interface {
	// Init validates configuration and injected collaborators.
	Init() error

	// Execute performs the activity's work.
	Execute(ctx context.Context) error
}

// Result contains the outcome of an activity.
type Result struct {
	// State indicates the current execution state.
	State ActivityState `json:"state"`

	// Error holds the error returned by Execute, or the reason the activity was skipped.
	Error error `json:"-"`

	// StartedAt is zero if the activity never ran.
	StartedAt time.Time `json:"started_at"`

	// Duration is how long Execute took.
	Duration time.Duration `json:"duration"`
}

// IsSuccess returns true if the activity ran and returned no error.
func (r *Result) IsSuccess() bool {
	return r.State == Completed && r.Error == nil
}

// Observer is notified whenever an activity reaches a final state.
type Observer func(id ActivityID, result Result)

// Pipeline executes activities one after another, stopping at the first failure.
type Pipeline struct {
	logger      *slog.Logger
	stepTimeout time.Duration
	observers   []Observer

	activities []Activity
	ids        []ActivityID

	mu      sync.RWMutex
	results map[ActivityID]*Result
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for pipeline diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger.With("component", "pipeline")
	}
}

// WithStepTimeout bounds the duration of each activity's Execute call.
// Zero means no per-step bound beyond the caller's context.
func WithStepTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		p.stepTimeout = d
	}
}

// WithObserver registers a callback invoked when an activity completes or is skipped.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) {
		p.observers = append(p.observers, o)
	}
}

// NewPipeline creates an empty pipeline.
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		logger:  slog.Default().With("component", "pipeline"),
		results: make(map[ActivityID]*Result),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AddActivity appends activities to the pipeline. Their results are
// available immediately in NotStarted state. Adding two activities of the
// same type is an error.
func (p *Pipeline) AddActivity(activities ...Activity) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, a := range activities {
		id := GetActivityID(a)
		if _, exists := p.results[id]; exists {
			return fmt.Errorf("activity of type %s already exists", id)
		}
		p.activities = append(p.activities, a)
		p.ids = append(p.ids, id)
		p.results[id] = &Result{State: NotStarted}
	}
	return nil
}

// Execute initializes every activity, then runs them in order. It returns the
// first Init or Execute error, wrapped with the failing activity's id.
func (p *Pipeline) Execute(ctx context.Context) error {
	if len(p.activities) == 0 {
		p.logger.Debug("no activities to execute")
		return nil
	}

	for i, a := range p.activities {
		if err := a.Init(); err != nil {
			p.logger.Error("activity initialization failed", "activity", p.ids[i].ShortString(), "error", err)
			return fmt.Errorf("activity %s initialization failed: %w", p.ids[i].ShortString(), err)
		}
	}

	var firstErr error
	for i, a := range p.activities {
		id := p.ids[i]

		if firstErr != nil {
			p.finish(id, Result{State: Skipped, Error: fmt.Errorf("skipped: %w", firstErr)})
			continue
		}
		if err := ctx.Err(); err != nil {
			firstErr = fmt.Errorf("activity %s not started: %w", id.ShortString(), err)
			p.finish(id, Result{State: Skipped, Error: err})
			continue
		}

		p.setState(id, Running)
		p.logger.Debug("activity started", "activity", id.ShortString())

		start := time.Now()
		err := p.run(ctx, a)
		result := Result{State: Completed, Error: err, StartedAt: start, Duration: time.Since(start)}
		p.finish(id, result)

		if err != nil {
			p.logger.Debug("activity failed", "activity", id.ShortString(), "duration", result.Duration, "error", err)
			firstErr = fmt.Errorf("activity %s failed: %w", id.ShortString(), err)
			continue
		}
		p.logger.Debug("activity completed", "activity", id.ShortString(), "duration", result.Duration)
	}
	return firstErr
}

func (p *Pipeline) run(ctx context.Context, a Activity) error {
	if p.stepTimeout <= 0 {
		return a.Execute(ctx)
	}
	stepCtx, cancel := context.WithTimeout(ctx, p.stepTimeout)
	defer cancel()
	return a.Execute(stepCtx)
}

func (p *Pipeline) setState(id ActivityID, state ActivityState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results[id] = &Result{State: state}
}

func (p *Pipeline) finish(id ActivityID, result Result) {
	p.mu.Lock()
	r := result
	p.results[id] = &r
	p.mu.Unlock()

	for _, o := range p.observers {
		o(id, result)
	}
}

// GetResult returns a copy of the result for an activity, or nil if it was never added.
func (p *Pipeline) GetResult(a Activity) *Result {
	p.mu.RLock()
	defer p.mu.RUnlock()

	r, ok := p.results[GetActivityID(a)]
	if !ok {
		return nil
	}
	cp := *r
	return &cp
}

// GetAllResults returns a copy of all results keyed by activity id.
func (p *Pipeline) GetAllResults() map[ActivityID]*Result {
	p.mu.RLock()
	defer p.mu.RUnlock()

	results := make(map[ActivityID]*Result, len(p.results))
	for id, r := range p.results {
		cp := *r
		results[id] = &cp
	}
	return results
}

// Steps returns the ids of the activities in execution order.
func (p *Pipeline) Steps() []ActivityID {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ids := make([]ActivityID, len(p.ids))
	copy(ids, p.ids)
	return ids
}
