package salesactivity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nomis52/gocti/logging"
	"github.com/nomis52/gocti/metrics"
	"github.com/nomis52/gocti/notify"
	"github.com/nomis52/gocti/workflow"
)

const (
	successMessage    = "Sales activity added successfully"
	failureMessage    = "Failed to add sales activity"
	inProgressMessage = "A sales activity for this contact is already being added"
)

// stepStages maps each pipeline activity to the stage it reports failures under.
var stepStages = map[string]Stage{
	"ResolveOperator":      StageOperator,
	"FindActivityType":     StageType,
	"FindActivityOutcome":  StageOutcome,
	"CreateActivityRecord": StageWrite,
}

func stepName(id workflow.ActivityID) string {
	if s, ok := stepStages[id.Type]; ok {
		return string(s)
	}
	return id.Type
}

// Logger logs phone sales activities against contacts.
type Logger struct {
	identity  IdentityProvider
	directory Directory
	writer    Writer
	sink      notify.Sink

	settings  Settings
	logger    *slog.Logger
	collector *logging.LogCollector
	guard     *Guard
	reporter  Reporter
	registry  metrics.Registry
	metrics   *loggerMetrics
	now       func() time.Time
	newID     func() string
}

// Option configures a Logger.
type Option func(*Logger)

// WithSettings replaces DefaultSettings.
func WithSettings(s Settings) Option {
	return func(l *Logger) {
		l.settings = s
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Logger) {
		l.logger = logger
	}
}

// WithLogCollector captures each invocation's diagnostics under its invocation id.
func WithLogCollector(c *logging.LogCollector) Option {
	return func(l *Logger) {
		l.collector = c
	}
}

// WithDedupe rejects an invocation while an identical one runs. Claims
// expire after window. A non-positive window disables de-duplication.
func WithDedupe(window time.Duration) Option {
	return func(l *Logger) {
		if window > 0 {
			l.guard = NewGuard(window)
		}
	}
}

// WithReporter registers a Reporter for finished invocations.
func WithReporter(r Reporter) Option {
	return func(l *Logger) {
		l.reporter = r
	}
}

// WithMetricsRegistry records invocation and step counters in registry.
func WithMetricsRegistry(registry metrics.Registry) Option {
	return func(l *Logger) {
		l.registry = registry
	}
}

// WithClock sets the clock used for record dates and invocation timing.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) {
		l.now = now
	}
}

// New creates a Logger. The identity, directory and writer are required; a
// nil sink discards notifications.
func New(identity IdentityProvider, directory Directory, writer Writer, sink notify.Sink, opts ...Option) (*Logger, error) {
	if identity == nil {
		return nil, errors.New("identity provider is required")
	}
	if directory == nil {
		return nil, errors.New("directory is required")
	}
	if writer == nil {
		return nil, errors.New("writer is required")
	}
	if sink == nil {
		sink = notify.Discard
	}

	l := &Logger{
		identity:  identity,
		directory: directory,
		writer:    writer,
		sink:      sink,
		settings:  DefaultSettings(),
		logger:    slog.Default(),
		registry:  metrics.Discard,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With("component", "salesactivity")

	m, err := newLoggerMetrics(l.registry)
	if err != nil {
		return nil, err
	}
	l.metrics = m
	return l, nil
}

// LogPhoneActivity creates one sales activity for contactID with the given
// note and returns its id. Exactly one notification is sent per call.
func (l *Logger) LogPhoneActivity(ctx context.Context, contactID ID, note string) (ID, error) {
	invocationID := l.newID()
	log := logging.NewInvocationLogger(l.logger, l.collector, invocationID).With("contact_id", int64(contactID))

	if l.guard != nil {
		release, ok := l.guard.Acquire(contactID, note)
		if !ok {
			log.Warn("sales activity already in progress")
			l.sink.Notify(notify.LevelInfo, inProgressMessage)
			l.metrics.observeInvocation("in_progress")
			return 0, ErrInProgress
		}
		defer release()
	}

	operator := &ResolveOperator{Identity: l.identity, Logger: log}
	activityType := &FindActivityType{Directory: l.directory, InternalName: l.settings.TypeInternalName, Logger: log}
	outcome := &FindActivityOutcome{Directory: l.directory, Name: l.settings.OutcomeName, TypeStep: activityType, Logger: log}
	write := &CreateActivityRecord{
		Writer:       l.writer,
		OperatorStep: operator,
		TypeStep:     activityType,
		OutcomeStep:  outcome,
		ContactID:    contactID,
		Note:         note,
		Settings:     l.settings,
		Now:          l.now,
		Logger:       log,
	}

	p := workflow.NewPipeline(
		workflow.WithLogger(log),
		workflow.WithStepTimeout(l.settings.StepTimeout),
		workflow.WithObserver(l.metrics.observeStep),
	)
	if err := p.AddActivity(operator, activityType, outcome, write); err != nil {
		return 0, fmt.Errorf("building pipeline: %w", err)
	}

	log.Info("logging sales activity")
	started := l.now()
	err := p.Execute(ctx)
	inv := Invocation{
		ID:        invocationID,
		ContactID: contactID,
		StartedAt: started,
		Duration:  l.now().Sub(started),
		Steps:     stepResults(p),
	}

	if err != nil {
		aerr := asError(p, err)
		log.Error("failed to log sales activity", "stage", aerr.Stage, "kind", aerr.Kind.String(), "error", aerr.Err)
		l.sink.Notify(notify.LevelDanger, failureMessage)
		l.metrics.observeInvocation(aerr.Kind.String())

		inv.Result = aerr.Kind.String()
		inv.Stage = aerr.Stage
		inv.Error = aerr.Err.Error()
		l.report(inv)
		return 0, aerr
	}

	log.Info("sales activity created", "activity_id", int64(write.CreatedID), "duration", inv.Duration)
	l.sink.Notify(notify.LevelInfo, successMessage)
	l.metrics.observeInvocation(resultSuccess)

	inv.Result = resultSuccess
	inv.ActivityID = write.CreatedID
	l.report(inv)
	return write.CreatedID, nil
}

func (l *Logger) report(inv Invocation) {
	if l.reporter != nil {
		l.reporter.Report(inv)
	}
}

// asError converts a pipeline error into an *Error. Steps classify their own
// failures; anything else (cancellation before a step started, an Init
// failure) is attributed to the first step that did not succeed.
func asError(p *workflow.Pipeline, err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	stage := StageOperator
	results := p.GetAllResults()
	for _, id := range p.Steps() {
		if r := results[id]; r != nil && !r.IsSuccess() {
			stage = stepStages[id.Type]
			break
		}
	}
	return classify(stage, err)
}

func stepResults(p *workflow.Pipeline) []StepResult {
	results := p.GetAllResults()
	steps := make([]StepResult, 0, len(results))
	for _, id := range p.Steps() {
		r := results[id]
		sr := StepResult{Step: stepName(id), State: r.State.String(), Duration: r.Duration}
		if r.Error != nil {
			sr.Error = r.Error.Error()
		}
		steps = append(steps, sr)
	}
	return steps
}

// ReferenceData is the activity type and outcome a record would use.
type ReferenceData struct {
	Type    ActivityType    `json:"type"`
	Outcome ActivityOutcome `json:"outcome"`
}

// CheckReferenceData resolves the configured type and outcome without
// writing anything. Failures are returned as *Error.
func (l *Logger) CheckReferenceData(ctx context.Context) (ReferenceData, error) {
	log := l.logger.With("check", "reference_data")
	activityType := &FindActivityType{Directory: l.directory, InternalName: l.settings.TypeInternalName, Logger: log}
	outcome := &FindActivityOutcome{Directory: l.directory, Name: l.settings.OutcomeName, TypeStep: activityType, Logger: log}

	p := workflow.NewPipeline(workflow.WithLogger(log), workflow.WithStepTimeout(l.settings.StepTimeout))
	if err := p.AddActivity(activityType, outcome); err != nil {
		return ReferenceData{}, fmt.Errorf("building pipeline: %w", err)
	}
	if err := p.Execute(ctx); err != nil {
		return ReferenceData{}, asError(p, err)
	}
	return ReferenceData{Type: activityType.Type, Outcome: outcome.Outcome}, nil
}
