// Package phonecall logs phone calls against CRM contacts.
package phonecall

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nomis52/gocti/clients/crmclient"
	"github.com/nomis52/gocti/metrics"
	"github.com/nomis52/gocti/notify"
)

const (
	successMessage = "Phone call logged successfully"
	failureMessage = "Failed to log phone call"
)

// ErrContactRequired is returned when the call has no contact to attach to.
var ErrContactRequired = errors.New("contact id is required")

// Creator is the part of the CRM API that records phone calls.
type Creator interface {
	CreatePhoneCall(ctx context.Context, call crmclient.PhoneCall) (crmclient.ID, error)
}

// Call describes the call being logged.
type Call struct {
	// Direction defaults to the logger's default direction when empty.
	Direction   crmclient.CallDirection `json:"type"`
	PhoneNumber string                  `json:"phone_number"`
}

// Logger records phone calls and notifies the operator of the result.
type Logger struct {
	client    Creator
	sink      notify.Sink
	logger    *slog.Logger
	direction crmclient.CallDirection
	registry  metrics.Registry
	calls     metrics.CounterVec
}

// Option configures a Logger.
type Option func(*Logger)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Logger) {
		l.logger = logger
	}
}

// WithDefaultDirection sets the direction used when a Call has none.
func WithDefaultDirection(d crmclient.CallDirection) Option {
	return func(l *Logger) {
		l.direction = d
	}
}

// WithMetricsRegistry records a phone_calls_total counter in registry.
func WithMetricsRegistry(registry metrics.Registry) Option {
	return func(l *Logger) {
		l.registry = registry
	}
}

// New creates a Logger. A nil sink discards notifications.
func New(client Creator, sink notify.Sink, opts ...Option) (*Logger, error) {
	if client == nil {
		return nil, errors.New("phone call client is required")
	}
	if sink == nil {
		sink = notify.Discard
	}
	l := &Logger{
		client:    client,
		sink:      sink,
		logger:    slog.Default(),
		direction: crmclient.CallOutgoing,
		registry:  metrics.Discard,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With("component", "phonecall")

	calls, err := l.registry.NewCounterVec(prometheus.CounterOpts{
		Name: "phone_calls_total",
		Help: "Phone call log attempts by result.",
	}, []string{"result"})
	if err != nil {
		return nil, fmt.Errorf("creating phone calls counter: %w", err)
	}
	l.calls = calls
	return l, nil
}

// LogCall records a call with contact and returns the id of the call log.
// The contact's mobile number is taken from the call when the contact has none.
func (l *Logger) LogCall(ctx context.Context, contact crmclient.Contact, call Call, note string) (crmclient.ID, error) {
	direction := call.Direction
	if direction == "" {
		direction = l.direction
	}
	if _, err := crmclient.ParseCallDirection(string(direction)); err != nil {
		l.fail(contact.ID, err)
		return 0, err
	}
	if contact.ID == 0 {
		l.fail(contact.ID, ErrContactRequired)
		return 0, ErrContactRequired
	}
	if contact.MobileNumber == "" {
		contact.MobileNumber = call.PhoneNumber
	}

	id, err := l.client.CreatePhoneCall(ctx, crmclient.PhoneCall{
		Direction:      direction,
		TargetableType: "Contact",
		Targetable:     contact,
		Note:           note,
	})
	if err != nil {
		err = fmt.Errorf("creating phone call: %w", err)
		l.fail(contact.ID, err)
		return 0, err
	}

	l.logger.Info("phone call logged", "contact_id", int64(contact.ID), "call_id", int64(id), "direction", string(direction))
	l.sink.Notify(notify.LevelSuccess, successMessage)
	l.calls.With(prometheus.Labels{"result": "success"}).Inc()
	return id, nil
}

func (l *Logger) fail(contactID crmclient.ID, err error) {
	l.logger.Error("failed to log phone call", "contact_id", int64(contactID), "error", err)
	l.sink.Notify(notify.LevelDanger, failureMessage)
	l.calls.With(prometheus.Labels{"result": "failure"}).Inc()
}
