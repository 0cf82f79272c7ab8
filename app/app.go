// Package app assembles the call-logging components from configuration.
//
// Both binaries build their components the same way; they differ only in
// where notifications go and which metrics registry is used:
//
//	c, err := app.Build(app.Params{
//	    Config:   &cfg,
//	    Logger:   logger,
//	    Sink:     notify.NewConsoleSink(os.Stdout),
//	    Registry: registry,
//	})
//	id, err := c.Activities.LogPhoneActivity(ctx, contactID, note)
package app

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/nomis52/gocti/clients/crmclient"
	"github.com/nomis52/gocti/config"
	"github.com/nomis52/gocti/contacts"
	"github.com/nomis52/gocti/logging"
	"github.com/nomis52/gocti/metrics"
	"github.com/nomis52/gocti/notify"
	"github.com/nomis52/gocti/phonecall"
	"github.com/nomis52/gocti/salesactivity"
)

// Params contains common parameters for component construction.
type Params struct {
	// Config is the validated application configuration.
	Config *config.Config

	// Logger is the base logger. Defaults to slog.Default.
	Logger *slog.Logger

	// Sink receives user-facing notifications. May be nil.
	Sink notify.Sink

	// Registry records component metrics. May be nil if metrics are not needed.
	Registry metrics.Registry

	// Collector captures per-invocation diagnostics. May be nil.
	Collector *logging.LogCollector

	// Reporter receives sales activity invocation summaries. May be nil.
	Reporter salesactivity.Reporter
}

// Components are the wired call-logging services.
type Components struct {
	Client     *crmclient.Client
	Identity   salesactivity.IdentityProvider
	Activities *salesactivity.Logger
	Calls      *phonecall.Logger
	Contacts   *contacts.Service
}

// Build creates the CRM client and every service on top of it.
func Build(p Params) (*Components, error) {
	if p.Config == nil {
		return nil, errors.New("config is required")
	}
	cfg := p.Config
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	registry := p.Registry
	if registry == nil {
		registry = metrics.Discard
	}

	client, err := crmclient.New(cfg.CRM.Domain,
		crmclient.WithAPIKey(cfg.CRM.APIKey),
		crmclient.WithTimeout(cfg.CRM.RequestTimeout),
		crmclient.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("creating CRM client: %w", err)
	}

	identity := NewIdentityProvider(cfg.Operator, client)

	saOpts := []salesactivity.Option{
		salesactivity.WithSettings(Settings(cfg.SalesActivity)),
		salesactivity.WithLogger(logger),
		salesactivity.WithDedupe(cfg.SalesActivity.DedupeWindow),
		salesactivity.WithMetricsRegistry(registry),
	}
	if p.Collector != nil {
		saOpts = append(saOpts, salesactivity.WithLogCollector(p.Collector))
	}
	if p.Reporter != nil {
		saOpts = append(saOpts, salesactivity.WithReporter(p.Reporter))
	}
	activities, err := salesactivity.New(identity,
		salesactivity.CRMDirectory{Client: client},
		salesactivity.CRMWriter{Client: client},
		p.Sink, saOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating sales activity logger: %w", err)
	}

	direction, err := crmclient.ParseCallDirection(cfg.PhoneCall.DefaultDirection)
	if err != nil {
		return nil, err
	}
	calls, err := phonecall.New(client, p.Sink,
		phonecall.WithLogger(logger),
		phonecall.WithDefaultDirection(direction),
		phonecall.WithMetricsRegistry(registry),
	)
	if err != nil {
		return nil, fmt.Errorf("creating phone call logger: %w", err)
	}

	return &Components{
		Client:     client,
		Identity:   identity,
		Activities: activities,
		Calls:      calls,
		Contacts:   contacts.New(client, p.Sink, logger),
	}, nil
}

// Settings converts the sales activity configuration.
func Settings(c config.SalesActivityConfig) salesactivity.Settings {
	return salesactivity.Settings{
		TypeInternalName: c.TypeInternalName,
		OutcomeName:      c.OutcomeName,
		Title:            c.Title,
		TargetableType:   c.TargetableType,
		StartDate:        c.StartDate,
		EndDate:          c.EndDate,
		StepTimeout:      c.StepTimeout,
	}
}

// NewIdentityProvider returns a fixed operator when an id is configured and
// otherwise resolves the operator by email.
func NewIdentityProvider(op config.OperatorConfig, owners salesactivity.OwnerLister) salesactivity.IdentityProvider {
	if op.ID != 0 {
		return salesactivity.StaticOperator(op.ID)
	}
	return salesactivity.OwnerLookup{Owners: owners, Email: op.Email}
}
