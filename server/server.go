// Package server provides the HTTP API behind the operator's call panel.
//
// The panel logs calls and sales activities against CRM contacts, shows
// the resulting notifications as toasts, and lets operators look at what
// happened to recent invocations.
//
// # Endpoints
//
//   - GET /health - Liveness check, returns "ok"
//   - GET /ready - 200 once the configured reference data resolved
//   - GET /metrics - Prometheus metrics
//   - GET /api/status - Build, host and reference data status
//   - GET /api/operator - The operator activities are logged as
//   - GET /api/contacts - A page of contacts, or a lookup with ?phone=
//   - POST /api/contacts - Creates a contact
//   - GET /api/contacts/filters - Saved contact views
//   - POST /api/contacts/{id}/sales-activities - Logs a phone sales activity
//   - POST /api/contacts/{id}/phone-calls - Logs a phone call
//   - GET /api/notifications - Notifications newer than ?since=
//   - GET /api/history - Recent sales activity invocations
//   - GET /api/history/{id}/logs - One invocation with its diagnostics
//   - GET /api/reference - Last reference data check
//   - POST /api/reference/check - Runs the reference data check now
//
// # Example
//
//	srv, err := server.New(cfg, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nomis52/gocti/app"
	"github.com/nomis52/gocti/buildinfo"
	"github.com/nomis52/gocti/config"
	"github.com/nomis52/gocti/logging"
	"github.com/nomis52/gocti/metrics"
	"github.com/nomis52/gocti/notify"
	"github.com/nomis52/gocti/server/cron"
	"github.com/nomis52/gocti/server/handlers"
	"github.com/nomis52/gocti/server/history"
	"github.com/nomis52/gocti/server/types"
)

const (
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 60 * time.Second
	defaultShutdownTimeout = 5 * time.Second
)

// Server is the HTTP server for the call panel.
type Server struct {
	addr      string
	cronSpec  string
	tlsCert   string
	tlsKey    string
	logger    *slog.Logger
	props     types.ServerProperties
	domain    string
	feed      *notify.Feed
	history   *history.MemoryStore
	collector *logging.LogCollector
	registry  *metrics.ScrapeRegistry
	requests  metrics.CounterVec

	components  *app.Components
	probe       *ReferenceProbe
	cronTrigger *cron.CronTrigger
	certLoader  *CertLoader
	httpServer  *http.Server
}

// Option configures a Server.
type Option func(*Server) error

// WithListenAddr overrides server.listen.
func WithListenAddr(addr string) Option {
	return func(s *Server) error {
		s.addr = addr
		return nil
	}
}

// WithCron overrides server.probe_schedule. An empty spec disables the
// scheduled reference data check.
func WithCron(spec string) Option {
	return func(s *Server) error {
		s.cronSpec = spec
		return nil
	}
}

// WithTLS serves HTTPS using the given certificate and key files.
func WithTLS(certFile, keyFile string) Option {
	return func(s *Server) error {
		s.tlsCert, s.tlsKey = certFile, keyFile
		return nil
	}
}

// New creates a Server from cfg, which must already be validated.
func New(cfg config.Config, logger *slog.Logger, opts ...Option) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("getting hostname: %w", err)
	}

	s := &Server{
		addr:     cfg.Server.Listen,
		cronSpec: cfg.Server.ProbeSchedule,
		tlsCert:  cfg.Server.TLSCert,
		tlsKey:   cfg.Server.TLSKey,
		logger:   logger,
		domain:   cfg.CRM.Domain,
		props: types.ServerProperties{
			Build:     buildinfo.Get(),
			StartedAt: time.Now(),
			Hostname:  hostname,
			CRMDomain: cfg.CRM.Domain,
		},
		feed:      notify.NewFeed(cfg.Server.NotificationBuffer),
		history:   history.NewMemoryStore(cfg.Server.HistorySize),
		collector: logging.NewLogCollector(cfg.Server.DiagnosticsTTL),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	s.registry, err = metrics.NewScrapeRegistry(metrics.WithPrefix(cfg.Monitoring.MetricsPrefix))
	if err != nil {
		return nil, fmt.Errorf("creating metrics registry: %w", err)
	}
	s.requests, err = s.registry.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "code"})
	if err != nil {
		return nil, fmt.Errorf("creating request counter: %w", err)
	}

	s.components, err = app.Build(app.Params{
		Config:    &cfg,
		Logger:    logger,
		Sink:      notify.Multi{s.feed, notify.LogSink{Logger: logger}},
		Registry:  s.registry,
		Collector: s.collector,
		Reporter:  s.history,
	})
	if err != nil {
		return nil, err
	}

	s.probe, err = NewReferenceProbe(s.components.Activities, s.registry, logger)
	if err != nil {
		return nil, err
	}

	if s.cronSpec != "" {
		s.cronTrigger, err = cron.NewCronTrigger(s.cronSpec, s.probe.Run, logger)
		if err != nil {
			return nil, fmt.Errorf("creating cron trigger: %w", err)
		}
		s.probe.setSchedule(s.cronTrigger.NextRun)
	}

	if s.tlsCert != "" || s.tlsKey != "" {
		s.certLoader, err = NewCertLoader(s.tlsCert, s.tlsKey, logger)
		if err != nil {
			return nil, fmt.Errorf("loading tls certificate: %w", err)
		}
	}

	return s, nil
}

// Logger returns the server's logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}

// Properties returns metadata about the running server.
func (s *Server) Properties() types.ServerProperties {
	return s.props
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	c := s.components

	r := mux.NewRouter()
	r.Use(instrument(s.logger, s.requests))

	r.HandleFunc("/health", handlers.HandleHealth).Methods(http.MethodGet)
	r.Handle("/ready", handlers.NewReadyHandler(s.probe)).Methods(http.MethodGet)
	r.Handle("/metrics", s.registry.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Handle("/status", handlers.NewAPIStatusHandler(s, s.probe)).Methods(http.MethodGet)
	api.Handle("/operator", handlers.NewOperatorHandler(s.logger, c.Identity, s.domain)).Methods(http.MethodGet)
	api.Handle("/contacts", handlers.NewContactsHandler(c.Contacts)).Methods(http.MethodGet)
	api.Handle("/contacts", handlers.NewCreateContactHandler(c.Contacts)).Methods(http.MethodPost)
	api.Handle("/contacts/filters", handlers.NewContactFiltersHandler(c.Contacts)).Methods(http.MethodGet)
	api.Handle("/contacts/{id:[0-9]+}/sales-activities", handlers.NewSalesActivityHandler(c.Activities)).Methods(http.MethodPost)
	api.Handle("/contacts/{id:[0-9]+}/phone-calls", handlers.NewPhoneCallHandler(c.Calls)).Methods(http.MethodPost)
	api.Handle("/notifications", handlers.NewNotificationsHandler(s.feed)).Methods(http.MethodGet)
	api.Handle("/history", handlers.NewHistoryHandler(s.history)).Methods(http.MethodGet)
	api.Handle("/history/{id}/logs", handlers.NewHistoryLogsHandler(s.history, s.collector)).Methods(http.MethodGet)
	api.Handle("/reference", handlers.NewReferenceHandler(s.probe)).Methods(http.MethodGet)
	api.Handle("/reference/check", handlers.NewReferenceCheckHandler(s.logger, s.probe)).Methods(http.MethodPost)

	return r
}

// Run starts the HTTP server and blocks until the context is cancelled.
// It performs a graceful shutdown when the context is done.
// The reference data is checked once at startup and then on the cron
// schedule, if one is configured.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
	}
	if s.certLoader != nil {
		s.httpServer.TLSConfig = s.certLoader.TLSConfig()
	}

	go func() {
		// Failures are logged and recorded by the probe itself.
		_ = s.probe.Run(ctx)
	}()

	if s.cronTrigger != nil {
		s.logger.Info("starting reference data probe",
			"schedule", s.cronTrigger.Spec(),
			"next_run", s.cronTrigger.NextRun(),
		)
		s.cronTrigger.Start(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server",
			"addr", s.addr,
			"tls", s.certLoader != nil,
			"crm_domain", s.domain,
		)
		var err error
		if s.certLoader != nil {
			err = s.httpServer.ListenAndServeTLS("", "")
		} else {
			err = s.httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}
