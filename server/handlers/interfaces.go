// Package handlers provides HTTP handlers for the gocti server.
//
// Each handler is in its own file and implements http.Handler.
// Handlers use interfaces to access server dependencies, avoiding
// circular imports.
package handlers

import (
	"context"

	"github.com/nomis52/gocti/clients/crmclient"
	"github.com/nomis52/gocti/logging"
	"github.com/nomis52/gocti/notify"
	"github.com/nomis52/gocti/phonecall"
	"github.com/nomis52/gocti/salesactivity"
	"github.com/nomis52/gocti/server/types"
)

// ActivityLogger logs phone sales activities.
type ActivityLogger interface {
	LogPhoneActivity(ctx context.Context, contactID salesactivity.ID, note string) (salesactivity.ID, error)
}

// CallLogger logs phone calls.
type CallLogger interface {
	LogCall(ctx context.Context, contact crmclient.Contact, call phonecall.Call, note string) (crmclient.ID, error)
}

// ContactService lists, creates and looks up contacts.
type ContactService interface {
	Filters(ctx context.Context) ([]crmclient.ContactFilter, error)
	List(ctx context.Context, page int) (*crmclient.ContactPage, error)
	Create(ctx context.Context, phone, firstName, lastName string) (*crmclient.Contact, error)
	FindByPhone(ctx context.Context, phone string) ([]crmclient.Contact, error)
}

// IdentityProvider resolves the current operator.
type IdentityProvider interface {
	CurrentOperator(ctx context.Context) (salesactivity.Operator, error)
}

// NotificationFeed provides access to recent notifications.
type NotificationFeed interface {
	Since(seq uint64) []notify.Notification
}

// HistoryProvider provides access to invocation history.
type HistoryProvider interface {
	History() []salesactivity.Invocation
	Get(id string) (salesactivity.Invocation, bool)
}

// LogProvider provides access to captured invocation diagnostics.
type LogProvider interface {
	GetLogs(id string) []logging.LogEntry
}

// ReferenceProber reports and refreshes the reference data check.
type ReferenceProber interface {
	Status() types.ProbeStatus
	Run(ctx context.Context) error
}

// PropertiesProvider provides the server metadata.
type PropertiesProvider interface {
	Properties() types.ServerProperties
}
