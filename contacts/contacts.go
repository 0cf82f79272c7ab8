// Package contacts lists, creates and looks up CRM contacts for the call panel.
package contacts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nomis52/gocti/clients/crmclient"
	"github.com/nomis52/gocti/notify"
)

// AllContactsView is the name of the built-in view listing every contact.
const AllContactsView = "All Contacts"

var (
	// ErrNoView is returned when no contact view can be chosen for listing.
	ErrNoView = errors.New("no contact view available")

	// ErrPhoneRequired is returned when a phone number is blank.
	ErrPhoneRequired = errors.New("phone number is required")
)

// Client is the part of the CRM API used for contacts.
type Client interface {
	ListContactFilters(ctx context.Context) ([]crmclient.ContactFilter, error)
	ListContacts(ctx context.Context, viewID crmclient.ID, page int) (*crmclient.ContactPage, error)
	CreateContact(ctx context.Context, contact crmclient.Contact) (*crmclient.Contact, error)
	LookupContacts(ctx context.Context, field, value string) ([]crmclient.Contact, error)
}

// Service provides contact operations.
type Service struct {
	client Client
	sink   notify.Sink
	logger *slog.Logger
}

// New creates a Service. A nil sink discards notifications; a nil logger uses slog.Default.
func New(client Client, sink notify.Sink, logger *slog.Logger) *Service {
	if sink == nil {
		sink = notify.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, sink: sink, logger: logger.With("component", "contacts")}
}

// Filters returns the saved contact views.
func (s *Service) Filters(ctx context.Context) ([]crmclient.ContactFilter, error) {
	filters, err := s.client.ListContactFilters(ctx)
	if err != nil {
		s.logger.Error("failed to list contact filters", "error", err)
		return nil, fmt.Errorf("listing contact filters: %w", err)
	}
	return filters, nil
}

// List returns one page of contacts from the "All Contacts" view, falling
// back to the default view, then to the first view.
func (s *Service) List(ctx context.Context, page int) (*crmclient.ContactPage, error) {
	filters, err := s.Filters(ctx)
	if err != nil {
		return nil, err
	}
	view, err := chooseView(filters)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("listing contacts", "view", view.Name, "view_id", int64(view.ID), "page", page)

	contacts, err := s.client.ListContacts(ctx, view.ID, page)
	if err != nil {
		s.logger.Error("failed to list contacts", "view_id", int64(view.ID), "page", page, "error", err)
		return nil, fmt.Errorf("listing contacts in view %q: %w", view.Name, err)
	}
	return contacts, nil
}

func chooseView(filters []crmclient.ContactFilter) (crmclient.ContactFilter, error) {
	for _, f := range filters {
		if strings.EqualFold(f.Name, AllContactsView) {
			return f, nil
		}
	}
	for _, f := range filters {
		if f.IsDefault {
			return f, nil
		}
	}
	if len(filters) > 0 {
		return filters[0], nil
	}
	return crmclient.ContactFilter{}, ErrNoView
}

// Create creates a contact for phone. When no last name is given the phone
// number is used, since the CRM requires one.
func (s *Service) Create(ctx context.Context, phone, firstName, lastName string) (*crmclient.Contact, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		s.sink.Notify(notify.LevelDanger, "Failed to create contact")
		return nil, ErrPhoneRequired
	}
	if lastName == "" {
		lastName = phone
	}

	created, err := s.client.CreateContact(ctx, crmclient.Contact{
		FirstName:    firstName,
		LastName:     lastName,
		MobileNumber: phone,
	})
	if err != nil {
		s.logger.Error("failed to create contact", "error", err)
		s.sink.Notify(notify.LevelDanger, "Failed to create contact")
		return nil, fmt.Errorf("creating contact: %w", err)
	}

	s.logger.Info("contact created", "contact_id", int64(created.ID))
	s.sink.Notify(notify.LevelSuccess, "Contact created successfully")
	return created, nil
}

// FindByPhone returns the contacts whose mobile number matches phone.
func (s *Service) FindByPhone(ctx context.Context, phone string) ([]crmclient.Contact, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, ErrPhoneRequired
	}
	found, err := s.client.LookupContacts(ctx, "mobile_number", phone)
	if err != nil {
		s.logger.Error("failed to look up contacts", "phone", phone, "error", err)
		return nil, fmt.Errorf("looking up %s: %w", phone, err)
	}
	s.logger.Debug("contact lookup", "phone", phone, "matches", len(found))
	return found, nil
}
