package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/nomis52/gocti/contacts"
)

// CreateContactRequest is the body of a create contact request.
type CreateContactRequest struct {
	PhoneNumber string `json:"phone_number"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
}

// ContactsHandler lists contacts, or looks them up by phone number when
// the phone query parameter is present.
type ContactsHandler struct {
	service ContactService
}

// NewContactsHandler creates a new ContactsHandler.
func NewContactsHandler(service ContactService) *ContactsHandler {
	return &ContactsHandler{service: service}
}

// ServeHTTP implements http.Handler.
func (h *ContactsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Has("phone") {
		found, err := h.service.FindByPhone(r.Context(), q.Get("phone"))
		if errors.Is(err, contacts.ErrPhoneRequired) {
			writeBadRequest(w, "%v", err)
			return
		}
		if err != nil {
			writeError(w, err, "Failed to look up contacts")
			return
		}
		writeJSON(w, http.StatusOK, found)
		return
	}

	page := 1
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeBadRequest(w, "invalid page %q", raw)
			return
		}
		page = n
	}
	result, err := h.service.List(r.Context(), page)
	if err != nil {
		writeError(w, err, "Failed to list contacts")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CreateContactHandler creates a contact.
type CreateContactHandler struct {
	service ContactService
}

// NewCreateContactHandler creates a new CreateContactHandler.
func NewCreateContactHandler(service ContactService) *CreateContactHandler {
	return &CreateContactHandler{service: service}
}

// ServeHTTP implements http.Handler.
func (h *CreateContactHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req CreateContactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "%v", err)
		return
	}
	created, err := h.service.Create(r.Context(), req.PhoneNumber, req.FirstName, req.LastName)
	if errors.Is(err, contacts.ErrPhoneRequired) {
		writeBadRequest(w, "%v", err)
		return
	}
	if err != nil {
		writeError(w, err, "Failed to create contact")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ContactFiltersHandler returns the saved contact views.
type ContactFiltersHandler struct {
	service ContactService
}

// NewContactFiltersHandler creates a new ContactFiltersHandler.
func NewContactFiltersHandler(service ContactService) *ContactFiltersHandler {
	return &ContactFiltersHandler{service: service}
}

// ServeHTTP implements http.Handler.
func (h *ContactFiltersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	filters, err := h.service.Filters(r.Context())
	if err != nil {
		writeError(w, err, "Failed to fetch contact filters")
		return
	}
	writeJSON(w, http.StatusOK, filters)
}
