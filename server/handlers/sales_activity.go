package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/nomis52/gocti/salesactivity"
)

const (
	salesActivityFailed     = "Failed to add sales activity"
	salesActivityInProgress = "Sales activity already in progress"
)

// SalesActivityRequest is the body of a sales activity request.
type SalesActivityRequest struct {
	Note string `json:"note"`
}

// SalesActivityResponse is returned when a sales activity was created.
type SalesActivityResponse struct {
	ID        salesactivity.ID `json:"id"`
	ContactID salesactivity.ID `json:"contact_id"`
}

// SalesActivityHandler logs a phone sales activity against the contact in the path.
// The note and contact id are passed to the CRM as given. A request that
// reached the handler runs to completion even if the client goes away.
type SalesActivityHandler struct {
	logger ActivityLogger
}

// NewSalesActivityHandler creates a new SalesActivityHandler.
func NewSalesActivityHandler(logger ActivityLogger) *SalesActivityHandler {
	return &SalesActivityHandler{logger: logger}
}

// ServeHTTP implements http.Handler.
func (h *SalesActivityHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	contactID, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "%v", err)
		return
	}
	var req SalesActivityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "%v", err)
		return
	}

	id, err := h.logger.LogPhoneActivity(context.WithoutCancel(r.Context()), contactID, req.Note)
	if errors.Is(err, salesactivity.ErrInProgress) {
		writeError(w, err, salesActivityInProgress)
		return
	}
	if err != nil {
		writeError(w, err, salesActivityFailed)
		return
	}
	writeJSON(w, http.StatusCreated, SalesActivityResponse{ID: id, ContactID: contactID})
}
