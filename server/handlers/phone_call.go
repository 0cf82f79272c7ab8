package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/nomis52/gocti/clients/crmclient"
	"github.com/nomis52/gocti/phonecall"
)

// PhoneCallRequest is the body of a phone call request. The contact id is
// taken from the path; the other contact fields fill the call's targetable.
type PhoneCallRequest struct {
	Direction   string            `json:"direction"`
	PhoneNumber string            `json:"phone_number"`
	Note        string            `json:"note"`
	Contact     crmclient.Contact `json:"contact"`
}

// PhoneCallResponse is returned when a phone call was logged.
type PhoneCallResponse struct {
	ID crmclient.ID `json:"id"`
}

// PhoneCallHandler logs a phone call against the contact in the path. Like
// SalesActivityHandler it is not cancelled by a client disconnect.
type PhoneCallHandler struct {
	calls CallLogger
}

// NewPhoneCallHandler creates a new PhoneCallHandler.
func NewPhoneCallHandler(calls CallLogger) *PhoneCallHandler {
	return &PhoneCallHandler{calls: calls}
}

// ServeHTTP implements http.Handler.
func (h *PhoneCallHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	contactID, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "%v", err)
		return
	}
	var req PhoneCallRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "%v", err)
		return
	}

	call := phonecall.Call{PhoneNumber: req.PhoneNumber}
	if req.Direction != "" {
		d, err := crmclient.ParseCallDirection(req.Direction)
		if err != nil {
			writeBadRequest(w, "%v", err)
			return
		}
		call.Direction = d
	}

	contact := req.Contact
	contact.ID = contactID
	id, err := h.calls.LogCall(context.WithoutCancel(r.Context()), contact, call, req.Note)
	if errors.Is(err, phonecall.ErrContactRequired) {
		writeBadRequest(w, "%v", err)
		return
	}
	if err != nil {
		writeError(w, err, "Failed to log phone call")
		return
	}
	writeJSON(w, http.StatusCreated, PhoneCallResponse{ID: id})
}
