package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/nomis52/gocti/clients/crmclient"
	"github.com/nomis52/gocti/salesactivity"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// ErrorResponse is returned when an error occurs. Error is a fixed message
// for the operator; the cause is only logged.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Stage string `json:"stage,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// writeError writes message with the status chosen by statusFor for err.
// Only the kind and stage of err are exposed.
func writeError(w http.ResponseWriter, err error, message string) {
	resp := ErrorResponse{Error: message}
	var e *salesactivity.Error
	if errors.As(err, &e) {
		resp.Kind = e.Kind.String()
		resp.Stage = string(e.Stage)
	}
	writeJSON(w, statusFor(err), resp)
}

func writeBadRequest(w http.ResponseWriter, format string, args ...any) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf(format, args...)})
}

// statusFor maps a service error to an HTTP status.
func statusFor(err error) int {
	if errors.Is(err, salesactivity.ErrInProgress) {
		return http.StatusConflict
	}
	var e *salesactivity.Error
	if errors.As(err, &e) {
		switch e.Kind {
		case salesactivity.KindReferenceDataNotFound:
			return http.StatusUnprocessableEntity
		case salesactivity.KindTimeout:
			return http.StatusGatewayTimeout
		case salesactivity.KindCanceled:
			return http.StatusServiceUnavailable
		default:
			return http.StatusBadGateway
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	var statusErr *crmclient.StatusError
	if errors.As(err, &statusErr) || errors.Is(err, crmclient.ErrMissingID) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// pathID parses the named route variable as a CRM id. Whether the id exists
// is left to the CRM.
func pathID(r *http.Request, name string) (crmclient.ID, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return crmclient.ID(id), nil
}
