package handlers

import (
	"net/http"

	"github.com/nomis52/gocti/server/types"
)

// APIStatusResponse is the consolidated response for /api/status.
type APIStatusResponse struct {
	Server    types.ServerProperties `json:"server"`
	Reference types.ProbeStatus      `json:"reference"`
}

// APIStatusHandler handles requests for the consolidated status endpoint.
type APIStatusHandler struct {
	props  PropertiesProvider
	prober ReferenceProber
}

// NewAPIStatusHandler creates a new APIStatusHandler.
func NewAPIStatusHandler(props PropertiesProvider, prober ReferenceProber) *APIStatusHandler {
	return &APIStatusHandler{
		props:  props,
		prober: prober,
	}
}

// ServeHTTP implements http.Handler.
func (h *APIStatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIStatusResponse{
		Server:    h.props.Properties(),
		Reference: h.prober.Status(),
	})
}
