package handlers

import (
	"log/slog"
	"net/http"
)

// ReferenceHandler returns the last reference data check.
type ReferenceHandler struct {
	prober ReferenceProber
}

// NewReferenceHandler creates a new ReferenceHandler.
func NewReferenceHandler(prober ReferenceProber) *ReferenceHandler {
	return &ReferenceHandler{prober: prober}
}

// ServeHTTP implements http.Handler.
func (h *ReferenceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.prober.Status())
}

// ReferenceCheckHandler runs the reference data check immediately.
type ReferenceCheckHandler struct {
	logger *slog.Logger
	prober ReferenceProber
}

// NewReferenceCheckHandler creates a new ReferenceCheckHandler.
func NewReferenceCheckHandler(logger *slog.Logger, prober ReferenceProber) *ReferenceCheckHandler {
	return &ReferenceCheckHandler{logger: logger, prober: prober}
}

// ServeHTTP implements http.Handler. A failed check is still a successful
// request; the failure is reported in the returned status.
func (h *ReferenceCheckHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.prober.Run(r.Context()); err != nil {
		h.logger.Warn("reference data check failed", "error", err)
	}
	writeJSON(w, http.StatusOK, h.prober.Status())
}
