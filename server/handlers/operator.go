package handlers

import (
	"log/slog"
	"net/http"

	"github.com/nomis52/gocti/salesactivity"
)

// OperatorResponse describes who activities are logged as.
type OperatorResponse struct {
	ID     salesactivity.ID `json:"id"`
	Domain string           `json:"domain"`
}

// OperatorHandler resolves the current operator.
type OperatorHandler struct {
	logger   *slog.Logger
	identity IdentityProvider
	domain   string
}

// NewOperatorHandler creates a new OperatorHandler.
func NewOperatorHandler(logger *slog.Logger, identity IdentityProvider, domain string) *OperatorHandler {
	return &OperatorHandler{logger: logger, identity: identity, domain: domain}
}

// ServeHTTP implements http.Handler.
func (h *OperatorHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	op, err := h.identity.CurrentOperator(r.Context())
	if err != nil {
		h.logger.Error("failed to resolve operator", "error", err)
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: "Failed to resolve operator"})
		return
	}
	writeJSON(w, http.StatusOK, OperatorResponse{ID: op.ID, Domain: h.domain})
}
