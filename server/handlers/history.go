package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nomis52/gocti/logging"
	"github.com/nomis52/gocti/salesactivity"
)

// HistoryHandler handles requests for the invocation history.
type HistoryHandler struct {
	provider HistoryProvider
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(provider HistoryProvider) *HistoryHandler {
	return &HistoryHandler{
		provider: provider,
	}
}

// ServeHTTP implements http.Handler.
func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.provider.History())
}

// InvocationLogsResponse is an invocation together with its captured diagnostics.
type InvocationLogsResponse struct {
	Invocation salesactivity.Invocation `json:"invocation"`
	Logs       []logging.LogEntry       `json:"logs"`
}

// HistoryLogsHandler handles requests for logs of a specific invocation.
type HistoryLogsHandler struct {
	provider HistoryProvider
	logs     LogProvider
}

// NewHistoryLogsHandler creates a new HistoryLogsHandler.
func NewHistoryLogsHandler(provider HistoryProvider, logs LogProvider) *HistoryLogsHandler {
	return &HistoryLogsHandler{
		provider: provider,
		logs:     logs,
	}
}

// ServeHTTP implements http.Handler.
func (h *HistoryLogsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		writeBadRequest(w, "missing invocation id")
		return
	}

	inv, ok := h.provider.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "unknown invocation " + id})
		return
	}

	logs := h.logs.GetLogs(id)
	if logs == nil {
		logs = []logging.LogEntry{}
	}
	writeJSON(w, http.StatusOK, InvocationLogsResponse{Invocation: inv, Logs: logs})
}
