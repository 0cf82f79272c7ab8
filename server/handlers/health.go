package handlers

import "net/http"

// HandleHealth is a simple liveness handler that returns "ok".
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "ok")
}

// ReadyHandler reports whether the configured reference data resolved on
// the last check. Until then the server is not ready to log activities.
type ReadyHandler struct {
	prober ReferenceProber
}

// NewReadyHandler creates a new ReadyHandler.
func NewReadyHandler(prober ReferenceProber) *ReadyHandler {
	return &ReadyHandler{prober: prober}
}

// ServeHTTP implements http.Handler.
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.prober.Status().Ready {
		writeText(w, http.StatusServiceUnavailable, "not ready")
		return
	}
	writeText(w, http.StatusOK, "ready")
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
