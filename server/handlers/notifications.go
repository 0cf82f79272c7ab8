package handlers

import (
	"net/http"
	"strconv"

	"github.com/nomis52/gocti/notify"
)

// NotificationsResponse carries notifications newer than the requested
// sequence number. Clients pass Last back as since on the next poll.
type NotificationsResponse struct {
	Notifications []notify.Notification `json:"notifications"`
	Last          uint64                `json:"last"`
}

// NotificationsHandler serves the notification feed.
type NotificationsHandler struct {
	feed NotificationFeed
}

// NewNotificationsHandler creates a new NotificationsHandler.
func NewNotificationsHandler(feed NotificationFeed) *NotificationsHandler {
	return &NotificationsHandler{feed: feed}
}

// ServeHTTP implements http.Handler.
func (h *NotificationsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var since uint64
	if raw := r.URL.Query().Get("since"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeBadRequest(w, "invalid since %q", raw)
			return
		}
		since = n
	}

	items := h.feed.Since(since)
	last := since
	if len(items) > 0 {
		last = items[len(items)-1].Seq
	}
	writeJSON(w, http.StatusOK, NotificationsResponse{Notifications: items, Last: last})
}
