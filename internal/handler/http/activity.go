package http

import (
	"log/slog"
	"net/http"

	"github.com/NSBM-SE-Projects/atelier/internal/service"
	"github.com/NSBM-SE-Projects/atelier/pkg/httputil"
)

// ActivityHandler handles the admin activity feed and notifications.
type ActivityHandler struct {
	service *service.ActivityService
	logger  *slog.Logger
}

// NewActivityHandler creates a new activity HTTP handler.
func NewActivityHandler(svc *service.ActivityService, logger *slog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: svc,
		logger:  logger,
	}
}

// List handles GET /api/admin/activities
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	activities, err := h.service.ListActivities(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, activities)
}

// Notifications handles GET /api/admin/activities/notifications
func (h *ActivityHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Notifications(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, snapshot)
}

// UnreadCount handles GET /api/admin/activities/notifications/count
func (h *ActivityHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.UnreadCount(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]int{"count": count})
}

// MarkAllRead handles POST /api/admin/activities/notifications/mark-all-read
func (h *ActivityHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.service.MarkAllRead(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.NoContent(w)
}
