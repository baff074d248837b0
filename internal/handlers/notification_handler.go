package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/coursemarket/backend/internal/auth"
	"github.com/coursemarket/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// NotificationService is the interface that wraps methods for
// notification business logic
type NotificationService interface {
	// Send broadcasts a notification to every user
	//
	// "req" parameter carries the title, content and optional link.
	//
	// Returns the number of recipients and an error if any.
	Send(ctx context.Context, req *models.SendNotificationRequest) (int64, error)
	// List retrieves the caller's notifications, newest first
	List(ctx context.Context, userID string) ([]models.Notification, error)
	// MarkAllRead marks every unread notification of the caller as read
	MarkAllRead(ctx context.Context, userID string) error
}

// NotificationHandler handles notification HTTP requests
type NotificationHandler struct {
	BaseHandler
	service NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(service NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     service,
	}
}

// RegisterRoutes registers the user-facing notification routes
func (h *NotificationHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/notifications", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.ListNotifications)
		r.Post("/read", h.MarkAllRead)
	})
}

// RegisterAdminRoutes registers the broadcast route on an admin-scoped
// router
func (h *NotificationHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/notifications", h.SendNotification)
}

// ListNotifications handles GET /api/v1/notifications
// @Summary List notifications
// @Description Get the caller's notifications, newest first. Requires authentication.
// @Tags notifications
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.Notification "Notifications"
// @Failure 401 {object} map[string]string "Unauthorized - authentication required"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/notifications [get]
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	notifications, err := h.service.List(r.Context(), userID)
	if err != nil {
		h.Logger.Error("failed to list notifications", zap.Error(err))
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, notifications)
}

// MarkAllRead handles POST /api/v1/notifications/read
// @Summary Mark all notifications read
// @Description Mark every unread notification of the caller as read. Requires authentication.
// @Tags notifications
// @Produce json
// @Security ApiKeyAuth
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized - authentication required"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/notifications/read [post]
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.service.MarkAllRead(r.Context(), userID); err != nil {
		h.Logger.Error("failed to mark notifications read", zap.Error(err))
		h.RespondAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SendNotification handles POST /api/v1/admin/notifications
// @Summary Broadcast a notification
// @Description Send a notification to every user. Requires admin role.
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.SendNotificationRequest true "Notification payload"
// @Success 200 {object} map[string]int64 "Number of recipients"
// @Failure 400 {object} map[string]string "Bad request - validation error"
// @Failure 401 {object} map[string]string "Unauthorized - authentication required"
// @Failure 403 {object} map[string]string "Forbidden - admin role required"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/admin/notifications [post]
func (h *NotificationHandler) SendNotification(w http.ResponseWriter, r *http.Request) {
	var req models.SendNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("failed to decode request body", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	delivered, err := h.service.Send(r.Context(), &req)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]int64{"recipients": delivered})
}
