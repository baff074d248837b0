package handlers

import (
	"context"
	"net/http"

	"github.com/coursemarket/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UserService is the interface that wraps methods for user listing
// business logic
type UserService interface {
	// ListWithStats retrieves all users with purchase and completion
	// counters
	ListWithStats(ctx context.Context) ([]models.AdminUserItem, error)
}

// AdminUserHandler handles admin user listing HTTP requests
type AdminUserHandler struct {
	BaseHandler
	service UserService
}

// NewAdminUserHandler creates a new admin user handler
func NewAdminUserHandler(service UserService, logger *zap.Logger) *AdminUserHandler {
	return &AdminUserHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     service,
	}
}

// RegisterRoutes registers the user listing route on an admin-scoped
// router
func (h *AdminUserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/users", h.ListUsers)
}

// ListUsers handles GET /api/v1/admin/users
// @Summary List users
// @Description Get all users with purchased course and completed lesson counters. Requires admin role.
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.AdminUserItem "Users"
// @Failure 401 {object} map[string]string "Unauthorized - authentication required"
// @Failure 403 {object} map[string]string "Forbidden - admin role required"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/admin/users [get]
func (h *AdminUserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListWithStats(r.Context())
	if err != nil {
		h.Logger.Error("failed to list users", zap.Error(err))
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, users)
}
