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

// CommentService is the interface that wraps methods for lesson comment
// business logic
type CommentService interface {
	// Create posts a comment on a lesson of a purchased course
	//
	// "userID" parameter is used to identify the author.
	// "req" parameter carries the lesson, optional parent and content.
	//
	// If validation fails or the course was not purchased, the error
	// will be returned together with "nil" value.
	Create(ctx context.Context, userID string, req *models.CreateCommentRequest) (*models.LessonComment, error)
	// ListByLesson retrieves the comment thread of a lesson
	ListByLesson(ctx context.Context, userID, lessonID string) ([]models.CommentResponse, error)
	// Delete removes a comment; only the author or an admin may delete
	Delete(ctx context.Context, userID string, role models.Role, commentID string) error
}

// CommentHandler handles lesson comment HTTP requests
type CommentHandler struct {
	BaseHandler
	service CommentService
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(service CommentService, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     service,
	}
}

// RegisterRoutes registers all comment handler routes
func (h *CommentHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.With(authMiddleware).Get("/lessons/{lessonId}/comments", h.ListComments)
	r.Route("/comments", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.CreateComment)
		r.Delete("/{commentId}", h.DeleteComment)
	})
}

// ListComments handles GET /api/v1/lessons/{lessonId}/comments
// @Summary List lesson comments
// @Description Get the comment thread of a lesson, top-level comments with replies. The course must be purchased. Requires authentication.
// @Tags comments
// @Produce json
// @Security ApiKeyAuth
// @Param lessonId path string true "Lesson ID"
// @Success 200 {array} models.CommentResponse "Comment threads"
// @Failure 401 {object} map[string]string "Unauthorized - authentication required"
// @Failure 403 {object} map[string]string "Forbidden - course not purchased"
// @Failure 404 {object} map[string]string "Lesson not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/lessons/{lessonId}/comments [get]
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	comments, err := h.service.ListByLesson(r.Context(), userID, chi.URLParam(r, "lessonId"))
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, comments)
}

// CreateComment handles POST /api/v1/comments
// @Summary Post a comment
// @Description Post a comment or reply on a lesson of a purchased course. Content is limited to 500 characters. Requires authentication.
// @Tags comments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.CreateCommentRequest true "Comment data"
// @Success 201 {object} models.LessonComment "Created comment"
// @Failure 400 {object} map[string]string "Bad request - validation error"
// @Failure 401 {object} map[string]string "Unauthorized - authentication required"
// @Failure 403 {object} map[string]string "Forbidden - course not purchased"
// @Failure 404 {object} map[string]string "Lesson or parent comment not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/comments [post]
func (h *CommentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req models.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("failed to decode request body", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	comment, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, comment)
}

// DeleteComment handles DELETE /api/v1/comments/{commentId}
// @Summary Delete a comment
// @Description Delete a comment and its replies. Only the author or an admin may delete. Requires authentication.
// @Tags comments
// @Produce json
// @Security ApiKeyAuth
// @Param commentId path string true "Comment ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized - authentication required"
// @Failure 403 {object} map[string]string "Forbidden - not the author"
// @Failure 404 {object} map[string]string "Comment not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/comments/{commentId} [delete]
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	role, _ := auth.GetRole(r.Context())

	if err := h.service.Delete(r.Context(), userID, role, chi.URLParam(r, "commentId")); err != nil {
		h.RespondAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
