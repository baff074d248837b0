package handlers

import (
	"context"
	"net/http"

	"github.com/coursemarket/backend/internal/auth"
	"github.com/coursemarket/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// LibraryService is the interface that wraps methods for the buyer's
// course library
type LibraryService interface {
	// ListPurchased retrieves the caller's purchased courses with their
	// full content
	//
	// "userID" parameter is used to identify the caller.
	//
	// If some error will occur during data retrieve, the error will be
	// returned together with "nil" value.
	ListPurchased(ctx context.Context, userID string) ([]models.CourseDetailResponse, error)
}

// ProgressService is the interface that wraps methods for lesson
// completion tracking
type ProgressService interface {
	// ToggleCompletion flips the completion mark of a lesson and returns
	// the new state
	//
	// "userID" parameter is used to identify the caller.
	// "lessonID" parameter is used to identify the lesson.
	//
	// The course must be purchased; otherwise a forbidden error is
	// returned.
	ToggleCompletion(ctx context.Context, userID, lessonID string) (bool, error)
	// ListCompleted retrieves the lesson ids the caller completed in a
	// course
	ListCompleted(ctx context.Context, userID, courseID string) ([]string, error)
}

// LibraryHandler handles the buyer's purchased content HTTP requests
type LibraryHandler struct {
	BaseHandler
	library  LibraryService
	progress ProgressService
}

// NewLibraryHandler creates a new library handler
func NewLibraryHandler(library LibraryService, progress ProgressService, logger *zap.Logger) *LibraryHandler {
	return &LibraryHandler{
		BaseHandler: BaseHandler{Logger: logger},
		library:     library,
		progress:    progress,
	}
}

// RegisterRoutes registers all library handler routes
func (h *LibraryHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/me", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/courses", h.ListPurchased)
		r.Get("/courses/{courseId}/completed-lessons", h.ListCompleted)
	})
	r.With(authMiddleware).Post("/lessons/{lessonId}/completion", h.ToggleCompletion)
}

// ListPurchased handles GET /api/v1/me/courses
// @Summary List purchased courses
// @Description Get the caller's purchased courses with full content, newest purchase first. Requires authentication.
// @Tags library
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.CourseDetailResponse "Purchased courses"
// @Failure 401 {object} map[string]string "Unauthorized - authentication required"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/me/courses [get]
func (h *LibraryHandler) ListPurchased(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	courses, err := h.library.ListPurchased(r.Context(), userID)
	if err != nil {
		h.Logger.Error("failed to list purchased courses", zap.Error(err))
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, courses)
}

// ListCompleted handles GET /api/v1/me/courses/{courseId}/completed-lessons
// @Summary List completed lessons
// @Description Get the lesson ids the caller completed in a course. Requires authentication.
// @Tags library
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course ID"
// @Success 200 {array} string "Completed lesson ids"
// @Failure 401 {object} map[string]string "Unauthorized - authentication required"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/me/courses/{courseId}/completed-lessons [get]
func (h *LibraryHandler) ListCompleted(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	lessonIDs, err := h.progress.ListCompleted(r.Context(), userID, chi.URLParam(r, "courseId"))
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, lessonIDs)
}

// ToggleCompletion handles POST /api/v1/lessons/{lessonId}/completion
// @Summary Toggle lesson completion
// @Description Flip the completion mark of a lesson and return the new state. The course must be purchased. Requires authentication.
// @Tags library
// @Produce json
// @Security ApiKeyAuth
// @Param lessonId path string true "Lesson ID"
// @Success 200 {object} map[string]bool "New completion state"
// @Failure 401 {object} map[string]string "Unauthorized - authentication required"
// @Failure 403 {object} map[string]string "Forbidden - course not purchased"
// @Failure 404 {object} map[string]string "Lesson not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/lessons/{lessonId}/completion [post]
func (h *LibraryHandler) ToggleCompletion(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	completed, err := h.progress.ToggleCompletion(r.Context(), userID, chi.URLParam(r, "lessonId"))
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]bool{"completed": completed})
}
