package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/coursemarket/backend/internal/auth"
	"github.com/coursemarket/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CatalogService is the interface that wraps methods for public catalog
// business logic
type CatalogService interface {
	// ListPublished retrieves the published catalog with tags and module
	// outlines
	//
	// "search" parameter is used to filter courses by title or description.
	// "tagIDs" parameter is used to filter courses by tag.
	//
	// If some error will occur during data retrieve, the error will be
	// returned together with "nil" value.
	ListPublished(ctx context.Context, search string, tagIDs []string) ([]models.CourseDetailResponse, error)
	// GetBySlug retrieves one course with its full content
	//
	// "slug" parameter is used to identify the course.
	// "userID" parameter is the optional caller, empty for anonymous
	// visitors. Video ids appear only for buyers.
	//
	// If the course is missing or some error will occur during data
	// retrieve, the error will be returned together with "nil" value.
	GetBySlug(ctx context.Context, slug, userID string) (*models.CourseDetailResponse, error)
	// ListTags retrieves all tags for catalog filtering
	ListTags(ctx context.Context) ([]models.CourseTag, error)
}

// CatalogHandler handles public catalog HTTP requests
type CatalogHandler struct {
	BaseHandler
	service CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(service CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     service,
	}
}

// RegisterRoutes registers all catalog handler routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router, optionalAuth func(http.Handler) http.Handler) {
	r.Get("/courses", h.ListCourses)
	r.Get("/tags", h.ListTags)
	r.With(optionalAuth).Get("/courses/{slug}", h.GetCourse)
}

// ListCourses handles GET /api/v1/courses
// @Summary List published courses
// @Description Get the published catalog with tags and module outlines. Supports text search and tag filtering.
// @Tags catalog
// @Produce json
// @Param search query string false "Search text matched against title and description"
// @Param tags query string false "Comma-separated tag ids"
// @Success 200 {array} models.CourseDetailResponse "List of courses"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/courses [get]
func (h *CatalogHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")

	var tagIDs []string
	if tags := r.URL.Query().Get("tags"); tags != "" {
		for _, id := range strings.Split(tags, ",") {
			if id = strings.TrimSpace(id); id != "" {
				tagIDs = append(tagIDs, id)
			}
		}
	}

	courses, err := h.service.ListPublished(r.Context(), search, tagIDs)
	if err != nil {
		h.Logger.Error("failed to list courses", zap.Error(err))
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, courses)
}

// GetCourse handles GET /api/v1/courses/{slug}
// @Summary Get course by slug
// @Description Get one course with tags, modules and lessons. Video ids are present only when the caller purchased the course.
// @Tags catalog
// @Produce json
// @Param slug path string true "Course slug"
// @Success 200 {object} models.CourseDetailResponse "Course detail"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/courses/{slug} [get]
func (h *CatalogHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	// Anonymous callers get the course without playable content
	userID, _ := auth.GetUserID(r.Context())

	course, err := h.service.GetBySlug(r.Context(), slug, userID)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, course)
}

// ListTags handles GET /api/v1/tags
// @Summary List tags
// @Description Get all course tags in alphabetical order.
// @Tags catalog
// @Produce json
// @Success 200 {array} models.CourseTag "List of tags"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/tags [get]
func (h *CatalogHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.service.ListTags(r.Context())
	if err != nil {
		h.Logger.Error("failed to list tags", zap.Error(err))
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, tags)
}
