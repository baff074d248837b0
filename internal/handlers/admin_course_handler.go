package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/coursemarket/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Course create/update requests arrive as multipart forms: the course
// payload under "data", the optional thumbnail under "thumbnail".
const maxCourseFormSize = 10 << 20

// AdminCourseService is the interface that wraps methods for course
// authoring business logic
type AdminCourseService interface {
	// ListAll retrieves every course with tags and modules, drafts and
	// archived included
	ListAll(ctx context.Context) ([]models.CourseDetailResponse, error)
	// Create creates a draft course with a unique slug derived from the
	// title
	//
	// "req" parameter carries the course fields, tag ids, nested modules
	// and the optional thumbnail bytes.
	//
	// If validation fails or some error will occur during creation, the
	// error will be returned together with "nil" value.
	Create(ctx context.Context, req *models.CreateCourseRequest) (*models.Course, error)
	// Update updates a course; a changed title produces a fresh slug
	Update(ctx context.Context, req *models.UpdateCourseRequest) (*models.Course, error)
	// UpdateStatus changes the publication status of a course
	UpdateStatus(ctx context.Context, req *models.UpdateCourseStatusRequest) error
	// Delete removes a course with its content and thumbnail
	Delete(ctx context.Context, id string) error
	// CreateModule adds a module with its lessons to a course
	CreateModule(ctx context.Context, courseID string, payload *models.CourseModulePayload) error
	// UpdateModule updates a module and upserts its lessons
	UpdateModule(ctx context.Context, payload *models.CourseModulePayload) error
	// DeleteModules removes modules by ids; lessons cascade
	DeleteModules(ctx context.Context, ids []string) error
	// DeleteLessons removes lessons by ids
	DeleteLessons(ctx context.Context, ids []string) error
	// ListTags retrieves all tags
	ListTags(ctx context.Context) ([]models.CourseTag, error)
	// CreateTag creates a tag with a unique name
	CreateTag(ctx context.Context, name string) (*models.CourseTag, error)
}

// AdminCourseHandler handles course authoring HTTP requests
type AdminCourseHandler struct {
	BaseHandler
	service AdminCourseService
}

// NewAdminCourseHandler creates a new admin course handler
func NewAdminCourseHandler(service AdminCourseService, logger *zap.Logger) *AdminCourseHandler {
	return &AdminCourseHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     service,
	}
}

// RegisterRoutes registers all authoring routes on an admin-scoped
// router; authentication and the role check are applied by the caller
func (h *AdminCourseHandler) RegisterRoutes(r chi.Router) {
	r.Route("/courses", func(r chi.Router) {
		r.Get("/", h.ListCourses)
		r.Post("/", h.CreateCourse)
		r.Put("/{courseId}", h.UpdateCourse)
		r.Patch("/{courseId}/status", h.UpdateCourseStatus)
		r.Delete("/{courseId}", h.DeleteCourse)
		r.Post("/{courseId}/modules", h.CreateModule)
	})
	r.Put("/modules/{moduleId}", h.UpdateModule)
	r.Delete("/modules", h.DeleteModules)
	r.Delete("/lessons", h.DeleteLessons)
	r.Route("/tags", func(r chi.Router) {
		r.Get("/", h.ListTags)
		r.Post("/", h.CreateTag)
	})
}

// ListCourses handles GET /api/v1/admin/courses
// @Summary List all courses
// @Description Get every course regardless of status, with tags and modules. Requires admin role.
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.CourseDetailResponse "All courses"
// @Failure 401 {object} map[string]string "Unauthorized - authentication required"
// @Failure 403 {object} map[string]string "Forbidden - admin role required"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/admin/courses [get]
func (h *AdminCourseHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.ListAll(r.Context())
	if err != nil {
		h.Logger.Error("failed to list courses", zap.Error(err))
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, courses)
}

// CreateCourse handles POST /api/v1/admin/courses
// @Summary Create a course
// @Description Create a draft course from a multipart form: the course payload under "data", the optional thumbnail image under "thumbnail". Requires admin role.
// @Tags admin
// @Accept mpfd
// @Produce json
// @Security ApiKeyAuth
// @Param data formData string true "Course payload as JSON"
// @Param thumbnail formData file false "Thumbnail image"
// @Success 201 {object} models.Course "Created course"
// @Failure 400 {object} map[string]string "Bad request - validation error"
// @Failure 401 {object} map[string]string "Unauthorized - authentication required"
// @Failure 403 {object} map[string]string "Forbidden - admin role required"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/admin/courses [post]
func (h *AdminCourseHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCourseRequest
	thumbnail, name, err := h.parseCourseForm(r, &req)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Thumbnail = thumbnail
	req.ThumbnailName = name

	course, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, course)
}

// UpdateCourse handles PUT /api/v1/admin/courses/{courseId}
// @Summary Update a course
// @Description Update a course from a multipart form. A new thumbnail replaces the stored one; a changed title produces a fresh slug. Requires admin role.
// @Tags admin
// @Accept mpfd
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course ID"
// @Param data formData string true "Course payload as JSON"
// @Param thumbnail formData file false "Thumbnail image"
// @Success 200 {object} models.Course "Updated course"
// @Failure 400 {object} map[string]string "Bad request - validation error"
// @Failure 401 {object} map[string]string "Unauthorized - authentication required"
// @Failure 403 {object} map[string]string "Forbidden - admin role required"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/admin/courses/{courseId} [put]
func (h *AdminCourseHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateCourseRequest
	thumbnail, name, err := h.parseCourseForm(r, &req)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.ID = chi.URLParam(r, "courseId")
	req.Thumbnail = thumbnail
	req.ThumbnailName = name

	course, err := h.service.Update(r.Context(), &req)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, course)
}

// UpdateCourseStatus handles PATCH /api/v1/admin/courses/{courseId}/status
// @Summary Change course status
// @Description Move a course between DRAFT, PUBLISHED and ARCHIVED. Requires admin role.
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course ID"
// @Param request body models.UpdateCourseStatusRequest true "Target status"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Bad request - invalid status"
// @Failure 401 {object} map[string]string "Unauthorized - authentication required"
// @Failure 403 {object} map[string]string "Forbidden - admin role required"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/admin/courses/{courseId}/status [patch]
func (h *AdminCourseHandler) UpdateCourseStatus(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateCourseStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("failed to decode request body", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.CourseID = chi.URLParam(r, "courseId")

	if err := h.service.UpdateStatus(r.Context(), &req); err != nil {
		h.RespondAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteCourse handles DELETE /api/v1/admin/courses/{courseId}
// @Summary Delete a course
// @Description Delete a course with its modules, lessons, tag links and thumbnail. Requires admin role.
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized - authentication required"
// @Failure 403 {object} map[string]string "Forbidden - admin role required"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/admin/courses/{courseId} [delete]
func (h *AdminCourseHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "courseId")); err != nil {
		h.RespondAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateModule handles POST /api/v1/admin/courses/{courseId}/modules
// @Summary Add a module
// @Description Add a module with its nested lessons to a course. Requires admin role.
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course ID"
// @Param request body models.CourseModulePayload true "Module payload"
// @Success 201 {object} models.CourseModulePayload "Created module"
// @Failure 400 {object} map[string]string "Bad request - validation error"
// @Failure 401 {object} map[string]string "Unauthorized - authentication required"
// @Failure 403 {object} map[string]string "Forbidden - admin role required"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/admin/courses/{courseId}/modules [post]
func (h *AdminCourseHandler) CreateModule(w http.ResponseWriter, r *http.Request) {
	var payload models.CourseModulePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.Logger.Error("failed to decode request body", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.CreateModule(r.Context(), chi.URLParam(r, "courseId"), &payload); err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, payload)
}

// UpdateModule handles PUT /api/v1/admin/modules/{moduleId}
// @Summary Update a module
// @Description Update a module and upsert its lessons; lessons with an id are updated in place, the rest are created. Requires admin role.
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param moduleId path string true "Module ID"
// @Param request body models.CourseModulePayload true "Module payload"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Bad request - validation error"
// @Failure 401 {object} map[string]string "Unauthorized - authentication required"
// @Failure 403 {object} map[string]string "Forbidden - admin role required"
// @Failure 404 {object} map[string]string "Module not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/admin/modules/{moduleId} [put]
func (h *AdminCourseHandler) UpdateModule(w http.ResponseWriter, r *http.Request) {
	var payload models.CourseModulePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.Logger.Error("failed to decode request body", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	payload.ID = chi.URLParam(r, "moduleId")

	if err := h.service.UpdateModule(r.Context(), &payload); err != nil {
		h.RespondAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// deleteIDsRequest represents a bulk delete request
type deleteIDsRequest struct {
	IDs []string `json:"ids"`
}

// DeleteModules handles DELETE /api/v1/admin/modules
// @Summary Delete modules
// @Description Delete modules by ids; their lessons cascade. Requires admin role.
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body deleteIDsRequest true "Module ids"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Bad request - empty id list"
// @Failure 401 {object} map[string]string "Unauthorized - authentication required"
// @Failure 403 {object} map[string]string "Forbidden - admin role required"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/admin/modules [delete]
func (h *AdminCourseHandler) DeleteModules(w http.ResponseWriter, r *http.Request) {
	h.bulkDelete(w, r, h.service.DeleteModules)
}

// DeleteLessons handles DELETE /api/v1/admin/lessons
// @Summary Delete lessons
// @Description Delete lessons by ids. Requires admin role.
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body deleteIDsRequest true "Lesson ids"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Bad request - empty id list"
// @Failure 401 {object} map[string]string "Unauthorized - authentication required"
// @Failure 403 {object} map[string]string "Forbidden - admin role required"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/admin/lessons [delete]
func (h *AdminCourseHandler) DeleteLessons(w http.ResponseWriter, r *http.Request) {
	h.bulkDelete(w, r, h.service.DeleteLessons)
}

// ListTags handles GET /api/v1/admin/tags
// @Summary List tags
// @Description Get all tags in alphabetical order. Requires admin role.
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.CourseTag "Tags"
// @Failure 401 {object} map[string]string "Unauthorized - authentication required"
// @Failure 403 {object} map[string]string "Forbidden - admin role required"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/admin/tags [get]
func (h *AdminCourseHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.service.ListTags(r.Context())
	if err != nil {
		h.Logger.Error("failed to list tags", zap.Error(err))
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, tags)
}

// createTagRequest represents a tag creation request
type createTagRequest struct {
	Name string `json:"name"`
}

// CreateTag handles POST /api/v1/admin/tags
// @Summary Create a tag
// @Description Create a tag with a unique name. Requires admin role.
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body createTagRequest true "Tag name"
// @Success 201 {object} models.CourseTag "Created tag"
// @Failure 400 {object} map[string]string "Bad request - validation error"
// @Failure 401 {object} map[string]string "Unauthorized - authentication required"
// @Failure 403 {object} map[string]string "Forbidden - admin role required"
// @Failure 409 {object} map[string]string "Conflict - tag already exists"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/admin/tags [post]
func (h *AdminCourseHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req createTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("failed to decode request body", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tag, err := h.service.CreateTag(r.Context(), req.Name)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, tag)
}

// bulkDelete decodes an id list and applies the delete function
func (h *AdminCourseHandler) bulkDelete(w http.ResponseWriter, r *http.Request, del func(context.Context, []string) error) {
	var req deleteIDsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("failed to decode request body", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.IDs) == 0 {
		h.RespondError(w, http.StatusBadRequest, "ids cannot be empty")
		return
	}

	if err := del(r.Context(), req.IDs); err != nil {
		h.RespondAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseCourseForm decodes the multipart course form: the JSON payload
// under "data" into dst, the optional thumbnail bytes and file name as
// return values
func (h *AdminCourseHandler) parseCourseForm(r *http.Request, dst any) ([]byte, string, error) {
	if err := r.ParseMultipartForm(maxCourseFormSize); err != nil {
		return nil, "", errors.New("invalid multipart form")
	}

	data := r.FormValue("data")
	if data == "" {
		return nil, "", errors.New("missing course payload")
	}
	if err := json.Unmarshal([]byte(data), dst); err != nil {
		h.Logger.Error("failed to decode course payload", zap.Error(err))
		return nil, "", errors.New("invalid course payload")
	}

	file, header, err := r.FormFile("thumbnail")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, "", nil
		}
		return nil, "", errors.New("invalid thumbnail")
	}
	defer file.Close()

	thumbnail, err := io.ReadAll(file)
	if err != nil {
		return nil, "", errors.New("failed to read thumbnail")
	}
	return thumbnail, header.Filename, nil
}
