package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/coursemarket/backend/internal/apperrors"
	"github.com/coursemarket/backend/internal/models"
	"github.com/coursemarket/backend/internal/repositories"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

const thumbnailDir = "thumbnails"

// AdminCourseRepository defines the course writes and reads the admin
// panel needs
type AdminCourseRepository interface {
	// GetByID retrieves a course by ID
	GetByID(ctx context.Context, id string) (*models.Course, error)
	// ListAll retrieves all courses regardless of status
	ListAll(ctx context.Context) ([]models.Course, error)
	// CountBySlugPrefix counts courses whose slug starts with prefix
	CountBySlugPrefix(ctx context.Context, prefix string) (int, error)
	// Create inserts a course and its tag links
	Create(ctx context.Context, course *models.Course, tagIDs []string) error
	// Update updates a course and replaces its tag links
	Update(ctx context.Context, course *models.Course, tagIDs []string) error
	// UpdateStatus changes the publication status of a course
	UpdateStatus(ctx context.Context, id string, status models.CourseStatus) error
	// Delete removes a course and its dependent rows
	Delete(ctx context.Context, id string) error
	// GetTagsByCourseIDs retrieves the tags of each given course
	GetTagsByCourseIDs(ctx context.Context, courseIDs []string) (map[string][]models.CourseTag, error)
}

// AdminModuleRepository defines the module writes the admin panel needs
type AdminModuleRepository interface {
	// GetByCourseIDs retrieves the modules of each given course with
	// their lessons
	GetByCourseIDs(ctx context.Context, courseIDs []string) (map[string][]models.CourseModuleResponse, error)
	// CreateWithLessons inserts a module and its nested lessons
	CreateWithLessons(ctx context.Context, courseID string, payload *models.CourseModulePayload) error
	// UpdateWithLessons updates a module and upserts its lessons
	UpdateWithLessons(ctx context.Context, payload *models.CourseModulePayload) error
	// DeleteModules removes modules by ids
	DeleteModules(ctx context.Context, ids []string) error
	// DeleteLessons removes lessons by ids
	DeleteLessons(ctx context.Context, ids []string) error
}

// TagRepository defines the tag access the admin panel needs
type TagRepository interface {
	// List retrieves all tags ordered by name
	List(ctx context.Context) ([]models.CourseTag, error)
	// Create inserts a tag, returning repositories.ErrTagExists on a
	// name collision
	Create(ctx context.Context, tag *models.CourseTag) error
}

// ObjectStorage defines the thumbnail persistence the admin panel needs
type ObjectStorage interface {
	// Upload stores the object under dir and returns its public URL
	Upload(r io.Reader, dir, originalName string) (string, error)
	// Delete removes the object behind a public URL; a missing object
	// counts as deleted
	Delete(url string) error
}

type adminCourseService struct {
	courseRepo AdminCourseRepository
	moduleRepo AdminModuleRepository
	tagRepo    TagRepository
	storage    ObjectStorage
	logger     *zap.Logger
}

// NewAdminCourseService creates a new admin course service
func NewAdminCourseService(
	courseRepo AdminCourseRepository,
	moduleRepo AdminModuleRepository,
	tagRepo TagRepository,
	storage ObjectStorage,
	logger *zap.Logger,
) *adminCourseService {
	return &adminCourseService{
		courseRepo: courseRepo,
		moduleRepo: moduleRepo,
		tagRepo:    tagRepo,
		storage:    storage,
		logger:     logger,
	}
}

// ListAll retrieves every course with tags and modules for the admin
// panel, drafts and archived included
func (s *adminCourseService) ListAll(ctx context.Context) ([]models.CourseDetailResponse, error) {
	courses, err := s.courseRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	ids := make([]string, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}

	tags, err := s.courseRepo.GetTagsByCourseIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load course tags: %w", err)
	}
	modules, err := s.moduleRepo.GetByCourseIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load course modules: %w", err)
	}

	items := make([]models.CourseDetailResponse, 0, len(courses))
	for _, c := range courses {
		item := models.CourseDetailResponse{Course: c, Tags: tags[c.ID], Modules: modules[c.ID]}
		if item.Tags == nil {
			item.Tags = []models.CourseTag{}
		}
		if item.Modules == nil {
			item.Modules = []models.CourseModuleResponse{}
		}
		items = append(items, item)
	}
	return items, nil
}

// Create creates a draft course with a unique slug derived from the
// title, uploads the thumbnail and inserts the nested modules
func (s *adminCourseService) Create(ctx context.Context, req *models.CreateCourseRequest) (*models.Course, error) {
	if err := validateCoursePricing(req.Title, req.PriceCents, req.DiscountPriceCents, req.Difficulty); err != nil {
		return nil, err
	}

	courseSlug, err := s.uniqueSlug(ctx, req.Title)
	if err != nil {
		return nil, err
	}

	thumbnailURL := ""
	if len(req.Thumbnail) > 0 {
		thumbnailURL, err = s.storage.Upload(bytes.NewReader(req.Thumbnail), thumbnailDir, req.ThumbnailName)
		if err != nil {
			return nil, fmt.Errorf("failed to upload thumbnail: %w", err)
		}
	}

	course := &models.Course{
		Slug:               courseSlug,
		Title:              req.Title,
		ShortDescription:   req.ShortDescription,
		Description:        req.Description,
		PriceCents:         req.PriceCents,
		DiscountPriceCents: req.DiscountPriceCents,
		Difficulty:         req.Difficulty,
		Status:             models.CourseStatusDraft,
		ThumbnailURL:       thumbnailURL,
	}

	if err := s.courseRepo.Create(ctx, course, req.TagIDs); err != nil {
		return nil, err
	}

	for i := range req.Modules {
		if err := s.moduleRepo.CreateWithLessons(ctx, course.ID, &req.Modules[i]); err != nil {
			return nil, err
		}
	}

	s.logger.Info("course created",
		zap.String("course_id", course.ID),
		zap.String("slug", course.Slug),
	)
	return course, nil
}

// Update updates a course. A changed title produces a fresh unique
// slug; a new thumbnail replaces the stored one.
func (s *adminCourseService) Update(ctx context.Context, req *models.UpdateCourseRequest) (*models.Course, error) {
	if err := validateCoursePricing(req.Title, req.PriceCents, req.DiscountPriceCents, req.Difficulty); err != nil {
		return nil, err
	}

	existing, err := s.courseRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, apperrors.NotFound("course not found")
	}

	courseSlug := existing.Slug
	if req.Title != existing.Title {
		courseSlug, err = s.uniqueSlug(ctx, req.Title)
		if err != nil {
			return nil, err
		}
	}

	thumbnailURL := existing.ThumbnailURL
	if len(req.Thumbnail) > 0 {
		thumbnailURL, err = s.storage.Upload(bytes.NewReader(req.Thumbnail), thumbnailDir, req.ThumbnailName)
		if err != nil {
			return nil, fmt.Errorf("failed to upload thumbnail: %w", err)
		}
	}

	course := &models.Course{
		ID:                 existing.ID,
		Slug:               courseSlug,
		Title:              req.Title,
		ShortDescription:   req.ShortDescription,
		Description:        req.Description,
		PriceCents:         req.PriceCents,
		DiscountPriceCents: req.DiscountPriceCents,
		Difficulty:         req.Difficulty,
		Status:             existing.Status,
		ThumbnailURL:       thumbnailURL,
	}

	if err := s.courseRepo.Update(ctx, course, req.TagIDs); err != nil {
		return nil, err
	}

	// The old thumbnail goes away only after the update landed
	if thumbnailURL != existing.ThumbnailURL && existing.ThumbnailURL != "" {
		if err := s.storage.Delete(existing.ThumbnailURL); err != nil {
			s.logger.Warn("failed to delete replaced thumbnail",
				zap.String("course_id", course.ID),
				zap.Error(err),
			)
		}
	}

	return course, nil
}

// UpdateStatus changes the publication status of a course
func (s *adminCourseService) UpdateStatus(ctx context.Context, req *models.UpdateCourseStatusRequest) error {
	if !req.Status.Valid() {
		return apperrors.Validation("status", "invalid course status")
	}

	if err := s.courseRepo.UpdateStatus(ctx, req.CourseID, req.Status); err != nil {
		return apperrors.NotFound("course not found")
	}
	return nil
}

// Delete removes a course and its thumbnail. Purchases keep their rows;
// buyers of a deleted course lose the content with it.
func (s *adminCourseService) Delete(ctx context.Context, id string) error {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return apperrors.NotFound("course not found")
	}

	if err := s.courseRepo.Delete(ctx, id); err != nil {
		return err
	}

	if course.ThumbnailURL != "" {
		if err := s.storage.Delete(course.ThumbnailURL); err != nil {
			s.logger.Warn("failed to delete course thumbnail",
				zap.String("course_id", id),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("course deleted", zap.String("course_id", id))
	return nil
}

// CreateModule adds a module with its lessons to a course
func (s *adminCourseService) CreateModule(ctx context.Context, courseID string, payload *models.CourseModulePayload) error {
	if payload.Title == "" {
		return apperrors.Validation("title", "title is required")
	}
	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		return apperrors.NotFound("course not found")
	}
	return s.moduleRepo.CreateWithLessons(ctx, courseID, payload)
}

// UpdateModule updates a module and upserts its lessons
func (s *adminCourseService) UpdateModule(ctx context.Context, payload *models.CourseModulePayload) error {
	if payload.ID == "" {
		return apperrors.Validation("id", "module id is required")
	}
	if payload.Title == "" {
		return apperrors.Validation("title", "title is required")
	}
	if err := s.moduleRepo.UpdateWithLessons(ctx, payload); err != nil {
		return apperrors.NotFound("module not found")
	}
	return nil
}

// DeleteModules removes modules by ids; lessons cascade
func (s *adminCourseService) DeleteModules(ctx context.Context, ids []string) error {
	return s.moduleRepo.DeleteModules(ctx, ids)
}

// DeleteLessons removes lessons by ids
func (s *adminCourseService) DeleteLessons(ctx context.Context, ids []string) error {
	return s.moduleRepo.DeleteLessons(ctx, ids)
}

// ListTags retrieves all tags
func (s *adminCourseService) ListTags(ctx context.Context) ([]models.CourseTag, error) {
	tags, err := s.tagRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	if tags == nil {
		tags = []models.CourseTag{}
	}
	return tags, nil
}

// CreateTag creates a tag with a unique name
func (s *adminCourseService) CreateTag(ctx context.Context, name string) (*models.CourseTag, error) {
	if name == "" {
		return nil, apperrors.Validation("name", "name is required")
	}

	tag := &models.CourseTag{Name: name}
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		if errors.Is(err, repositories.ErrTagExists) {
			return nil, apperrors.Conflict("tag already exists")
		}
		return nil, err
	}
	return tag, nil
}

// uniqueSlug derives a URL slug from the title, suffixing a counter when
// the base form is taken: n existing matches make the slug "<base>-<n+1>"
func (s *adminCourseService) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := slug.Make(title)

	count, err := s.courseRepo.CountBySlugPrefix(ctx, base)
	if err != nil {
		return "", err
	}
	if count == 0 {
		return base, nil
	}
	return base + "-" + strconv.Itoa(count+1), nil
}

// validateCoursePricing checks the shared create/update fields
func validateCoursePricing(title string, priceCents int64, discount *int64, difficulty models.Difficulty) error {
	if title == "" {
		return apperrors.Validation("title", "title is required")
	}
	if priceCents < 0 {
		return apperrors.Validation("priceCents", "price cannot be negative")
	}
	if discount != nil && (*discount < 0 || *discount >= priceCents) {
		return apperrors.Validation("discountPriceCents", "discount must be below the list price")
	}
	switch difficulty {
	case models.DifficultyBeginner, models.DifficultyIntermediate, models.DifficultyAdvanced:
	default:
		return apperrors.Validation("difficulty", "invalid difficulty")
	}
	return nil
}
