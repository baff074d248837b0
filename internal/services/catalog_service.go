package services

import (
	"context"
	"fmt"

	"github.com/coursemarket/backend/internal/apperrors"
	"github.com/coursemarket/backend/internal/models"
)

// CatalogCourseRepository defines the course reads the public catalog
// needs
type CatalogCourseRepository interface {
	// GetBySlug retrieves a course by slug
	//
	// "ctx" is the context for the request.
	// "slug" is the URL slug of the course.
	//
	// Returns the course and an error if any.
	GetBySlug(ctx context.Context, slug string) (*models.Course, error)
	// ListPublished retrieves published courses filtered by search text
	// and tag ids
	//
	// "ctx" is the context for the request.
	// "search" is the optional title/description search text.
	// "tagIDs" is the optional tag filter.
	//
	// Returns the courses and an error if any.
	ListPublished(ctx context.Context, search string, tagIDs []string) ([]models.Course, error)
	// ListPurchasedByUser retrieves the courses the user bought
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	//
	// Returns the courses and an error if any.
	ListPurchasedByUser(ctx context.Context, userID string) ([]models.Course, error)
	// GetTagsByCourseIDs retrieves the tags of each given course
	GetTagsByCourseIDs(ctx context.Context, courseIDs []string) (map[string][]models.CourseTag, error)
}

// ModuleReader defines the module reads the catalog needs
type ModuleReader interface {
	// GetByCourseIDs retrieves the modules of each given course with
	// their lessons, ordered by position
	GetByCourseIDs(ctx context.Context, courseIDs []string) (map[string][]models.CourseModuleResponse, error)
}

// PurchaseChecker defines the access check the catalog needs
type PurchaseChecker interface {
	// Exists checks if the user already purchased the course
	Exists(ctx context.Context, userID, courseID string) (bool, error)
}

// TagReader defines the tag listing the catalog needs
type TagReader interface {
	// List retrieves all tags ordered by name
	List(ctx context.Context) ([]models.CourseTag, error)
}

type catalogService struct {
	courseRepo   CatalogCourseRepository
	moduleRepo   ModuleReader
	purchaseRepo PurchaseChecker
	tagRepo      TagReader
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	courseRepo CatalogCourseRepository,
	moduleRepo ModuleReader,
	purchaseRepo PurchaseChecker,
	tagRepo TagReader,
) *catalogService {
	return &catalogService{
		courseRepo:   courseRepo,
		moduleRepo:   moduleRepo,
		purchaseRepo: purchaseRepo,
		tagRepo:      tagRepo,
	}
}

// ListPublished retrieves the published catalog with tags and module
// outlines. Video ids never appear in listings.
func (s *catalogService) ListPublished(ctx context.Context, search string, tagIDs []string) ([]models.CourseDetailResponse, error) {
	courses, err := s.courseRepo.ListPublished(ctx, search, tagIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list published courses: %w", err)
	}

	items, err := s.composeDetails(ctx, courses)
	if err != nil {
		return nil, err
	}

	for i := range items {
		hideVideoIDs(items[i].Modules)
	}
	return items, nil
}

// GetBySlug retrieves one course with tags, modules and lessons. Video
// ids are included only when the caller has purchased the course; a
// draft or archived course is visible only to buyers who already own it.
func (s *catalogService) GetBySlug(ctx context.Context, slug, userID string) (*models.CourseDetailResponse, error) {
	course, err := s.courseRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, apperrors.NotFound("course not found")
	}

	purchased := false
	if userID != "" {
		purchased, err = s.purchaseRepo.Exists(ctx, userID, course.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check purchase: %w", err)
		}
	}

	if course.Status != models.CourseStatusPublished && !purchased {
		return nil, apperrors.NotFound("course not found")
	}

	items, err := s.composeDetails(ctx, []models.Course{*course})
	if err != nil {
		return nil, err
	}
	detail := items[0]

	if !purchased {
		hideVideoIDs(detail.Modules)
	}
	return &detail, nil
}

// ListPurchased retrieves the caller's purchased courses with their full
// content
func (s *catalogService) ListPurchased(ctx context.Context, userID string) ([]models.CourseDetailResponse, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized("authentication required")
	}

	courses, err := s.courseRepo.ListPurchasedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchased courses: %w", err)
	}

	return s.composeDetails(ctx, courses)
}

// ListTags retrieves all tags for catalog filtering
func (s *catalogService) ListTags(ctx context.Context) ([]models.CourseTag, error) {
	tags, err := s.tagRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	if tags == nil {
		tags = []models.CourseTag{}
	}
	return tags, nil
}

// composeDetails attaches tags and modules to a course list with one
// batched query per relation
func (s *catalogService) composeDetails(ctx context.Context, courses []models.Course) ([]models.CourseDetailResponse, error) {
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
		item := models.CourseDetailResponse{
			Course:  c,
			Tags:    tags[c.ID],
			Modules: modules[c.ID],
		}
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

// hideVideoIDs blanks the video references so non-buyers see the course
// outline without playable content
func hideVideoIDs(modules []models.CourseModuleResponse) {
	for i := range modules {
		for j := range modules[i].Lessons {
			modules[i].Lessons[j].VideoID = ""
		}
	}
}
