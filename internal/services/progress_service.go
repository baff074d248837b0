package services

import (
	"context"
	"fmt"

	"github.com/coursemarket/backend/internal/apperrors"
)

// CompletedLessonRepository defines methods for lesson completion data
// access
type CompletedLessonRepository interface {
	// Exists checks if the user has completed the lesson
	Exists(ctx context.Context, userID, lessonID string) (bool, error)
	// Create marks a lesson as completed for the user
	Create(ctx context.Context, userID, lessonID, courseID string) error
	// Delete removes a completion mark
	Delete(ctx context.Context, userID, lessonID string) error
	// ListLessonIDsByUserAndCourse retrieves the lessons the user
	// completed in a course
	ListLessonIDsByUserAndCourse(ctx context.Context, userID, courseID string) ([]string, error)
}

type progressService struct {
	completionRepo CompletedLessonRepository
	moduleRepo     LessonResolver
	purchaseRepo   PurchaseChecker
}

// NewProgressService creates a new lesson progress service
func NewProgressService(
	completionRepo CompletedLessonRepository,
	moduleRepo LessonResolver,
	purchaseRepo PurchaseChecker,
) *progressService {
	return &progressService{
		completionRepo: completionRepo,
		moduleRepo:     moduleRepo,
		purchaseRepo:   purchaseRepo,
	}
}

// ToggleCompletion flips the completion mark of a lesson for the caller
// and returns the new state. The course must be purchased.
func (s *progressService) ToggleCompletion(ctx context.Context, userID, lessonID string) (bool, error) {
	if userID == "" {
		return false, apperrors.Unauthorized("authentication required")
	}

	courseID, err := s.moduleRepo.GetLessonCourseID(ctx, lessonID)
	if err != nil {
		return false, apperrors.NotFound("lesson not found")
	}

	purchased, err := s.purchaseRepo.Exists(ctx, userID, courseID)
	if err != nil {
		return false, fmt.Errorf("failed to check purchase: %w", err)
	}
	if !purchased {
		return false, apperrors.Forbidden("course not purchased")
	}

	completed, err := s.completionRepo.Exists(ctx, userID, lessonID)
	if err != nil {
		return false, err
	}

	if completed {
		if err := s.completionRepo.Delete(ctx, userID, lessonID); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := s.completionRepo.Create(ctx, userID, lessonID, courseID); err != nil {
		return false, err
	}
	return true, nil
}

// ListCompleted retrieves the lesson ids the caller completed in a
// course
func (s *progressService) ListCompleted(ctx context.Context, userID, courseID string) ([]string, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized("authentication required")
	}

	lessonIDs, err := s.completionRepo.ListLessonIDsByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if lessonIDs == nil {
		lessonIDs = []string{}
	}
	return lessonIDs, nil
}
