package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/coursemarket/backend/internal/apperrors"
	"github.com/coursemarket/backend/internal/models"
)

// CommentRepository defines methods for lesson comment data access
type CommentRepository interface {
	// Create inserts a new comment
	Create(ctx context.Context, comment *models.LessonComment) error
	// GetByID retrieves a comment by its ID
	GetByID(ctx context.Context, id string) (*models.LessonComment, error)
	// ListByLesson retrieves all comments of a lesson, oldest first
	ListByLesson(ctx context.Context, lessonID string) ([]models.LessonComment, error)
	// Delete removes a comment; replies cascade
	Delete(ctx context.Context, id string) error
}

// LessonResolver resolves the course a lesson belongs to
type LessonResolver interface {
	// GetLessonCourseID resolves the course a lesson belongs to
	GetLessonCourseID(ctx context.Context, lessonID string) (string, error)
}

type commentService struct {
	commentRepo  CommentRepository
	moduleRepo   LessonResolver
	purchaseRepo PurchaseChecker
}

// NewCommentService creates a new lesson comment service
func NewCommentService(
	commentRepo CommentRepository,
	moduleRepo LessonResolver,
	purchaseRepo PurchaseChecker,
) *commentService {
	return &commentService{
		commentRepo:  commentRepo,
		moduleRepo:   moduleRepo,
		purchaseRepo: purchaseRepo,
	}
}

// Create posts a comment on a lesson of a course the caller purchased.
// A reply must target a comment on the same lesson.
func (s *commentService) Create(ctx context.Context, userID string, req *models.CreateCommentRequest) (*models.LessonComment, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized("authentication required")
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperrors.Validation("content", "content is required")
	}
	if len([]rune(content)) > models.MaxCommentLength {
		return nil, apperrors.Validation("content", fmt.Sprintf("content exceeds %d characters", models.MaxCommentLength))
	}

	if err := s.checkLessonAccess(ctx, userID, req.LessonID); err != nil {
		return nil, err
	}

	if req.ParentID != "" {
		parent, err := s.commentRepo.GetByID(ctx, req.ParentID)
		if err != nil {
			return nil, apperrors.NotFound("parent comment not found")
		}
		if parent.LessonID != req.LessonID {
			return nil, apperrors.Validation("parentId", "parent comment belongs to another lesson")
		}
	}

	comment := &models.LessonComment{
		LessonID: req.LessonID,
		UserID:   userID,
		ParentID: req.ParentID,
		Content:  content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListByLesson retrieves the comment thread of a lesson the caller has
// access to, top-level comments with their replies attached
func (s *commentService) ListByLesson(ctx context.Context, userID, lessonID string) ([]models.CommentResponse, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized("authentication required")
	}

	if err := s.checkLessonAccess(ctx, userID, lessonID); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	return buildThreads(comments), nil
}

// Delete removes a comment. Only the author or an admin may delete;
// replies go with the comment.
func (s *commentService) Delete(ctx context.Context, userID string, role models.Role, commentID string) error {
	if userID == "" {
		return apperrors.Unauthorized("authentication required")
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return apperrors.NotFound("comment not found")
	}

	if comment.UserID != userID && role != models.RoleAdmin {
		return apperrors.Forbidden("cannot delete another user's comment")
	}

	return s.commentRepo.Delete(ctx, commentID)
}

// checkLessonAccess verifies the caller purchased the course the lesson
// belongs to
func (s *commentService) checkLessonAccess(ctx context.Context, userID, lessonID string) error {
	courseID, err := s.moduleRepo.GetLessonCourseID(ctx, lessonID)
	if err != nil {
		return apperrors.NotFound("lesson not found")
	}

	purchased, err := s.purchaseRepo.Exists(ctx, userID, courseID)
	if err != nil {
		return fmt.Errorf("failed to check purchase: %w", err)
	}
	if !purchased {
		return apperrors.Forbidden("course not purchased")
	}
	return nil
}

// buildThreads groups a flat, chronologically ordered comment list into
// top-level comments with replies. A reply whose parent vanished mid-list
// is dropped rather than orphaned.
func buildThreads(comments []models.LessonComment) []models.CommentResponse {
	threads := make([]models.CommentResponse, 0, len(comments))
	index := make(map[string]int, len(comments))

	for _, c := range comments {
		if c.ParentID == "" {
			threads = append(threads, models.CommentResponse{
				LessonComment: c,
				Replies:       []models.LessonComment{},
			})
			index[c.ID] = len(threads) - 1
			continue
		}
		if i, ok := index[c.ParentID]; ok {
			threads[i].Replies = append(threads[i].Replies, c)
		}
	}
	return threads
}
