package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/coursemarket/backend/internal/apperrors"
	"github.com/coursemarket/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCommentRepository is a mock implementation of CommentRepository
type mockCommentRepository struct {
	comment     *models.LessonComment
	getErr      error
	comments    []models.LessonComment
	createErr   error
	deleteCalls int
	created     []*models.LessonComment
}

func (m *mockCommentRepository) Create(ctx context.Context, comment *models.LessonComment) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, comment)
	return nil
}

func (m *mockCommentRepository) GetByID(ctx context.Context, id string) (*models.LessonComment, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.comment, nil
}

func (m *mockCommentRepository) ListByLesson(ctx context.Context, lessonID string) ([]models.LessonComment, error) {
	return m.comments, nil
}

func (m *mockCommentRepository) Delete(ctx context.Context, id string) error {
	m.deleteCalls++
	return nil
}

// mockLessonResolver is a mock implementation of LessonResolver
type mockLessonResolver struct {
	courseID string
	err      error
}

func (m *mockLessonResolver) GetLessonCourseID(ctx context.Context, lessonID string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.courseID, nil
}

func newTestCommentService(
	commentRepo *mockCommentRepository,
	resolver *mockLessonResolver,
	purchaseRepo *mockPurchaseRepository,
) *commentService {
	return NewCommentService(commentRepo, resolver, purchaseRepo)
}

func TestCommentService_Create(t *testing.T) {
	resolver := &mockLessonResolver{courseID: "course-1"}

	t.Run("posts a comment on a purchased course", func(t *testing.T) {
		commentRepo := &mockCommentRepository{}
		svc := newTestCommentService(commentRepo, resolver, &mockPurchaseRepository{exists: true})

		comment, err := svc.Create(context.Background(), "user-1", &models.CreateCommentRequest{
			LessonID: "lesson-1",
			Content:  "Great lesson!",
		})

		require.NoError(t, err)
		assert.Equal(t, "user-1", comment.UserID)
		assert.Equal(t, "Great lesson!", comment.Content)
		require.Len(t, commentRepo.created, 1)
	})

	t.Run("rejects comments on unpurchased courses", func(t *testing.T) {
		svc := newTestCommentService(&mockCommentRepository{}, resolver, &mockPurchaseRepository{exists: false})

		_, err := svc.Create(context.Background(), "user-1", &models.CreateCommentRequest{
			LessonID: "lesson-1",
			Content:  "Great lesson!",
		})

		assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
	})

	t.Run("rejects content over the length limit", func(t *testing.T) {
		svc := newTestCommentService(&mockCommentRepository{}, resolver, &mockPurchaseRepository{exists: true})

		_, err := svc.Create(context.Background(), "user-1", &models.CreateCommentRequest{
			LessonID: "lesson-1",
			Content:  strings.Repeat("a", models.MaxCommentLength+1),
		})

		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
		assert.Equal(t, "content", apperrors.FieldOf(err))
	})

	t.Run("accepts content exactly at the limit", func(t *testing.T) {
		svc := newTestCommentService(&mockCommentRepository{}, resolver, &mockPurchaseRepository{exists: true})

		_, err := svc.Create(context.Background(), "user-1", &models.CreateCommentRequest{
			LessonID: "lesson-1",
			Content:  strings.Repeat("a", models.MaxCommentLength),
		})

		assert.NoError(t, err)
	})

	t.Run("rejects a reply targeting another lesson", func(t *testing.T) {
		commentRepo := &mockCommentRepository{comment: &models.LessonComment{
			ID:       "parent-1",
			LessonID: "lesson-2",
		}}
		svc := newTestCommentService(commentRepo, resolver, &mockPurchaseRepository{exists: true})

		_, err := svc.Create(context.Background(), "user-1", &models.CreateCommentRequest{
			LessonID: "lesson-1",
			ParentID: "parent-1",
			Content:  "reply",
		})

		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
		assert.Equal(t, "parentId", apperrors.FieldOf(err))
	})

	t.Run("missing lesson", func(t *testing.T) {
		svc := newTestCommentService(&mockCommentRepository{}, &mockLessonResolver{err: errors.New("lesson not found")}, &mockPurchaseRepository{exists: true})

		_, err := svc.Create(context.Background(), "user-1", &models.CreateCommentRequest{
			LessonID: "lesson-x",
			Content:  "hello",
		})

		assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	})
}

func TestCommentService_ListByLesson(t *testing.T) {
	resolver := &mockLessonResolver{courseID: "course-1"}

	t.Run("groups replies under their parents", func(t *testing.T) {
		commentRepo := &mockCommentRepository{comments: []models.LessonComment{
			{ID: "c-1", LessonID: "lesson-1", Content: "first"},
			{ID: "c-2", LessonID: "lesson-1", ParentID: "c-1", Content: "reply to first"},
			{ID: "c-3", LessonID: "lesson-1", Content: "second"},
			{ID: "c-4", LessonID: "lesson-1", ParentID: "c-1", Content: "another reply"},
		}}
		svc := newTestCommentService(commentRepo, resolver, &mockPurchaseRepository{exists: true})

		threads, err := svc.ListByLesson(context.Background(), "user-1", "lesson-1")

		require.NoError(t, err)
		require.Len(t, threads, 2)
		assert.Equal(t, "c-1", threads[0].ID)
		require.Len(t, threads[0].Replies, 2)
		assert.Equal(t, "c-2", threads[0].Replies[0].ID)
		assert.Equal(t, "c-4", threads[0].Replies[1].ID)
		assert.Empty(t, threads[1].Replies)
	})

	t.Run("requires a purchase", func(t *testing.T) {
		svc := newTestCommentService(&mockCommentRepository{}, resolver, &mockPurchaseRepository{exists: false})

		_, err := svc.ListByLesson(context.Background(), "user-1", "lesson-1")

		assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
	})
}

func TestCommentService_Delete(t *testing.T) {
	comment := &models.LessonComment{ID: "c-1", LessonID: "lesson-1", UserID: "author-1"}

	tests := []struct {
		name         string
		userID       string
		role         models.Role
		expectedKind apperrors.Kind
		deleteCalls  int
	}{
		{
			name:        "author deletes own comment",
			userID:      "author-1",
			role:        models.RoleUser,
			deleteCalls: 1,
		},
		{
			name:        "admin deletes any comment",
			userID:      "admin-1",
			role:        models.RoleAdmin,
			deleteCalls: 1,
		},
		{
			name:         "other user cannot delete",
			userID:       "user-2",
			role:         models.RoleUser,
			expectedKind: apperrors.KindForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			commentRepo := &mockCommentRepository{comment: comment}
			svc := newTestCommentService(commentRepo, &mockLessonResolver{courseID: "course-1"}, &mockPurchaseRepository{exists: true})

			err := svc.Delete(context.Background(), tt.userID, tt.role, "c-1")

			if tt.expectedKind != 0 {
				assert.Equal(t, tt.expectedKind, apperrors.KindOf(err))
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.deleteCalls, commentRepo.deleteCalls)
		})
	}
}
