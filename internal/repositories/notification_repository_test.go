package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/coursemarket/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupNotificationTestRepository creates a notification repository with a mock database
func setupNotificationTestRepository(t *testing.T) (*notificationRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewNotificationRepository(db)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func TestNotificationRepository_CreateForAllUsers(t *testing.T) {
	tests := []struct {
		name          string
		req           *models.SendNotificationRequest
		setupMock     func(sqlmock.Sqlmock)
		expectedCount int64
		expectedError bool
	}{
		{
			name: "fans out one row per user",
			req: &models.SendNotificationRequest{
				Title:   "New course",
				Content: "Check out the new course",
				Link:    "/courses/intro-to-go",
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO notifications .+ SELECT UUID\(\), id, \?, \?, \?\s+FROM users`).
					WithArgs("New course", "Check out the new course", sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(0, 42))
			},
			expectedCount: 42,
		},
		{
			name: "no users means zero rows",
			req: &models.SendNotificationRequest{
				Title:   "New course",
				Content: "Check out the new course",
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO notifications`).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			expectedCount: 0,
		},
		{
			name: "database error",
			req: &models.SendNotificationRequest{
				Title:   "New course",
				Content: "Check out the new course",
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO notifications`).
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupNotificationTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			count, err := repo.CreateForAllUsers(context.Background(), tt.req)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedCount, count)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestNotificationRepository_ListByUser(t *testing.T) {
	repo, mock, cleanup := setupNotificationTestRepository(t)
	defer cleanup()

	now := time.Now()
	readAt := now.Add(-time.Hour)

	mock.ExpectQuery(`SELECT .+ FROM notifications\s+WHERE user_id = \?\s+ORDER BY created_at DESC`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "content", "link", "read_at", "created_at"}).
			AddRow("n-2", "user-1", "Second", "content", nil, nil, now).
			AddRow("n-1", "user-1", "First", "content", "/courses/x", readAt, now.Add(-2*time.Hour)))

	notifications, err := repo.ListByUser(context.Background(), "user-1")

	assert.NoError(t, err)
	require.Len(t, notifications, 2)
	assert.Nil(t, notifications[0].ReadAt)
	assert.Empty(t, notifications[0].Link)
	require.NotNil(t, notifications[1].ReadAt)
	assert.Equal(t, "/courses/x", notifications[1].Link)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_MarkAllRead(t *testing.T) {
	repo, mock, cleanup := setupNotificationTestRepository(t)
	defer cleanup()

	mock.ExpectExec(`UPDATE notifications\s+SET read_at = NOW\(\)\s+WHERE user_id = \? AND read_at IS NULL`).
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	err := repo.MarkAllRead(context.Background(), "user-1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
