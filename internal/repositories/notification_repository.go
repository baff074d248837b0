package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/coursemarket/backend/internal/models"
)

type notificationRepository struct {
	db *sql.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sql.DB) *notificationRepository {
	return &notificationRepository{
		db: db,
	}
}

// CreateForAllUsers fans a broadcast out to one row per user in a
// single statement
func (r *notificationRepository) CreateForAllUsers(ctx context.Context, req *models.SendNotificationRequest) (int64, error) {
	query := `
		INSERT INTO notifications (id, user_id, title, content, link)
		SELECT UUID(), id, ?, ?, ?
		FROM users
	`

	var link sql.NullString
	if req.Link != "" {
		link = sql.NullString{String: req.Link, Valid: true}
	}

	result, err := r.db.ExecContext(ctx, query, req.Title, req.Content, link)
	if err != nil {
		return 0, fmt.Errorf("failed to create notifications: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// ListByUser retrieves the user's notifications, newest first
func (r *notificationRepository) ListByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	query := `
		SELECT id, user_id, title, content, link, read_at, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		var link sql.NullString
		var readAt sql.NullTime
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &link, &readAt, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		if link.Valid {
			n.Link = link.String
		}
		if readAt.Valid {
			t := readAt.Time
			n.ReadAt = &t
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}

	return notifications, nil
}

// MarkAllRead stamps all unread notifications of the user as read
func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	query := `
		UPDATE notifications
		SET read_at = NOW()
		WHERE user_id = ? AND read_at IS NULL
	`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}

	return nil
}
