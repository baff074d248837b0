package services

import (
	"context"
	"fmt"

	"github.com/coursemarket/backend/internal/apperrors"
	"github.com/coursemarket/backend/internal/models"
	"go.uber.org/zap"
)

// NotificationRepository defines methods for notification data access
type NotificationRepository interface {
	// CreateForAllUsers fans a broadcast out to one row per user
	//
	// "ctx" is the context for the request.
	// "req" is the broadcast payload.
	//
	// Returns the number of rows created and an error if any.
	CreateForAllUsers(ctx context.Context, req *models.SendNotificationRequest) (int64, error)
	// ListByUser retrieves the user's notifications, newest first
	ListByUser(ctx context.Context, userID string) ([]models.Notification, error)
	// MarkAllRead stamps all unread notifications of the user as read
	MarkAllRead(ctx context.Context, userID string) error
}

type notificationService struct {
	repo   NotificationRepository
	logger *zap.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(repo NotificationRepository, logger *zap.Logger) *notificationService {
	return &notificationService{
		repo:   repo,
		logger: logger,
	}
}

// Send broadcasts a notification to every user
func (s *notificationService) Send(ctx context.Context, req *models.SendNotificationRequest) (int64, error) {
	if req.Title == "" {
		return 0, apperrors.Validation("title", "title is required")
	}
	if req.Content == "" {
		return 0, apperrors.Validation("content", "content is required")
	}

	delivered, err := s.repo.CreateForAllUsers(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("failed to send notification: %w", err)
	}

	s.logger.Info("notification broadcast",
		zap.String("title", req.Title),
		zap.Int64("recipients", delivered),
	)
	return delivered, nil
}

// List retrieves the caller's notifications, newest first
func (s *notificationService) List(ctx context.Context, userID string) ([]models.Notification, error) {
	notifications, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	return notifications, nil
}

// MarkAllRead marks every unread notification of the caller as read
func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllRead(ctx, userID)
}
